// Package main provides the lvmmag CLI application.
// lvmmag computes synthetic LVM acquisition and guiding magnitudes
// from Gaia DR3 XP sampled spectra and loads them into the catalog
// database.
package main

import (
	"os"
)

var (
	// Version is set by build flags
	Version = "dev"
)

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
