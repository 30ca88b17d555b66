package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdss/lvmmag/internal/ioconfig"
)

func getConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generates a default config file",
		Long: `Writes a documented default configuration file to
~/.config/lvmmag/lvmmag.yaml. Refuses to overwrite an existing file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ioconfig.GenerateDefaultConfig()
			if err != nil {
				return err
			}
			fmt.Printf("Generated default config at: %s\n", path)
			return nil
		},
	}
	return cmd
}
