// Package healpix implements the nested HEALPix tessellation of the
// celestial sphere. It covers the subset of the pixelization needed to
// partition the sky into equal-area work units: pixel counts, pixel
// centers, coordinate-to-pixel lookup, and the maximum pixel radius.
//
// This is a pure package with no I/O dependencies. All angles at the
// package boundary are in degrees, with right ascension and declination
// following the usual equatorial convention.
package healpix

import (
	"fmt"
	"math"
)

// MaxOrder is the largest supported resolution order. It keeps pixel
// indices comfortably inside int64 arithmetic.
const MaxOrder = 29

// Face rows and shifts of the 12 base pixels, in the standard HEALPix
// face numbering.
var (
	jrll = [12]int64{2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4}
	jpll = [12]int64{1, 3, 5, 7, 0, 2, 4, 6, 1, 3, 5, 7}
)

// Pixelization represents the nested HEALPix tessellation at a fixed
// resolution order. nside = 2^order, and the sphere is divided into
// 12*nside^2 equal-area pixels indexed densely in [0, Npix).
type Pixelization struct {
	order int
	nside int64
	npix  int64
}

// New creates a Pixelization for the given resolution order.
func New(order int) (*Pixelization, error) {
	if order < 0 || order > MaxOrder {
		return nil, &InvalidOrderError{Order: order}
	}
	nside := int64(1) << order
	return &Pixelization{
		order: order,
		nside: nside,
		npix:  12 * nside * nside,
	}, nil
}

// Order returns the resolution order of the tessellation.
func (p *Pixelization) Order() int { return p.order }

// Nside returns the HEALPix nside parameter (2^order).
func (p *Pixelization) Nside() int64 { return p.nside }

// Npix returns the total number of pixels (12*nside^2).
func (p *Pixelization) Npix() int64 { return p.npix }

// PixelCenter returns the (ra, dec) coordinates, in degrees, of the
// center of the pixel with the given nested index.
func (p *Pixelization) PixelCenter(ipix int64) (float64, float64, error) {
	if ipix < 0 || ipix >= p.npix {
		return 0, 0, &InvalidPixelError{Pixel: ipix, Npix: p.npix}
	}

	nside := p.nside
	face := ipix >> (2 * uint(p.order))
	ipf := ipix & (nside*nside - 1)
	ix := compressBits(ipf)
	iy := compressBits(ipf >> 1)

	fact2 := 4.0 / float64(p.npix)
	fact1 := float64(nside<<1) * fact2

	jr := jrll[face]*nside - ix - iy - 1

	var (
		nr     int64
		kshift int64
		z      float64
	)
	switch {
	case jr < nside: // north polar cap
		nr = jr
		z = 1.0 - float64(nr*nr)*fact2
	case jr > 3*nside: // south polar cap
		nr = 4*nside - jr
		z = -1.0 + float64(nr*nr)*fact2
	default: // equatorial belt
		nr = nside
		z = float64(2*nside-jr) * fact1
		kshift = (jr - nside) & 1
	}

	jp := (jpll[face]*nr + ix - iy + 1 + kshift) / 2
	if jp > 4*nr {
		jp -= 4 * nr
	}
	if jp < 1 {
		jp += 4 * nr
	}

	phi := (float64(jp) - float64(kshift+1)*0.5) * (math.Pi / 2) / float64(nr)
	theta := math.Acos(z)

	ra := phi * 180 / math.Pi
	dec := 90 - theta*180/math.Pi
	return ra, dec, nil
}

// PixelForCoords returns the nested index of the pixel that contains
// the point at (ra, dec), in degrees. Every point on the sphere maps
// to exactly one pixel.
func (p *Pixelization) PixelForCoords(ra, dec float64) int64 {
	theta := (90 - dec) * math.Pi / 180
	phi := ra * math.Pi / 180

	z := math.Cos(theta)
	za := math.Abs(z)

	tt := math.Mod(phi/(math.Pi/2), 4)
	if tt < 0 {
		tt += 4
	}

	nside := p.nside
	fnside := float64(nside)

	var face, ix, iy int64
	if za <= 2.0/3.0 { // equatorial belt
		temp1 := fnside * (0.5 + tt)
		temp2 := fnside * z * 0.75
		jp := int64(temp1 - temp2)
		jm := int64(temp1 + temp2)

		ifp := jp >> uint(p.order)
		ifm := jm >> uint(p.order)
		switch {
		case ifp == ifm:
			face = (ifp & 3) + 4
		case ifp < ifm:
			face = ifp & 3
		default:
			face = (ifm & 3) + 8
		}

		ix = jm & (nside - 1)
		iy = nside - 1 - (jp & (nside - 1))
	} else { // polar caps
		ntt := int64(tt)
		if ntt >= 4 {
			ntt = 3
		}
		tp := tt - float64(ntt)
		tmp := fnside * math.Sqrt(3*(1-za))

		jp := int64(tp * tmp)
		jm := int64((1 - tp) * tmp)
		if jp >= nside {
			jp = nside - 1
		}
		if jm >= nside {
			jm = nside - 1
		}

		if z >= 0 {
			face = ntt
			ix = nside - 1 - jm
			iy = nside - 1 - jp
		} else {
			face = ntt + 8
			ix = jp
			iy = jm
		}
	}

	return face<<(2*uint(p.order)) + spreadBits(ix) + spreadBits(iy)<<1
}

// MaxPixelRadius returns, in degrees, the maximum angular distance
// between a pixel center and any of its corners at this resolution.
// The value depends only on the order.
func (p *Pixelization) MaxPixelRadius() float64 {
	fnside := float64(p.nside)

	va := vectorZPhi(2.0/3.0, math.Pi/(4*fnside))
	t1 := 1.0 - 1.0/fnside
	vb := vectorZPhi(1-t1*t1/3, 0)

	dot := va[0]*vb[0] + va[1]*vb[1] + va[2]*vb[2]
	if dot > 1 {
		dot = 1
	}
	return math.Acos(dot) * 180 / math.Pi
}

// vectorZPhi builds a unit vector from its z component and azimuth.
func vectorZPhi(z, phi float64) [3]float64 {
	st := math.Sqrt((1 - z) * (1 + z))
	return [3]float64{st * math.Cos(phi), st * math.Sin(phi), z}
}

// spreadBits inserts a zero between consecutive bits of v, placing the
// original bits at the even positions of the result.
func spreadBits(v int64) int64 {
	x := uint64(v) & 0xffffffff
	x = (x | x<<16) & 0x0000ffff0000ffff
	x = (x | x<<8) & 0x00ff00ff00ff00ff
	x = (x | x<<4) & 0x0f0f0f0f0f0f0f0f
	x = (x | x<<2) & 0x3333333333333333
	x = (x | x<<1) & 0x5555555555555555
	return int64(x)
}

// compressBits is the inverse of spreadBits: it keeps the even-position
// bits of v and packs them together.
func compressBits(v int64) int64 {
	x := uint64(v) & 0x5555555555555555
	x = (x | x>>1) & 0x3333333333333333
	x = (x | x>>2) & 0x0f0f0f0f0f0f0f0f
	x = (x | x>>4) & 0x00ff00ff00ff00ff
	x = (x | x>>8) & 0x0000ffff0000ffff
	x = (x | x>>16) & 0x00000000ffffffff
	return int64(x)
}

// InvalidOrderError is returned when a resolution order is outside the
// supported [0, MaxOrder] range.
type InvalidOrderError struct {
	Order int
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf(
		"healpix: order %d outside supported range [0, %d]",
		e.Order, MaxOrder,
	)
}

// InvalidPixelError is returned when a pixel index is outside the
// [0, Npix) range of the tessellation.
type InvalidPixelError struct {
	Pixel int64
	Npix  int64
}

func (e *InvalidPixelError) Error() string {
	return fmt.Sprintf(
		"healpix: pixel %d outside range [0, %d)", e.Pixel, e.Npix,
	)
}
