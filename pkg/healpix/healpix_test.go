package healpix_test

import (
	"testing"

	"github.com/sdss/lvmmag/pkg/healpix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		order     int
		wantNside int64
		wantNpix  int64
		wantError bool
	}{
		{name: "order 0", order: 0, wantNside: 1, wantNpix: 12},
		{name: "order 1", order: 1, wantNside: 2, wantNpix: 48},
		{name: "order 8", order: 8, wantNside: 256, wantNpix: 786432},
		{name: "negative order", order: -1, wantError: true},
		{name: "order too large", order: 30, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := healpix.New(tt.order)
			if tt.wantError {
				require.Error(t, err)
				var orderErr *healpix.InvalidOrderError
				assert.ErrorAs(t, err, &orderErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.order, p.Order())
			assert.Equal(t, tt.wantNside, p.Nside())
			assert.Equal(t, tt.wantNpix, p.Npix())
		})
	}
}

func TestPixelCenterRange(t *testing.T) {
	p, err := healpix.New(2)
	require.NoError(t, err)

	_, _, err = p.PixelCenter(-1)
	require.Error(t, err)

	_, _, err = p.PixelCenter(p.Npix())
	require.Error(t, err)

	var pixErr *healpix.InvalidPixelError
	assert.ErrorAs(t, err, &pixErr)
	assert.Equal(t, p.Npix(), pixErr.Pixel)
}

// TestRoundTrip checks that the pixel center of every pixel maps back
// to the same pixel index, for several orders. This is the identity
// the query engine's fetch-then-filter step relies on.
func TestRoundTrip(t *testing.T) {
	for _, order := range []int{0, 1, 2, 3, 4} {
		p, err := healpix.New(order)
		require.NoError(t, err)

		for ipix := int64(0); ipix < p.Npix(); ipix++ {
			ra, dec, err := p.PixelCenter(ipix)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, ra, 0.0)
			assert.Less(t, ra, 360.0)
			assert.GreaterOrEqual(t, dec, -90.0)
			assert.LessOrEqual(t, dec, 90.0)

			got := p.PixelForCoords(ra, dec)
			require.Equal(t, ipix, got,
				"order %d, pixel %d round-trips to %d", order, ipix, got)
		}
	}
}

// TestCoverage checks that pixel lookup over a coordinate grid only
// produces indices inside [0, Npix) and hits every base pixel at
// order 0 (no gaps in the tessellation).
func TestCoverage(t *testing.T) {
	p, err := healpix.New(0)
	require.NoError(t, err)

	seen := make(map[int64]bool)
	for dec := -89.0; dec <= 89.0; dec += 2.0 {
		for ra := 0.0; ra < 360.0; ra += 2.0 {
			ipix := p.PixelForCoords(ra, dec)
			require.GreaterOrEqual(t, ipix, int64(0))
			require.Less(t, ipix, p.Npix())
			seen[ipix] = true
		}
	}
	assert.Len(t, seen, 12, "every base pixel should be hit")
}

func TestPixelForCoordsNegativeRA(t *testing.T) {
	p, err := healpix.New(3)
	require.NoError(t, err)

	// An azimuth west of the origin wraps to the same pixel as its
	// 360-degree complement.
	assert.Equal(t, p.PixelForCoords(350.0, 12.0), p.PixelForCoords(-10.0, 12.0))
}

func TestMaxPixelRadius(t *testing.T) {
	var prev float64
	for order := 0; order <= 10; order++ {
		p, err := healpix.New(order)
		require.NoError(t, err)

		r := p.MaxPixelRadius()
		assert.Greater(t, r, 0.0)
		if order > 0 {
			assert.Less(t, r, prev,
				"pixel radius shrinks as the order grows")
			// Each order roughly halves the pixel scale.
			assert.InDelta(t, 0.5, r/prev, 0.2)
		}
		prev = r
	}
}

// TestNeighbourSeparation checks that points well inside a pixel map to
// that pixel while points a full pixel radius away may not. It guards
// the inclusion radius used by the cone-search over-fetch.
func TestConeInclusion(t *testing.T) {
	p, err := healpix.New(4)
	require.NoError(t, err)

	r := p.MaxPixelRadius()
	for _, ipix := range []int64{0, 100, p.Npix() / 2, p.Npix() - 1} {
		ra, dec, err := p.PixelCenter(ipix)
		require.NoError(t, err)

		// A point displaced by a small fraction of the pixel radius
		// stays inside the pixel.
		got := p.PixelForCoords(ra, dec+r/20)
		assert.Equal(t, ipix, got)
	}
}
