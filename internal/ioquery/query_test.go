package ioquery

import (
	"testing"

	"github.com/sdss/lvmmag/pkg/catalog"
	"github.com/sdss/lvmmag/pkg/config"
	"github.com/sdss/lvmmag/pkg/healpix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterToPixel(t *testing.T) {
	pix, err := healpix.New(4)
	require.NoError(t, err)

	const target = int64(137)

	// Sources at the centers of the target pixel and two neighbours:
	// only the first one survives the post-filter.
	var records []catalog.Record
	for i, ipix := range []int64{target, target + 1, target + 7} {
		ra, dec, err := pix.PixelCenter(ipix)
		require.NoError(t, err)
		records = append(records, catalog.Record{
			SourceID: int64(i + 1), RA: ra, Dec: dec,
		})
	}

	kept := FilterToPixel(records, pix, target)
	require.Len(t, kept, 1)
	assert.Equal(t, int64(1), kept[0].SourceID)
}

func TestFilterToPixelEmpty(t *testing.T) {
	pix, err := healpix.New(2)
	require.NoError(t, err)

	assert.Empty(t, FilterToPixel(nil, pix, 0))
	assert.Empty(t, FilterToPixel([]catalog.Record{}, pix, 0))
}

func TestNewRejectsBadWorkMem(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"20GB", true},
		{"512MB", true},
		{"64kB", true},
		{"1048576", true},
		{"20GB'; DROP TABLE lvm_magnitude; --", false},
		{"lots", false},
		{"", false},
	}

	for _, tt := range tests {
		cfg := config.Defaults()
		cfg.Database.WorkMem = tt.value
		if tt.valid {
			assert.True(t, workMemRe.MatchString(tt.value), "value %q", tt.value)
			continue
		}

		// Invalid values are rejected before any connection attempt.
		_, err := New(t.Context(), cfg)
		require.Error(t, err, "value %q", tt.value)
		var wmErr *WorkMemError
		assert.ErrorAs(t, err, &wmErr, "value %q", tt.value)
	}
}
