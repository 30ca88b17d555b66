package ioingest

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/sdss/lvmmag/pkg/catalog"
)

// encodeCSV projects artifact rows down to the destination columns and
// serializes them as a CSV payload with a header line, ready to stream
// through COPY.
func encodeCSV(rows []catalog.ArtifactRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(catalog.DestinationColumns); err != nil {
		return nil, err
	}
	rec := make([]string, len(catalog.DestinationColumns))
	for _, row := range rows {
		rec[0] = strconv.FormatInt(row.SourceID, 10)
		rec[1] = strconv.FormatFloat(row.RA, 'g', -1, 64)
		rec[2] = strconv.FormatFloat(row.Dec, 'g', -1, 64)
		rec[3] = strconv.FormatFloat(row.LFlux, 'g', -1, 64)
		rec[4] = strconv.FormatFloat(row.LMagAB, 'g', -1, 64)
		rec[5] = strconv.FormatFloat(row.LMagVega, 'g', -1, 64)
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
