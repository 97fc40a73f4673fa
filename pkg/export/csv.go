package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/matzehuels/matelas/pkg/tufting"
)

// CSVFilename is the attachment name used when serving CSV over HTTP.
const CSVFilename = "rectangle_points.csv"

var csvHeader = []string{"Point #", "X (cm)", "Y (cm)"}

// WriteCSV writes points as CSV with a header row and 1-based numbering.
func WriteCSV(w io.Writer, points tufting.PointSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i, p := range points {
		row := []string{strconv.Itoa(i + 1), formatCoord(p.X), formatCoord(p.Y)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
