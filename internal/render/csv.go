package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"grapt/internal/series"
)

// WriteCSV writes every point of the chain as series,name,x,y rows, after a
// header row.
func WriteCSV(w io.Writer, chain *series.Chain) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = ','

	if err := csvWriter.Write([]string{"series", "name", "x", "y"}); err != nil {
		return err
	}
	for i, s := range chain.All() {
		index := strconv.Itoa(i)
		for _, p := range s.All() {
			row := []string{index, s.Name(), formatFloat(p.X), formatFloat(p.Y)}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
