package synthetic

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/excess/internal/domain/model"
)

var header = []string{
	"CountryCode", "Year", "Week", "Sex", "Split", "SplitSex", "Forecast",
	"R0_14", "R15_64", "R65_74", "R75_84", "R85p",
}

// WriteCSV writes records in the HMD short-term mortality layout, preceded by
// a comment line.
func WriteCSV(w io.Writer, records []model.Record) error {
	if _, err := fmt.Fprintf(w, "# synthetic weekly death rates, %d rows\n", len(records)); err != nil {
		return fmt.Errorf("write comment: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.CountryCode,
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Week),
			r.Sex,
			"0", "0", "0",
			cell(r.Rates.R0_14),
			cell(r.Rates.R15_64),
			cell(r.Rates.R65_74),
			cell(r.Rates.R75_84),
			cell(r.Rates.R85p),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
