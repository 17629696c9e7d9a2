package tabular

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"salescope/domain/core"
	"salescope/domain/dataset"
)

// dateLayouts are tried in order when parsing the date column. The
// retail exports this pipeline was built around use day-first dates.
var dateLayouts = []string{
	"02-01-2006",
	"2006-01-02",
	"02/01/2006",
	time.RFC3339,
}

// headerAliases maps normalized header spellings to schema columns.
var headerAliases = map[string]dataset.Column{
	"store":        dataset.ColStore,
	"storeid":      dataset.ColStore,
	"date":         dataset.ColDate,
	"weeklysales":  dataset.ColWeeklySales,
	"sales":        dataset.ColWeeklySales,
	"holidayflag":  dataset.ColHoliday,
	"holiday":      dataset.ColHoliday,
	"isholiday":    dataset.ColHoliday,
	"temperature":  dataset.ColTemperature,
	"fuelprice":    dataset.ColFuelPrice,
	"cpi":          dataset.ColPriceIndex,
	"priceindex":   dataset.ColPriceIndex,
	"unemployment": dataset.ColUnemployment,
	"unemprate":    dataset.ColUnemployment,
	"unemployrate": dataset.ColUnemployment,
}

// requiredColumns must all resolve from the header row before any data
// row is parsed.
var requiredColumns = []dataset.Column{
	dataset.ColStore,
	dataset.ColDate,
	dataset.ColWeeklySales,
	dataset.ColHoliday,
	dataset.ColTemperature,
	dataset.ColFuelPrice,
	dataset.ColPriceIndex,
	dataset.ColUnemployment,
}

// Load reads the file at path and coerces it into a typed Dataset,
// deriving the year and month columns from the parsed date. A missing
// file, an unresolvable header or a malformed cell fails with a
// ParseError carrying row and column context.
func Load(path string) (dataset.Dataset, error) {
	raw, err := NewDataReader(path).Read()
	if err != nil {
		return dataset.Dataset{}, err
	}
	return Coerce(raw)
}

// Coerce types an already-read RawTable. Split from Load so tests can
// feed tables directly.
func Coerce(raw *RawTable) (dataset.Dataset, error) {
	colIndex, err := resolveHeader(raw.Headers)
	if err != nil {
		return dataset.Dataset{}, err
	}

	records := make([]dataset.Record, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		// Header row is row 1 in the file; data rows are 1-based after it.
		fileRow := i + 2
		rec, err := coerceRow(row, colIndex, fileRow)
		if err != nil {
			return dataset.Dataset{}, err
		}
		records = append(records, rec)
	}

	log.Printf("[Loader] %d records loaded", len(records))
	return dataset.FromOwned(records), nil
}

func resolveHeader(headers []string) (map[dataset.Column]int, error) {
	index := make(map[dataset.Column]int, len(headers))
	for i, h := range headers {
		if col, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, col)
		}
	}
	return index, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", "")
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "-", "")
	return h
}

func coerceRow(row []string, colIndex map[dataset.Column]int, fileRow int) (dataset.Record, error) {
	cell := func(col dataset.Column) string {
		i := colIndex[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var rec dataset.Record
	rec.Store = cell(dataset.ColStore)
	if rec.Store == "" {
		return rec, core.NewParseError(fileRow, string(dataset.ColStore), "empty store identifier")
	}

	date, err := parseDate(cell(dataset.ColDate))
	if err != nil {
		return rec, core.NewDateError(fileRow, cell(dataset.ColDate))
	}
	rec.Date = date
	rec.Year = date.Year()
	rec.Month = int(date.Month())

	holiday, err := parseBool(cell(dataset.ColHoliday))
	if err != nil {
		return rec, core.NewParseError(fileRow, string(dataset.ColHoliday), err.Error())
	}
	rec.Holiday = holiday

	numeric := []struct {
		col dataset.Column
		dst *float64
	}{
		{dataset.ColWeeklySales, &rec.WeeklySales},
		{dataset.ColTemperature, &rec.Temperature},
		{dataset.ColFuelPrice, &rec.FuelPrice},
		{dataset.ColPriceIndex, &rec.PriceIndex},
		{dataset.ColUnemployment, &rec.Unemployment},
	}
	for _, n := range numeric {
		v, err := strconv.ParseFloat(strings.ReplaceAll(cell(n.col), ",", ""), 64)
		if err != nil {
			return rec, core.NewParseError(fileRow, string(n.col), "not a number")
		}
		*n.dst = v
	}

	return rec, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matched %q", s)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "t", "yes", "y":
		return true, nil
	case "0", "false", "f", "no", "n", "":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized boolean %q", s)
}
