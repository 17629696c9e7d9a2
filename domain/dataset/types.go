package dataset

import (
	"time"

	"salescope/domain/core"
)

// Column names a scalar view over a Record. Columns are the unit the
// cleaning, training and evaluation layers address fields by.
type Column string

const (
	ColStore        Column = "store"
	ColDate         Column = "date"
	ColYear         Column = "year"
	ColMonth        Column = "month"
	ColWeeklySales  Column = "weekly_sales"
	ColHoliday      Column = "holiday"
	ColTemperature  Column = "temperature"
	ColFuelPrice    Column = "fuel_price"
	ColPriceIndex   Column = "price_index"
	ColUnemployment Column = "unemployment"
)

// TargetColumn is the outcome variable every model in this repository predicts.
const TargetColumn = ColWeeklySales

// DefaultFeatures is the canonical feature list used by the report pipelines.
// Order matters: trained models address features positionally.
var DefaultFeatures = []Column{
	ColTemperature,
	ColFuelPrice,
	ColPriceIndex,
	ColUnemployment,
	ColHoliday,
	ColYear,
	ColMonth,
}

// Record is one observation: a store-week of sales with its ambient
// economics. Fields are typed and validated at load time; only the
// continuous columns may be rescaled afterwards.
type Record struct {
	Store        string
	Date         time.Time
	Year         int
	Month        int
	WeeklySales  float64
	Holiday      bool
	Temperature  float64
	FuelPrice    float64
	PriceIndex   float64
	Unemployment float64
}

// Value returns the numeric view of a column. Boolean and date-derived
// columns read as numbers (holiday as 0/1) so models can consume them,
// but only truly continuous columns are settable.
func (r Record) Value(col Column) (float64, error) {
	switch col {
	case ColWeeklySales:
		return r.WeeklySales, nil
	case ColTemperature:
		return r.Temperature, nil
	case ColFuelPrice:
		return r.FuelPrice, nil
	case ColPriceIndex:
		return r.PriceIndex, nil
	case ColUnemployment:
		return r.Unemployment, nil
	case ColHoliday:
		if r.Holiday {
			return 1, nil
		}
		return 0, nil
	case ColYear:
		return float64(r.Year), nil
	case ColMonth:
		return float64(r.Month), nil
	default:
		return 0, core.ErrColumnUnknown
	}
}

// SetValue overwrites a continuous column in place. Categorical and
// date-derived columns reject writes so rescaling cannot corrupt them.
func (r *Record) SetValue(col Column, v float64) error {
	switch col {
	case ColWeeklySales:
		r.WeeklySales = v
	case ColTemperature:
		r.Temperature = v
	case ColFuelPrice:
		r.FuelPrice = v
	case ColPriceIndex:
		r.PriceIndex = v
	case ColUnemployment:
		r.Unemployment = v
	case ColHoliday, ColYear, ColMonth, ColStore, ColDate:
		return core.ErrColumnImmutable
	default:
		return core.ErrColumnUnknown
	}
	return nil
}

// ScalableColumns lists the columns a scaler is allowed to touch.
func ScalableColumns() []Column {
	return []Column{ColWeeklySales, ColTemperature, ColFuelPrice, ColPriceIndex, ColUnemployment}
}
