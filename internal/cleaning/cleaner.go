package cleaning

import (
	"log"

	"salescope/domain/core"
	"salescope/domain/dataset"

	"github.com/montanaflynn/stats"
)

// recordKey is the comparable identity of a record for deduplication.
// Date is reduced to its unix timestamp so two parses of the same cell
// always collide.
type recordKey struct {
	store        string
	date         int64
	weeklySales  float64
	holiday      bool
	temperature  float64
	fuelPrice    float64
	priceIndex   float64
	unemployment float64
}

func keyOf(r dataset.Record) recordKey {
	return recordKey{
		store:        r.Store,
		date:         r.Date.Unix(),
		weeklySales:  r.WeeklySales,
		holiday:      r.Holiday,
		temperature:  r.Temperature,
		fuelPrice:    r.FuelPrice,
		priceIndex:   r.PriceIndex,
		unemployment: r.Unemployment,
	}
}

// Deduplicate removes rows that are exact duplicates across all fields,
// keeping the first occurrence. Idempotent: a second pass over its own
// output removes nothing.
func Deduplicate(ds dataset.Dataset) dataset.Dataset {
	seen := make(map[recordKey]struct{}, ds.Len())
	out := ds.Filter(func(r dataset.Record) bool {
		k := keyOf(r)
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
		return true
	})
	if removed := ds.Len() - out.Len(); removed > 0 {
		log.Printf("[Cleaner] %d duplicate rows removed", removed)
	}
	return out
}

// DefaultOutlierPercentile is the trim threshold for the target column.
const DefaultOutlierPercentile = 99.0

// TrimOutliers drops rows whose target exceeds the given percentile of
// the current dataset. The threshold is recomputed on every call, never
// cached, so the result depends on whatever filtering ran before it.
// Returns the trimmed dataset and the threshold that was applied.
func TrimOutliers(ds dataset.Dataset, percentile float64) (dataset.Dataset, float64, error) {
	if ds.IsEmpty() {
		return ds, 0, core.NewInsufficientDataError(1, 0)
	}
	threshold, err := stats.Percentile(ds.Target(), percentile)
	if err != nil {
		return ds, 0, err
	}
	out := ds.Filter(func(r dataset.Record) bool {
		return r.WeeklySales <= threshold
	})
	if removed := ds.Len() - out.Len(); removed > 0 {
		log.Printf("[Cleaner] %d rows above p%.0f threshold %.2f removed", removed, percentile, threshold)
	}
	return out, threshold, nil
}
