package profiling

import (
	"fmt"
	"sort"

	"salescope/domain/core"
	"salescope/domain/dataset"

	"github.com/montanaflynn/stats"
)

// GroupKey selects the categorical partition a summary is grouped by.
type GroupKey string

const (
	ByStore   GroupKey = "store"
	ByMonth   GroupKey = "month"
	ByHoliday GroupKey = "holiday"
)

// GroupStat holds the aggregate statistics of the target for one group.
// StdDev is 0 for groups of a single row: the sample deviation is
// undefined there and the report documents it as zero rather than NaN.
type GroupStat struct {
	Key    string
	Count  int
	Mean   float64
	StdDev float64
	Sum    float64
}

// SummarizeBy computes {count, mean, stddev, sum} of the target per
// group. Pure aggregation: the dataset is not modified. Groups come
// back sorted by key for stable report output.
func SummarizeBy(ds dataset.Dataset, key GroupKey) ([]GroupStat, error) {
	if ds.IsEmpty() {
		return nil, core.NewInsufficientDataError(1, 0)
	}

	groups := make(map[string][]float64)
	for i := 0; i < ds.Len(); i++ {
		r := ds.Record(i)
		k, err := groupOf(r, key)
		if err != nil {
			return nil, err
		}
		groups[k] = append(groups[k], r.WeeklySales)
	}

	out := make([]GroupStat, 0, len(groups))
	for k, values := range groups {
		mean, err := stats.Mean(values)
		if err != nil {
			return nil, err
		}
		sum, err := stats.Sum(values)
		if err != nil {
			return nil, err
		}
		sd := 0.0
		if len(values) > 1 {
			sd, err = stats.StandardDeviationSample(values)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, GroupStat{Key: k, Count: len(values), Mean: mean, StdDev: sd, Sum: sum})
	}

	sort.Slice(out, func(i, j int) bool { return less(out[i].Key, out[j].Key) })
	return out, nil
}

func groupOf(r dataset.Record, key GroupKey) (string, error) {
	switch key {
	case ByStore:
		return r.Store, nil
	case ByMonth:
		return fmt.Sprintf("%02d", r.Month), nil
	case ByHoliday:
		if r.Holiday {
			return "holiday", nil
		}
		return "regular", nil
	default:
		return "", fmt.Errorf("%w: group key %q", core.ErrColumnUnknown, key)
	}
}

// less orders group keys numerically when both sides are numeric so
// store "2" sorts before store "10".
func less(a, b string) bool {
	var ai, bi int
	if _, errA := fmt.Sscanf(a, "%d", &ai); errA == nil {
		if _, errB := fmt.Sscanf(b, "%d", &bi); errB == nil {
			return ai < bi
		}
	}
	return a < b
}
