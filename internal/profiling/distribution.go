package profiling

import (
	"math"

	"salescope/domain/core"
	"salescope/domain/dataset"

	"github.com/montanaflynn/stats"
)

// TargetProfile describes the shape of the target distribution. It is
// printed at the top of the report and drives the outlier boxplot.
type TargetProfile struct {
	Count    int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	Median   float64
	Q25      float64
	Q75      float64
	Skewness float64
}

// ProfileTarget computes summary statistics of the target column.
func ProfileTarget(ds dataset.Dataset) (TargetProfile, error) {
	if ds.Len() < 2 {
		return TargetProfile{}, core.NewInsufficientDataError(2, ds.Len())
	}
	data := ds.Target()

	profile := TargetProfile{Count: len(data)}
	var err error
	if profile.Mean, err = stats.Mean(data); err != nil {
		return profile, err
	}
	if profile.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		return profile, err
	}
	if profile.Min, err = stats.Min(data); err != nil {
		return profile, err
	}
	if profile.Max, err = stats.Max(data); err != nil {
		return profile, err
	}
	if profile.Median, err = stats.Median(data); err != nil {
		return profile, err
	}
	if profile.Q25, err = stats.Percentile(data, 25); err != nil {
		return profile, err
	}
	if profile.Q75, err = stats.Percentile(data, 75); err != nil {
		return profile, err
	}
	profile.Skewness = sampleSkewness(data, profile.Mean, profile.StdDev)
	return profile, nil
}

// sampleSkewness computes the adjusted Fisher-Pearson coefficient.
func sampleSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d
	}
	skew := sum / n
	// Bias correction for sample skewness
	return skew * math.Sqrt(n*(n-1)) / (n - 2)
}
