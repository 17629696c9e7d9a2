package evaluation

import (
	"fmt"
	"log"
	"math"
	"strings"

	"salescope/domain/core"
	"salescope/domain/dataset"
	"salescope/internal/ml"

	"gonum.org/v1/gonum/stat"
)

// Scores are the accuracy metrics of one model on one partition.
type Scores struct {
	R2   float64
	MAE  float64
	MAPE float64 // percent; NaN when every actual is zero
	Rows int
	// ZeroActuals counts rows excluded from MAPE because their actual
	// value is zero. The exclusion is deliberate: |a-p|/a is undefined
	// at a == 0 and skipping those rows is part of the metric's
	// definition here, not a silent data loss.
	ZeroActuals int
}

// Report maps partition names to scores for a single model.
type Report struct {
	Model      string
	Partitions []PartitionScores
}

// PartitionScores pairs a partition name with its scores, keeping the
// evaluation order stable for printing.
type PartitionScores struct {
	Partition string
	Scores    Scores
}

// Denormalizer maps model-scale values back to original target scale.
// Evaluations of models trained on a rescaled target must supply one,
// otherwise percentage metrics would mix scales.
type Denormalizer func(values []float64) ([]float64, error)

// Evaluate scores a model on each partition. When denorm is non-nil it
// is applied to both predictions and actuals before any metric is
// computed, so all scores are reported in original target units.
func Evaluate(modelName string, m ml.Model, parts []dataset.Partition, denorm Denormalizer) (*Report, error) {
	report := &Report{Model: modelName}
	for _, p := range parts {
		if p.Len() == 0 {
			return nil, fmt.Errorf("%w: partition %q is empty", core.ErrInsufficientData, p.Name)
		}
		predicted, err := ml.PredictAll(m, p.Data)
		if err != nil {
			return nil, err
		}
		actual := p.Data.Target()

		if denorm != nil {
			if predicted, err = denorm(predicted); err != nil {
				return nil, err
			}
			if actual, err = denorm(actual); err != nil {
				return nil, err
			}
		}

		s := score(actual, predicted)
		report.Partitions = append(report.Partitions, PartitionScores{Partition: p.Name, Scores: s})
		log.Printf("[Evaluator] %s/%s: r2=%.4f mae=%.2f mape=%.2f%% (n=%d, %d zero-actual rows excluded)",
			modelName, p.Name, s.R2, s.MAE, s.MAPE, s.Rows, s.ZeroActuals)
	}
	return report, nil
}

func score(actual, predicted []float64) Scores {
	s := Scores{Rows: len(actual)}
	s.R2 = stat.RSquaredFrom(predicted, actual, nil)
	s.MAE = meanAbsoluteError(actual, predicted)
	s.MAPE, s.ZeroActuals = meanAbsolutePercentageError(actual, predicted)
	return s
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// meanAbsolutePercentageError averages |actual-predicted|/actual over
// rows where actual != 0. Zero-actual rows are excluded, not errors:
// the ratio is undefined there. Returns the MAPE in percent and the
// count of excluded rows; MAPE is NaN if no row qualified.
func meanAbsolutePercentageError(actual, predicted []float64) (float64, int) {
	sum := 0.0
	n := 0
	excluded := 0
	for i := range actual {
		if actual[i] == 0 {
			excluded++
			continue
		}
		sum += math.Abs(actual[i]-predicted[i]) / math.Abs(actual[i])
		n++
	}
	if n == 0 {
		return math.NaN(), excluded
	}
	return sum / float64(n) * 100, excluded
}

// Format renders the report as an aligned text table for console output.
func (r *Report) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "model %s\n", r.Model)
	fmt.Fprintf(&b, "  %-12s %10s %14s %10s %8s\n", "partition", "r2", "mae", "mape%", "rows")
	for _, p := range r.Partitions {
		fmt.Fprintf(&b, "  %-12s %10.4f %14.2f %10.2f %8d\n",
			p.Partition, p.Scores.R2, p.Scores.MAE, p.Scores.MAPE, p.Scores.Rows)
	}
	return b.String()
}
