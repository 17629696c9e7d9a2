package evaluation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"salescope/domain/core"
	"salescope/domain/dataset"
)

// passthroughModel echoes its single feature, so a partition built with
// predictions stored in the temperature column scores exactly those
// predictions against the weekly sales target.
type passthroughModel struct{}

func (passthroughModel) Predict(x []float64) float64 { return x[0] }

func (passthroughModel) Features() []dataset.Column {
	return []dataset.Column{dataset.ColTemperature}
}

func scoredPartition(name string, actual, predicted []float64) dataset.Partition {
	records := make([]dataset.Record, len(actual))
	for i := range actual {
		records[i] = dataset.Record{WeeklySales: actual[i], Temperature: predicted[i]}
	}
	return dataset.Partition{Name: name, Data: dataset.New(records)}
}

func singleScores(t *testing.T, actual, predicted []float64) Scores {
	t.Helper()
	part := scoredPartition(dataset.PartitionTest, actual, predicted)
	report, err := Evaluate("echo", passthroughModel{}, []dataset.Partition{part}, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(report.Partitions) != 1 {
		t.Fatalf("expected 1 partition, got %d", len(report.Partitions))
	}
	return report.Partitions[0].Scores
}

func TestEvaluate_MAPEExcludesZeroActuals(t *testing.T) {
	s := singleScores(t, []float64{10, 20, 0}, []float64{12, 18, 5})
	if math.Abs(s.MAPE-15) > 1e-9 {
		t.Errorf("MAPE = %v, want 15", s.MAPE)
	}
	if s.ZeroActuals != 1 {
		t.Errorf("ZeroActuals = %d, want 1", s.ZeroActuals)
	}
}

func TestEvaluate_MAPEAveragesOverIncludedRowsOnly(t *testing.T) {
	// The exact 5/5 row contributes a zero term; the excluded zero-actual
	// row does not shrink the denominator below the included count.
	s := singleScores(t, []float64{10, 20, 0, 5}, []float64{12, 18, 5, 5})
	if math.Abs(s.MAPE-10) > 1e-9 {
		t.Errorf("MAPE = %v, want 10", s.MAPE)
	}
	if s.ZeroActuals != 1 {
		t.Errorf("ZeroActuals = %d, want 1", s.ZeroActuals)
	}
}

func TestEvaluate_MAPEAllZeroActualsIsNaN(t *testing.T) {
	s := singleScores(t, []float64{0, 0}, []float64{1, 2})
	if !math.IsNaN(s.MAPE) {
		t.Errorf("MAPE = %v, want NaN when every actual is zero", s.MAPE)
	}
	if s.ZeroActuals != 2 {
		t.Errorf("ZeroActuals = %d, want 2", s.ZeroActuals)
	}
}

func TestEvaluate_MAEAndR2(t *testing.T) {
	s := singleScores(t, []float64{10, 20, 0}, []float64{12, 18, 5})
	if math.Abs(s.MAE-3) > 1e-9 {
		t.Errorf("MAE = %v, want 3", s.MAE)
	}
	// SSE = 4+4+25 = 33, SStot around mean 10 = 200.
	want := 1 - 33.0/200.0
	if math.Abs(s.R2-want) > 1e-9 {
		t.Errorf("R2 = %v, want %v", s.R2, want)
	}
	if s.Rows != 3 {
		t.Errorf("Rows = %d, want 3", s.Rows)
	}
}

func TestEvaluate_PerfectPredictions(t *testing.T) {
	s := singleScores(t, []float64{5, 10, 15}, []float64{5, 10, 15})
	if s.R2 != 1 || s.MAE != 0 || s.MAPE != 0 {
		t.Errorf("perfect predictions scored r2=%v mae=%v mape=%v", s.R2, s.MAE, s.MAPE)
	}
}

func TestEvaluate_DenormalizerRestoresOriginalScale(t *testing.T) {
	// Targets and predictions stored at 1/100 scale; metrics must come
	// back in original units once the denormalizer runs.
	part := scoredPartition(dataset.PartitionTest,
		[]float64{0.10, 0.20}, []float64{0.12, 0.18})
	times100 := func(values []float64) ([]float64, error) {
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = v * 100
		}
		return out, nil
	}

	report, err := Evaluate("scaled", passthroughModel{}, []dataset.Partition{part}, times100)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	s := report.Partitions[0].Scores
	if math.Abs(s.MAE-2) > 1e-9 {
		t.Errorf("denormalized MAE = %v, want 2", s.MAE)
	}
	// Relative error is scale-invariant, so MAPE matches the raw ratios.
	if math.Abs(s.MAPE-15) > 1e-9 {
		t.Errorf("denormalized MAPE = %v, want 15", s.MAPE)
	}
}

func TestEvaluate_DenormalizerFailurePropagates(t *testing.T) {
	part := scoredPartition(dataset.PartitionTest, []float64{1}, []float64{1})
	boom := func([]float64) ([]float64, error) { return nil, core.ErrNotFitted }
	if _, err := Evaluate("broken", passthroughModel{}, []dataset.Partition{part}, boom); !errors.Is(err, core.ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
}

func TestEvaluate_EmptyPartition(t *testing.T) {
	empty := dataset.Partition{Name: dataset.PartitionValidation, Data: dataset.New(nil)}
	_, err := Evaluate("echo", passthroughModel{}, []dataset.Partition{empty}, nil)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestReport_FormatListsEveryPartition(t *testing.T) {
	parts := []dataset.Partition{
		scoredPartition(dataset.PartitionTrain, []float64{10, 20}, []float64{11, 19}),
		scoredPartition(dataset.PartitionTest, []float64{10, 20}, []float64{12, 18}),
	}
	report, err := Evaluate("echo", passthroughModel{}, parts, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	out := report.Format()
	for _, want := range []string{"echo", dataset.PartitionTrain, dataset.PartitionTest} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted report missing %q:\n%s", want, out)
		}
	}
}
