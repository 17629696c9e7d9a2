package ml

import (
	"math"
	"testing"
	"time"

	"salescope/domain/dataset"
	"salescope/internal/testkit"
)

func forestData(t *testing.T) dataset.Dataset {
	t.Helper()
	gen := testkit.NewSalesDataGenerator(testkit.SalesGeneratorConfig{
		Stores:    4,
		WeeksPer:  60,
		StartDate: time.Date(2011, 1, 7, 0, 0, 0, 0, time.UTC),
		Seed:      3,
		Noise:     2000,
	})
	return gen.GenerateDataset()
}

func TestTrainForest_FitsSignal(t *testing.T) {
	ds := forestData(t)

	forest, err := TrainForest(ds, dataset.DefaultFeatures, ForestConfig{
		Trees: 30, MaxFeatures: 3, MaxDepth: 10, MinLeaf: 2, Seed: 1,
	})
	if err != nil {
		t.Fatalf("TrainForest failed: %v", err)
	}

	preds, err := PredictAll(forest, ds)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	y := ds.Target()
	base := fill(len(y), mean(y))
	if mse(preds, y) >= mse(base, y)/2 {
		t.Error("forest failed to capture most of the training signal")
	}
}

func TestTrainForest_FeatureImportance(t *testing.T) {
	ds := forestData(t)
	forest, err := TrainForest(ds, dataset.DefaultFeatures, ForestConfig{
		Trees: 20, MaxDepth: 8, MinLeaf: 2, Seed: 1,
	})
	if err != nil {
		t.Fatalf("TrainForest failed: %v", err)
	}

	imp, err := forest.FeatureImportance()
	if err != nil {
		t.Fatalf("importance: %v", err)
	}
	if len(imp) != len(dataset.DefaultFeatures) {
		t.Fatalf("importance length %d, want %d", len(imp), len(dataset.DefaultFeatures))
	}
	sum := 0.0
	for _, v := range imp {
		if v < 0 {
			t.Fatalf("negative importance %v", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("importance sums to %v, want 1", sum)
	}

	// Temperature drives the generated sales more than fuel price does.
	idx := map[dataset.Column]int{}
	for i, f := range dataset.DefaultFeatures {
		idx[f] = i
	}
	if imp[idx[dataset.ColTemperature]] <= imp[idx[dataset.ColFuelPrice]] {
		t.Errorf("temperature importance %v should exceed fuel price %v",
			imp[idx[dataset.ColTemperature]], imp[idx[dataset.ColFuelPrice]])
	}
}

func TestTrainForest_Deterministic(t *testing.T) {
	ds := forestData(t)
	cfg := ForestConfig{Trees: 10, MaxFeatures: 2, MaxDepth: 6, MinLeaf: 2, Seed: 5}

	a, err := TrainForest(ds, dataset.DefaultFeatures, cfg)
	if err != nil {
		t.Fatalf("first train: %v", err)
	}
	b, err := TrainForest(ds, dataset.DefaultFeatures, cfg)
	if err != nil {
		t.Fatalf("second train: %v", err)
	}

	x, err := ds.FeatureMatrix(dataset.DefaultFeatures)
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	for i := range x {
		if a.Predict(x[i]) != b.Predict(x[i]) {
			t.Fatal("same seed produced different forests")
		}
	}
}

func TestTrainForest_EmptyInputs(t *testing.T) {
	ds := forestData(t)
	if _, err := TrainForest(dataset.New(nil), dataset.DefaultFeatures, ForestConfig{}); err == nil {
		t.Fatal("expected error for empty training partition")
	}
	if _, err := TrainForest(ds, nil, ForestConfig{}); err == nil {
		t.Fatal("expected error for empty feature list")
	}
}

func TestGrowTree_PerfectSplitOnStepFunction(t *testing.T) {
	// y is a step function of a single feature; one split nails it.
	X := [][]float64{{1}, {2}, {3}, {4}, {10}, {11}, {12}, {13}}
	y := []float64{5, 5, 5, 5, 50, 50, 50, 50}
	indices := []int{0, 1, 2, 3, 4, 5, 6, 7}

	tree := growTree(X, y, indices, treeConfig{maxDepth: 3, minLeaf: 1}, nil, nil)
	for i, row := range X {
		if got := tree.predict(row); got != y[i] {
			t.Fatalf("row %d: predicted %v, want %v", i, got, y[i])
		}
	}
}
