package ml

import (
	"log"
	"math/rand"

	"salescope/domain/core"
	"salescope/domain/dataset"

	"gonum.org/v1/gonum/floats"
)

// ForestConfig are the hyperparameters of the bagged tree ensemble.
// The forest always trains exactly Trees trees; there is no adaptive
// stopping in this variant.
type ForestConfig struct {
	Trees       int   // number of bagged trees
	MaxFeatures int   // candidate features per split; 0 means all
	MaxDepth    int   // 0 means unbounded
	MinLeaf     int   // minimum rows per leaf
	Seed        int64 // drives bootstrap sampling and feature subsets
}

// DefaultForestConfig mirrors the report's documented preset.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 100, MaxFeatures: 3, MaxDepth: 12, MinLeaf: 2, Seed: 1}
}

// Forest is a bagged ensemble of regression trees; predictions are the
// mean over all trees. Immutable after TrainForest returns.
type Forest struct {
	trees      []*treeNode
	features   []dataset.Column
	importance []float64
}

// TrainForest fits cfg.Trees regression trees, each on a bootstrap
// sample of the training partition.
func TrainForest(train dataset.Dataset, features []dataset.Column, cfg ForestConfig) (*Forest, error) {
	X, y, err := trainingMatrix(train, features)
	if err != nil {
		return nil, err
	}
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultForestConfig().Trees
	}
	if cfg.MinLeaf <= 0 {
		cfg.MinLeaf = 1
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	tcfg := treeConfig{maxDepth: cfg.MaxDepth, minLeaf: cfg.MinLeaf, maxFeatures: cfg.MaxFeatures}
	importance := make([]float64, len(features))

	n := len(y)
	trees := make([]*treeNode, cfg.Trees)
	for t := range trees {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		trees[t] = growTree(X, y, sample, tcfg, rng, importance)
	}

	// Normalize accumulated impurity decrease to relative shares.
	if total := floats.Sum(importance); total > 0 {
		floats.Scale(1/total, importance)
	}

	log.Printf("[Forest] %d trees trained on %d rows, %d features", cfg.Trees, n, len(features))
	return &Forest{trees: trees, features: cloneColumns(features), importance: importance}, nil
}

// Predict averages the trees' predictions.
func (f *Forest) Predict(x []float64) float64 {
	sum := 0.0
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

// Features returns the training feature order.
func (f *Forest) Features() []dataset.Column {
	return cloneColumns(f.features)
}

// FeatureImportance returns each feature's relative contribution to
// variance reduction, aligned with Features() and summing to one when
// any split occurred.
func (f *Forest) FeatureImportance() ([]float64, error) {
	if f.importance == nil {
		return nil, core.ErrNotFitted
	}
	out := make([]float64, len(f.importance))
	copy(out, f.importance)
	return out, nil
}
