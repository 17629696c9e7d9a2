package ml

import (
	"log"
	"math/rand"

	"salescope/domain/core"
	"salescope/domain/dataset"
)

// BoostConfig are the hyperparameters of the gradient-boosted ensemble.
type BoostConfig struct {
	Rounds       int     // maximum boosting rounds
	LearningRate float64 // shrinkage applied to every tree
	MaxDepth     int     // depth of each weak learner
	Subsample    float64 // row fraction per round, (0,1]
	ColSubsample float64 // feature fraction per round, (0,1]
	Patience     int     // rounds without validation improvement before stopping
	Seed         int64
}

// DefaultBoostConfig mirrors the report's documented preset.
func DefaultBoostConfig() BoostConfig {
	return BoostConfig{
		Rounds:       300,
		LearningRate: 0.1,
		MaxDepth:     4,
		Subsample:    0.8,
		ColSubsample: 0.8,
		Patience:     15,
		Seed:         1,
	}
}

// Boost is a gradient-boosted ensemble of shallow regression trees on
// squared loss. Predict uses the best validated prefix of the rounds,
// not necessarily all of them: later rounds can overfit, so training
// retains the best-seen state.
type Boost struct {
	basePrediction float64
	learningRate   float64
	trees          []*treeNode
	bestRounds     int // prefix of trees used for prediction
	features       []dataset.Column
	report         BoostReport
}

// BoostReport records how training went, round by round.
type BoostReport struct {
	Rounds         int       // rounds actually trained
	BestRound      int       // zero-based round with the lowest validation loss
	StoppedEarly   bool      // true when patience ran out before Rounds
	ValidationLoss []float64 // MSE per round on the validation partition
}

// TrainBoost fits the boosted ensemble, monitoring validation loss every
// round. When the loss has not improved for Patience consecutive rounds
// training halts and the model keeps the best round's state. Failing to
// improve is not an error: it is logged and training simply stops.
func TrainBoost(train, validation dataset.Dataset, features []dataset.Column, cfg BoostConfig) (*Boost, error) {
	X, y, err := trainingMatrix(train, features)
	if err != nil {
		return nil, err
	}
	XVal, err := validation.FeatureMatrix(features)
	if err != nil {
		return nil, err
	}
	yVal := validation.Target()
	if len(yVal) == 0 {
		return nil, core.NewInsufficientDataError(1, 0)
	}

	def := DefaultBoostConfig()
	if cfg.Rounds <= 0 {
		cfg.Rounds = def.Rounds
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.Subsample <= 0 || cfg.Subsample > 1 {
		cfg.Subsample = 1
	}
	if cfg.ColSubsample <= 0 || cfg.ColSubsample > 1 {
		cfg.ColSubsample = 1
	}
	if cfg.Patience <= 0 {
		cfg.Patience = def.Patience
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := len(y)

	base := mean(y)
	model := &Boost{
		basePrediction: base,
		learningRate:   cfg.LearningRate,
		features:       cloneColumns(features),
	}

	// Running predictions for train and validation rows.
	current := fill(n, base)
	currentVal := fill(len(yVal), base)
	residual := make([]float64, n)

	maxFeatures := int(cfg.ColSubsample * float64(len(features)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}
	tcfg := treeConfig{maxDepth: cfg.MaxDepth, minLeaf: 1, maxFeatures: maxFeatures}

	stopper := newEarlyStopper(cfg.Patience, mse(currentVal, yVal))

	for round := 0; round < cfg.Rounds; round++ {
		for i := range residual {
			residual[i] = y[i] - current[i]
		}

		sample := subsample(n, cfg.Subsample, rng)
		tree := growTree(X, residual, sample, tcfg, rng, nil)
		model.trees = append(model.trees, tree)

		for i, row := range X {
			current[i] += cfg.LearningRate * tree.predict(row)
		}
		for i, row := range XVal {
			currentVal[i] += cfg.LearningRate * tree.predict(row)
		}

		loss := mse(currentVal, yVal)
		model.report.ValidationLoss = append(model.report.ValidationLoss, loss)

		if stopper.observe(round, loss) {
			model.report.StoppedEarly = true
			log.Printf("[Boost] validation loss stalled for %d rounds, stopping at round %d (best %d)",
				cfg.Patience, round, stopper.bestRound)
			break
		}
	}

	model.bestRounds = stopper.bestRound + 1
	model.report.Rounds = len(model.trees)
	model.report.BestRound = stopper.bestRound
	log.Printf("[Boost] trained %d rounds, keeping %d (validation MSE %.4f)",
		len(model.trees), model.bestRounds, stopper.bestLoss)
	return model, nil
}

// earlyStopper tracks the best validation loss seen so far and decides
// when patience has run out. Round indices are zero-based; bestRound -1
// means nothing beat the pre-training baseline loss.
type earlyStopper struct {
	patience  int
	bestLoss  float64
	bestRound int
	sinceBest int
}

func newEarlyStopper(patience int, baseline float64) *earlyStopper {
	return &earlyStopper{patience: patience, bestLoss: baseline, bestRound: -1}
}

// observe records one round's validation loss and reports whether
// training should halt. Halting happens exactly at round
// bestRound+patience.
func (s *earlyStopper) observe(round int, loss float64) bool {
	if loss < s.bestLoss {
		s.bestLoss = loss
		s.bestRound = round
		s.sinceBest = 0
		return false
	}
	s.sinceBest++
	return s.sinceBest >= s.patience
}

// Predict sums the base prediction and the best validated prefix of trees.
func (b *Boost) Predict(x []float64) float64 {
	out := b.basePrediction
	for _, t := range b.trees[:b.bestRounds] {
		out += b.learningRate * t.predict(x)
	}
	return out
}

// Features returns the training feature order.
func (b *Boost) Features() []dataset.Column {
	return cloneColumns(b.features)
}

// Report returns the per-round training record.
func (b *Boost) Report() BoostReport {
	return b.report
}

func subsample(n int, fraction float64, rng *rand.Rand) []int {
	k := int(fraction * float64(n))
	if k < 1 {
		k = 1
	}
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return rng.Perm(n)[:k]
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

func mse(pred, actual []float64) float64 {
	sum := 0.0
	for i := range pred {
		d := pred[i] - actual[i]
		sum += d * d
	}
	return sum / float64(len(pred))
}
