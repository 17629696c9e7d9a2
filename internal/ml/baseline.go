package ml

import (
	"log"
	"math"

	"salescope/domain/dataset"

	"github.com/ezoic/scigo/linear"
	"gonum.org/v1/gonum/mat"
)

// Baseline wraps an ordinary least-squares regression. It is not one of
// the report's two ensemble variants; it exists to anchor their metrics
// against the simplest reasonable model.
type Baseline struct {
	model    *linear.LinearRegression
	features []dataset.Column
}

// TrainBaseline fits a linear regression on the training partition.
func TrainBaseline(train dataset.Dataset, features []dataset.Column) (*Baseline, error) {
	rows, y, err := trainingMatrix(train, features)
	if err != nil {
		return nil, err
	}

	X := mat.NewDense(len(rows), len(features), nil)
	for i, row := range rows {
		X.SetRow(i, row)
	}
	Y := mat.NewDense(len(y), 1, y)

	model := linear.NewLinearRegression()
	if err := model.Fit(X, Y); err != nil {
		return nil, err
	}
	log.Printf("[Baseline] linear regression fit on %d rows", len(rows))
	return &Baseline{model: model, features: cloneColumns(features)}, nil
}

// Predict evaluates the regression on one feature vector. A prediction
// failure surfaces as NaN, which the evaluator reports rather than
// silently scoring.
func (b *Baseline) Predict(x []float64) float64 {
	X := mat.NewDense(1, len(x), x)
	pred, err := b.model.Predict(X)
	if err != nil {
		return math.NaN()
	}
	return pred.At(0, 0)
}

// Features returns the training feature order.
func (b *Baseline) Features() []dataset.Column {
	return cloneColumns(b.features)
}
