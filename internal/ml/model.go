package ml

import (
	"salescope/domain/core"
	"salescope/domain/dataset"
)

// Model is an opaque trained predictor. Implementations are immutable
// once their constructor returns; prediction never mutates state.
type Model interface {
	// Predict maps one feature vector, in the model's training feature
	// order, to a predicted target value.
	Predict(features []float64) float64
	// Features returns the column order the model was trained with.
	Features() []dataset.Column
}

// PredictAll runs a model over every row of a dataset.
func PredictAll(m Model, ds dataset.Dataset) ([]float64, error) {
	rows, err := ds.FeatureMatrix(m.Features())
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = m.Predict(row)
	}
	return out, nil
}

// trainingMatrix extracts the design matrix and target vector a trainer
// consumes, validating the feature list up front.
func trainingMatrix(train dataset.Dataset, features []dataset.Column) ([][]float64, []float64, error) {
	if len(features) == 0 {
		return nil, nil, core.ErrNoFeatures
	}
	if train.IsEmpty() {
		return nil, nil, core.NewInsufficientDataError(1, 0)
	}
	X, err := train.FeatureMatrix(features)
	if err != nil {
		return nil, nil, err
	}
	return X, train.Target(), nil
}

func cloneColumns(cols []dataset.Column) []dataset.Column {
	out := make([]dataset.Column, len(cols))
	copy(out, cols)
	return out
}
