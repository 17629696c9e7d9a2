package cleaning

import (
	"fmt"

	"salescope/domain/core"
	"salescope/domain/dataset"

	"gonum.org/v1/gonum/stat"
)

// Scaler rescales a set of continuous columns and can undo the mapping.
// A scaler is fit once against one dataset; Transform and Inverse then
// use the fitted parameters, so values can be mapped back to original
// scale after prediction. The two implementations are alternatives: a
// pipeline run uses exactly one of them per column, never both.
type Scaler interface {
	Fit(ds dataset.Dataset, cols ...dataset.Column) error
	Transform(ds dataset.Dataset) (dataset.Dataset, error)
	Inverse(ds dataset.Dataset) (dataset.Dataset, error)
	// InverseValues maps a single column's values back to original
	// scale, for de-normalizing predictions before percentage metrics.
	InverseValues(col dataset.Column, values []float64) ([]float64, error)
	// Scales reports whether the scaler was fit over the given column.
	Scales(col dataset.Column) bool
}

type columnParams struct {
	// z-score: a=mean, b=stddev. min-max: a=min, b=max-min.
	a, b float64
}

// StandardScaler maps each fitted column to zero mean and unit variance.
type StandardScaler struct {
	params map[dataset.Column]columnParams
}

// NewStandardScaler creates an unfitted z-score scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit learns per-column mean and standard deviation.
func (s *StandardScaler) Fit(ds dataset.Dataset, cols ...dataset.Column) error {
	params, err := fitColumns(ds, cols, func(values []float64) (columnParams, error) {
		mean, sd := stat.MeanStdDev(values, nil)
		if sd == 0 {
			sd = 1 // constant column: leave values at zero after centering
		}
		return columnParams{a: mean, b: sd}, nil
	})
	if err != nil {
		return err
	}
	s.params = params
	return nil
}

func (s *StandardScaler) Transform(ds dataset.Dataset) (dataset.Dataset, error) {
	return apply(ds, s.params, func(p columnParams, v float64) float64 { return (v - p.a) / p.b })
}

func (s *StandardScaler) Inverse(ds dataset.Dataset) (dataset.Dataset, error) {
	return apply(ds, s.params, func(p columnParams, v float64) float64 { return v*p.b + p.a })
}

func (s *StandardScaler) InverseValues(col dataset.Column, values []float64) ([]float64, error) {
	return inverseValues(s.params, col, values, func(p columnParams, v float64) float64 { return v*p.b + p.a })
}

func (s *StandardScaler) Scales(col dataset.Column) bool {
	_, ok := s.params[col]
	return ok
}

// MinMaxScaler maps each fitted column onto [0, 1].
type MinMaxScaler struct {
	params map[dataset.Column]columnParams
}

// NewMinMaxScaler creates an unfitted min-max scaler.
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{}
}

// Fit learns per-column minimum and range.
func (s *MinMaxScaler) Fit(ds dataset.Dataset, cols ...dataset.Column) error {
	params, err := fitColumns(ds, cols, func(values []float64) (columnParams, error) {
		lo, hi := values[0], values[0]
		for _, v := range values[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		span := hi - lo
		if span == 0 {
			span = 1 // constant column maps to 0
		}
		return columnParams{a: lo, b: span}, nil
	})
	if err != nil {
		return err
	}
	s.params = params
	return nil
}

func (s *MinMaxScaler) Transform(ds dataset.Dataset) (dataset.Dataset, error) {
	return apply(ds, s.params, func(p columnParams, v float64) float64 { return (v - p.a) / p.b })
}

func (s *MinMaxScaler) Inverse(ds dataset.Dataset) (dataset.Dataset, error) {
	return apply(ds, s.params, func(p columnParams, v float64) float64 { return v*p.b + p.a })
}

func (s *MinMaxScaler) InverseValues(col dataset.Column, values []float64) ([]float64, error) {
	return inverseValues(s.params, col, values, func(p columnParams, v float64) float64 { return v*p.b + p.a })
}

func (s *MinMaxScaler) Scales(col dataset.Column) bool {
	_, ok := s.params[col]
	return ok
}

func fitColumns(ds dataset.Dataset, cols []dataset.Column, fit func([]float64) (columnParams, error)) (map[dataset.Column]columnParams, error) {
	if ds.IsEmpty() {
		return nil, core.NewInsufficientDataError(1, 0)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: scaler needs at least one column", core.ErrColumnUnknown)
	}
	params := make(map[dataset.Column]columnParams, len(cols))
	for _, col := range cols {
		values, err := ds.ColumnValues(col)
		if err != nil {
			return nil, err
		}
		// Reject columns that cannot be written back.
		probe := ds.Record(0)
		if err := probe.SetValue(col, values[0]); err != nil {
			return nil, fmt.Errorf("%w: %s", err, col)
		}
		p, err := fit(values)
		if err != nil {
			return nil, err
		}
		params[col] = p
	}
	return params, nil
}

func apply(ds dataset.Dataset, params map[dataset.Column]columnParams, fn func(columnParams, float64) float64) (dataset.Dataset, error) {
	if params == nil {
		return dataset.Dataset{}, core.ErrNotFitted
	}
	out := ds.Map(func(r dataset.Record) dataset.Record {
		for col, p := range params {
			v, _ := r.Value(col)
			_ = r.SetValue(col, fn(p, v))
		}
		return r
	})
	return out, nil
}

func inverseValues(params map[dataset.Column]columnParams, col dataset.Column, values []float64, fn func(columnParams, float64) float64) ([]float64, error) {
	if params == nil {
		return nil, core.ErrNotFitted
	}
	p, ok := params[col]
	if !ok {
		return nil, fmt.Errorf("%w: %s was not fitted", core.ErrColumnUnknown, col)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = fn(p, v)
	}
	return out, nil
}
