package dataset

import (
	"salescope/domain/core"
)

// Dataset is an ordered, immutable sequence of Records. Transformations
// return fresh Datasets; nothing in the pipeline mutates one in place.
type Dataset struct {
	records []Record
}

// New builds a Dataset over a copy of the given records.
func New(records []Record) Dataset {
	rs := make([]Record, len(records))
	copy(rs, records)
	return Dataset{records: rs}
}

// FromOwned wraps records the caller promises not to retain. It exists
// so transformation steps can hand over freshly built slices without a
// second copy.
func FromOwned(records []Record) Dataset {
	return Dataset{records: records}
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.records)
}

// IsEmpty reports whether the dataset holds no records.
func (d Dataset) IsEmpty() bool {
	return len(d.records) == 0
}

// Record returns the record at position i.
func (d Dataset) Record(i int) Record {
	return d.records[i]
}

// Records returns a copy of the underlying records.
func (d Dataset) Records() []Record {
	rs := make([]Record, len(d.records))
	copy(rs, d.records)
	return rs
}

// Target returns the target column as a slice, in record order.
func (d Dataset) Target() []float64 {
	out := make([]float64, len(d.records))
	for i, r := range d.records {
		out[i] = r.WeeklySales
	}
	return out
}

// ColumnValues extracts one column as a slice, in record order.
func (d Dataset) ColumnValues(col Column) ([]float64, error) {
	out := make([]float64, len(d.records))
	for i, r := range d.records {
		v, err := r.Value(col)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// FeatureMatrix builds the row-major design matrix for the given
// feature columns, aligned with Target().
func (d Dataset) FeatureMatrix(features []Column) ([][]float64, error) {
	if len(features) == 0 {
		return nil, core.ErrNoFeatures
	}
	rows := make([][]float64, len(d.records))
	for i, r := range d.records {
		row := make([]float64, len(features))
		for j, col := range features {
			v, err := r.Value(col)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}

// Select returns a new Dataset holding the records at the given indices,
// in the given order.
func (d Dataset) Select(indices []int) Dataset {
	rs := make([]Record, len(indices))
	for i, idx := range indices {
		rs[i] = d.records[idx]
	}
	return Dataset{records: rs}
}

// Map returns a new Dataset where every record has been passed through fn.
func (d Dataset) Map(fn func(Record) Record) Dataset {
	rs := make([]Record, len(d.records))
	for i, r := range d.records {
		rs[i] = fn(r)
	}
	return Dataset{records: rs}
}

// Filter returns a new Dataset with the records keep() accepted.
func (d Dataset) Filter(keep func(Record) bool) Dataset {
	rs := make([]Record, 0, len(d.records))
	for _, r := range d.records {
		if keep(r) {
			rs = append(rs, r)
		}
	}
	return Dataset{records: rs}
}
