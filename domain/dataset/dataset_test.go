package dataset

import (
	"errors"
	"testing"
	"time"

	"salescope/domain/core"
)

func sampleRecords() []Record {
	return []Record{
		{Store: "1", Date: time.Date(2011, 2, 4, 0, 0, 0, 0, time.UTC), Year: 2011, Month: 2,
			WeeklySales: 24000, Holiday: true, Temperature: 38.5, FuelPrice: 2.55, PriceIndex: 211.1, Unemployment: 8.1},
		{Store: "1", Date: time.Date(2011, 2, 11, 0, 0, 0, 0, time.UTC), Year: 2011, Month: 2,
			WeeklySales: 21500, Holiday: false, Temperature: 41.0, FuelPrice: 2.60, PriceIndex: 211.3, Unemployment: 8.1},
		{Store: "2", Date: time.Date(2011, 2, 4, 0, 0, 0, 0, time.UTC), Year: 2011, Month: 2,
			WeeklySales: 19800, Holiday: true, Temperature: 39.2, FuelPrice: 2.51, PriceIndex: 210.9, Unemployment: 7.8},
	}
}

func TestRecordValue(t *testing.T) {
	r := sampleRecords()[0]

	cases := []struct {
		col  Column
		want float64
	}{
		{ColWeeklySales, 24000},
		{ColTemperature, 38.5},
		{ColFuelPrice, 2.55},
		{ColPriceIndex, 211.1},
		{ColUnemployment, 8.1},
		{ColHoliday, 1},
		{ColYear, 2011},
		{ColMonth, 2},
	}
	for _, tc := range cases {
		got, err := r.Value(tc.col)
		if err != nil {
			t.Errorf("Value(%s) failed: %v", tc.col, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Value(%s) = %v, want %v", tc.col, got, tc.want)
		}
	}

	if _, err := r.Value(Column("nonsense")); !errors.Is(err, core.ErrColumnUnknown) {
		t.Errorf("expected ErrColumnUnknown, got %v", err)
	}
}

func TestRecordValue_HolidayFalseReadsZero(t *testing.T) {
	r := sampleRecords()[1]
	v, err := r.Value(ColHoliday)
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != 0 {
		t.Errorf("non-holiday week read as %v, want 0", v)
	}
}

func TestRecordSetValue(t *testing.T) {
	r := sampleRecords()[0]
	if err := r.SetValue(ColTemperature, -1.5); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if r.Temperature != -1.5 {
		t.Errorf("Temperature = %v after write, want -1.5", r.Temperature)
	}

	for _, col := range []Column{ColHoliday, ColYear, ColMonth, ColStore, ColDate} {
		if err := r.SetValue(col, 99); !errors.Is(err, core.ErrColumnImmutable) {
			t.Errorf("SetValue(%s) = %v, want ErrColumnImmutable", col, err)
		}
	}
	if err := r.SetValue(Column("nonsense"), 1); !errors.Is(err, core.ErrColumnUnknown) {
		t.Errorf("expected ErrColumnUnknown, got %v", err)
	}
}

func TestDatasetNewCopiesInput(t *testing.T) {
	records := sampleRecords()
	ds := New(records)

	records[0].WeeklySales = -1
	if ds.Record(0).WeeklySales != 24000 {
		t.Error("mutating the source slice changed the dataset")
	}

	out := ds.Records()
	out[1].Store = "mutated"
	if ds.Record(1).Store != "1" {
		t.Error("mutating Records() output changed the dataset")
	}
}

func TestDatasetTarget(t *testing.T) {
	ds := New(sampleRecords())
	got := ds.Target()
	want := []float64{24000, 21500, 19800}
	if len(got) != len(want) {
		t.Fatalf("Target() has %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Target()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDatasetFeatureMatrix(t *testing.T) {
	ds := New(sampleRecords())

	m, err := ds.FeatureMatrix([]Column{ColTemperature, ColHoliday})
	if err != nil {
		t.Fatalf("FeatureMatrix failed: %v", err)
	}
	if len(m) != 3 || len(m[0]) != 2 {
		t.Fatalf("matrix shape %dx%d, want 3x2", len(m), len(m[0]))
	}
	if m[0][0] != 38.5 || m[0][1] != 1 {
		t.Errorf("first row = %v, want [38.5 1]", m[0])
	}
	if m[1][1] != 0 {
		t.Errorf("second row holiday = %v, want 0", m[1][1])
	}

	if _, err := ds.FeatureMatrix(nil); !errors.Is(err, core.ErrNoFeatures) {
		t.Errorf("expected ErrNoFeatures for empty feature list, got %v", err)
	}
	if _, err := ds.FeatureMatrix([]Column{Column("nope")}); !errors.Is(err, core.ErrColumnUnknown) {
		t.Errorf("expected ErrColumnUnknown, got %v", err)
	}
}

func TestDatasetSelect(t *testing.T) {
	ds := New(sampleRecords())
	sub := ds.Select([]int{2, 0})
	if sub.Len() != 2 {
		t.Fatalf("Select returned %d records, want 2", sub.Len())
	}
	if sub.Record(0).Store != "2" || sub.Record(1).Store != "1" {
		t.Error("Select did not preserve index order")
	}
}

func TestDatasetMapDoesNotMutate(t *testing.T) {
	ds := New(sampleRecords())
	doubled := ds.Map(func(r Record) Record {
		r.WeeklySales *= 2
		return r
	})
	if doubled.Record(0).WeeklySales != 48000 {
		t.Errorf("mapped sales = %v, want 48000", doubled.Record(0).WeeklySales)
	}
	if ds.Record(0).WeeklySales != 24000 {
		t.Error("Map mutated the source dataset")
	}
}

func TestDatasetFilter(t *testing.T) {
	ds := New(sampleRecords())
	holidays := ds.Filter(func(r Record) bool { return r.Holiday })
	if holidays.Len() != 2 {
		t.Fatalf("Filter kept %d records, want 2", holidays.Len())
	}
	for i := 0; i < holidays.Len(); i++ {
		if !holidays.Record(i).Holiday {
			t.Error("Filter kept a non-holiday record")
		}
	}
}

func TestDatasetColumnValues(t *testing.T) {
	ds := New(sampleRecords())
	vals, err := ds.ColumnValues(ColUnemployment)
	if err != nil {
		t.Fatalf("ColumnValues failed: %v", err)
	}
	if vals[2] != 7.8 {
		t.Errorf("ColumnValues[2] = %v, want 7.8", vals[2])
	}
}
