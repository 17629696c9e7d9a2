package profiling

import (
	"math"
	"testing"
	"time"

	"salescope/domain/dataset"
)

func record(store string, month int, holiday bool, sales float64) dataset.Record {
	return dataset.Record{
		Store:       store,
		Date:        time.Date(2012, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		Year:        2012,
		Month:       month,
		WeeklySales: sales,
		Holiday:     holiday,
	}
}

func TestSummarizeBy_Store(t *testing.T) {
	ds := dataset.New([]dataset.Record{
		record("1", 1, false, 100),
		record("1", 2, false, 300),
		record("2", 1, false, 50),
	})

	groups, err := SummarizeBy(ds, ByStore)
	if err != nil {
		t.Fatalf("SummarizeBy failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	g := groups[0]
	if g.Key != "1" || g.Count != 2 {
		t.Fatalf("first group = %+v, want store 1 with 2 rows", g)
	}
	if g.Mean != 200 || g.Sum != 400 {
		t.Errorf("store 1 mean/sum = %v/%v, want 200/400", g.Mean, g.Sum)
	}
	// Sample stddev of {100, 300} is sqrt(20000).
	if math.Abs(g.StdDev-math.Sqrt(20000)) > 1e-9 {
		t.Errorf("store 1 stddev = %v", g.StdDev)
	}
}

func TestSummarizeBy_SingleRowGroupHasZeroStdDev(t *testing.T) {
	ds := dataset.New([]dataset.Record{
		record("1", 1, false, 100),
		record("2", 1, false, 250),
		record("2", 1, false, 350),
	})
	groups, err := SummarizeBy(ds, ByStore)
	if err != nil {
		t.Fatalf("SummarizeBy failed: %v", err)
	}
	if groups[0].Count != 1 {
		t.Fatalf("expected store 1 to be a singleton group, got %+v", groups[0])
	}
	// Undefined sample deviation is reported as zero, never NaN.
	if groups[0].StdDev != 0 {
		t.Errorf("singleton group stddev = %v, want 0", groups[0].StdDev)
	}
}

func TestSummarizeBy_HolidayAndMonthKeys(t *testing.T) {
	ds := dataset.New([]dataset.Record{
		record("1", 1, true, 100),
		record("1", 2, false, 200),
		record("1", 12, false, 300),
	})

	byHoliday, err := SummarizeBy(ds, ByHoliday)
	if err != nil {
		t.Fatalf("SummarizeBy(ByHoliday) failed: %v", err)
	}
	if len(byHoliday) != 2 {
		t.Fatalf("expected holiday/regular groups, got %d", len(byHoliday))
	}

	byMonth, err := SummarizeBy(ds, ByMonth)
	if err != nil {
		t.Fatalf("SummarizeBy(ByMonth) failed: %v", err)
	}
	if byMonth[0].Key != "01" || byMonth[2].Key != "12" {
		t.Errorf("month groups out of order: %+v", byMonth)
	}
}

func TestSummarizeBy_NumericStoreOrdering(t *testing.T) {
	ds := dataset.New([]dataset.Record{
		record("10", 1, false, 1),
		record("2", 1, false, 1),
	})
	groups, err := SummarizeBy(ds, ByStore)
	if err != nil {
		t.Fatalf("SummarizeBy failed: %v", err)
	}
	if groups[0].Key != "2" {
		t.Errorf("store 2 should sort before store 10, got %v first", groups[0].Key)
	}
}

func TestSummarizeBy_EmptyDataset(t *testing.T) {
	if _, err := SummarizeBy(dataset.New(nil), ByStore); err == nil {
		t.Fatal("expected error on empty dataset")
	}
}

func TestSummarizeBy_DoesNotMutateInput(t *testing.T) {
	ds := dataset.New([]dataset.Record{record("1", 1, false, 100)})
	before := ds.Record(0)
	if _, err := SummarizeBy(ds, ByStore); err != nil {
		t.Fatalf("SummarizeBy failed: %v", err)
	}
	if ds.Record(0) != before {
		t.Error("summarizer mutated the dataset")
	}
}

func TestProfileTarget(t *testing.T) {
	ds := dataset.New([]dataset.Record{
		record("1", 1, false, 10),
		record("1", 1, false, 20),
		record("1", 1, false, 30),
		record("1", 1, false, 40),
	})
	p, err := ProfileTarget(ds)
	if err != nil {
		t.Fatalf("ProfileTarget failed: %v", err)
	}
	if p.Count != 4 || p.Mean != 25 || p.Min != 10 || p.Max != 40 || p.Median != 25 {
		t.Errorf("profile = %+v", p)
	}
	// Symmetric data has no skew.
	if math.Abs(p.Skewness) > 1e-9 {
		t.Errorf("skewness = %v, want 0", p.Skewness)
	}
}
