package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"salescope/domain/dataset"
)

// SalesGeneratorConfig configures the synthetic sales data generator.
type SalesGeneratorConfig struct {
	Stores    int
	WeeksPer  int
	StartDate time.Time
	Seed      int64
	// Noise is the standard-deviation-like amplitude of the random
	// component added to each weekly sales figure.
	Noise float64
}

// DefaultSalesConfig returns sensible defaults for generated test data.
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		Stores:    10,
		WeeksPer:  100,
		StartDate: time.Date(2010, 2, 5, 0, 0, 0, 0, time.UTC),
		Seed:      42,
		Noise:     5000,
	}
}

// SalesDataGenerator generates deterministic, structured retail sales
// records: sales depend on store size, temperature, holidays and the
// economy, so models trained on the output have real signal to find.
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a generator with the given config.
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRecords produces Stores*WeeksPer records.
func (g *SalesDataGenerator) GenerateRecords() []dataset.Record {
	var records []dataset.Record
	for s := 1; s <= g.config.Stores; s++ {
		baseVolume := 200000 + float64(s)*50000
		for w := 0; w < g.config.WeeksPer; w++ {
			date := g.config.StartDate.AddDate(0, 0, 7*w)
			temperature := 45 + 25*seasonal(date) + g.rng.NormFloat64()*5
			fuelPrice := 2.5 + 0.02*float64(w)/52 + g.rng.NormFloat64()*0.1
			priceIndex := 210 + 0.05*float64(w) + g.rng.NormFloat64()*0.5
			unemployment := 8 - 0.01*float64(w)/4 + g.rng.NormFloat64()*0.2
			holiday := date.Month() == time.December || g.rng.Float64() < 0.05

			sales := baseVolume
			sales -= 800 * (temperature - 45) // cold weeks sell more
			sales -= 12000 * (unemployment - 8)
			if holiday {
				sales *= 1.15
			}
			sales += g.rng.NormFloat64() * g.config.Noise
			if sales < 0 {
				sales = 0
			}

			records = append(records, dataset.Record{
				Store:        fmt.Sprintf("%d", s),
				Date:         date,
				Year:         date.Year(),
				Month:        int(date.Month()),
				WeeklySales:  sales,
				Holiday:      holiday,
				Temperature:  temperature,
				FuelPrice:    fuelPrice,
				PriceIndex:   priceIndex,
				Unemployment: unemployment,
			})
		}
	}
	return records
}

// GenerateDataset wraps GenerateRecords in a Dataset.
func (g *SalesDataGenerator) GenerateDataset() dataset.Dataset {
	return dataset.FromOwned(g.GenerateRecords())
}

// WriteCSV writes records in the pipeline's input format, for loader
// and end-to-end tests.
func WriteCSV(path string, records []dataset.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Store", "Date", "Weekly_Sales", "Holiday_Flag", "Temperature", "Fuel_Price", "CPI", "Unemployment"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		flag := "0"
		if r.Holiday {
			flag = "1"
		}
		row := []string{
			r.Store,
			r.Date.Format("02-01-2006"),
			strconv.FormatFloat(r.WeeklySales, 'f', 2, 64),
			flag,
			strconv.FormatFloat(r.Temperature, 'f', 2, 64),
			strconv.FormatFloat(r.FuelPrice, 'f', 3, 64),
			strconv.FormatFloat(r.PriceIndex, 'f', 3, 64),
			strconv.FormatFloat(r.Unemployment, 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// seasonal maps a date to a smooth [-1, 1] yearly cycle peaking mid-year.
func seasonal(date time.Time) float64 {
	day := float64(date.YearDay())
	return -math.Cos(2 * math.Pi * day / 365)
}
