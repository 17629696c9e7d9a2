package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"salescope/adapters/plot"
	"salescope/adapters/tabular"
	"salescope/domain/core"
	"salescope/domain/dataset"
	"salescope/internal"
	"salescope/internal/cleaning"
	"salescope/internal/evaluation"
	"salescope/internal/ml"
	"salescope/internal/partition"
	"salescope/internal/profiling"
)

// ReportService runs the full analysis: load, summarize, clean, split,
// train the two ensemble variants (plus an optional linear baseline),
// evaluate, and render plots. One call, one report; the service keeps
// no state between runs.
type ReportService struct {
	logger *internal.Logger
}

// NewReportService creates a report service.
func NewReportService(logger *internal.Logger) *ReportService {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &ReportService{logger: logger}
}

// RunRequest configures one pipeline run.
type RunRequest struct {
	DataPath string
	PlotDir  string // empty disables plotting
	Seed     int64
	Ratios   partition.Ratios
	Forest   ml.ForestConfig
	Boost    ml.BoostConfig
	Features []dataset.Column // nil means dataset.DefaultFeatures
	Baseline bool
}

// VariantResult is the outcome of one model pipeline.
type VariantResult struct {
	Name   string
	Report *evaluation.Report
	// Importance is present only for the forest variant.
	Importance []float64
	// Boost is present only for the boosted variant.
	Boost *ml.BoostReport
}

// RunResult is the complete output of one run.
type RunResult struct {
	RunID     core.RunID
	StartedAt core.Timestamp
	DataHash  core.DatasetHash
	Rows      int // rows after cleaning
	RawRows   int // rows as loaded
	Features  []dataset.Column
	Profile   profiling.TargetProfile
	Summaries map[profiling.GroupKey][]profiling.GroupStat
	Variants  []VariantResult
	PlotPaths []string
	Runtime   time.Duration
}

// The two model pipelines deliberately prepare their data differently:
// the forest variant standardizes features and splits uniformly, the
// boosted variant min-max normalizes features and target and splits
// stratified. The divergence is inherited from the analysis this
// report reproduces and is kept as two documented presets rather than
// unified.
var (
	forestScaling = dataset.DefaultFeatures
	boostScaling  = append([]dataset.Column{dataset.TargetColumn}, dataset.DefaultFeatures...)
)

// Run executes the pipeline. Stages run strictly in sequence; the first
// failing stage aborts the run.
func (s *ReportService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	result := &RunResult{RunID: core.NewRunID(), StartedAt: core.Now()}
	s.logger.Info("run %s starting on %s", result.RunID, req.DataPath)

	features := req.Features
	if features == nil {
		features = dataset.DefaultFeatures
	}
	result.Features = features

	// Load and fingerprint.
	rawBytes, err := os.ReadFile(req.DataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrParse, err)
	}
	result.DataHash = core.NewDatasetHash(rawBytes)

	ds, err := tabular.Load(req.DataPath)
	if err != nil {
		return nil, err
	}
	result.RawRows = ds.Len()

	// Summarize before cleaning so the report describes the data as
	// it arrived.
	if result.Profile, err = profiling.ProfileTarget(ds); err != nil {
		return nil, err
	}
	result.Summaries = make(map[profiling.GroupKey][]profiling.GroupStat, 3)
	for _, key := range []profiling.GroupKey{profiling.ByStore, profiling.ByMonth, profiling.ByHoliday} {
		if result.Summaries[key], err = profiling.SummarizeBy(ds, key); err != nil {
			return nil, err
		}
	}

	// Clean.
	targetBefore := ds.Target()
	cleaned := cleaning.Deduplicate(ds)
	cleaned, _, err = cleaning.TrimOutliers(cleaned, cleaning.DefaultOutlierPercentile)
	if err != nil {
		return nil, err
	}
	result.Rows = cleaned.Len()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var renderer *plot.Renderer
	if req.PlotDir != "" {
		if renderer, err = plot.NewRenderer(req.PlotDir); err != nil {
			s.logger.Warn("plotting disabled: %v", err)
			renderer = nil
		}
	}
	if renderer != nil {
		path, err := renderer.TargetBoxplot(targetBefore, cleaned.Target())
		s.recordPlot(result, path, err)
	}

	// Variant A: bagged forest on standardized features, uniform split.
	forestVariant, err := s.runForestVariant(result, cleaned, features, req, renderer)
	if err != nil {
		return nil, fmt.Errorf("forest variant: %w", err)
	}
	result.Variants = append(result.Variants, *forestVariant)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Variant B: boosted ensemble on min-max data, stratified split.
	boostVariant, err := s.runBoostVariant(result, cleaned, features, req, renderer)
	if err != nil {
		return nil, fmt.Errorf("boosted variant: %w", err)
	}
	result.Variants = append(result.Variants, *boostVariant)

	if req.Baseline {
		baseVariant, err := s.runBaselineVariant(cleaned, features, req)
		if err != nil {
			return nil, fmt.Errorf("baseline variant: %w", err)
		}
		result.Variants = append(result.Variants, *baseVariant)
	}

	result.Runtime = time.Since(result.StartedAt.Time())
	s.logger.Info("run %s finished in %s", result.RunID, result.Runtime)
	return result, nil
}

func (s *ReportService) runForestVariant(result *RunResult, cleaned dataset.Dataset, features []dataset.Column, req RunRequest, renderer *plot.Renderer) (*VariantResult, error) {
	scaler := cleaning.NewStandardScaler()
	if err := scaler.Fit(cleaned, scalableSubset(forestScaling, features)...); err != nil {
		return nil, err
	}
	scaled, err := scaler.Transform(cleaned)
	if err != nil {
		return nil, err
	}

	split, err := partition.Split(scaled, req.Ratios, req.Seed, partition.Uniform)
	if err != nil {
		return nil, err
	}

	cfg := req.Forest
	if cfg.Seed == 0 {
		cfg.Seed = req.Seed
	}
	forest, err := ml.TrainForest(split.Train.Data, features, cfg)
	if err != nil {
		return nil, err
	}

	// Target was never rescaled in this variant, so no denormalizer.
	report, err := evaluation.Evaluate("forest", forest,
		[]dataset.Partition{split.Train, split.Validation, split.Test}, nil)
	if err != nil {
		return nil, err
	}

	importance, err := forest.FeatureImportance()
	if err != nil {
		return nil, err
	}

	if renderer != nil {
		names := make([]string, len(features))
		for i, f := range features {
			names[i] = string(f)
		}
		s.renderVariantPlots(result, renderer, "forest", forest, split.Test, nil)
		path, err := renderer.FeatureImportance("forest", names, importance)
		s.recordPlot(result, path, err)
	}

	return &VariantResult{Name: "forest", Report: report, Importance: importance}, nil
}

func (s *ReportService) runBoostVariant(result *RunResult, cleaned dataset.Dataset, features []dataset.Column, req RunRequest, renderer *plot.Renderer) (*VariantResult, error) {
	scaler := cleaning.NewMinMaxScaler()
	if err := scaler.Fit(cleaned, scalableSubset(boostScaling, features)...); err != nil {
		return nil, err
	}
	scaled, err := scaler.Transform(cleaned)
	if err != nil {
		return nil, err
	}

	split, err := partition.Split(scaled, req.Ratios, req.Seed, partition.Stratified)
	if err != nil {
		return nil, err
	}

	cfg := req.Boost
	if cfg.Seed == 0 {
		cfg.Seed = req.Seed
	}
	boost, err := ml.TrainBoost(split.Train.Data, split.Validation.Data, features, cfg)
	if err != nil {
		return nil, err
	}
	boostReport := boost.Report()

	// The target was min-max normalized upstream: map predictions and
	// actuals back to sales units before any percentage metric.
	denorm := func(values []float64) ([]float64, error) {
		return scaler.InverseValues(dataset.TargetColumn, values)
	}
	report, err := evaluation.Evaluate("boost", boost,
		[]dataset.Partition{split.Train, split.Validation, split.Test}, denorm)
	if err != nil {
		return nil, err
	}

	if renderer != nil {
		s.renderVariantPlots(result, renderer, "boost", boost, split.Test, denorm)
	}

	return &VariantResult{Name: "boost", Report: report, Boost: &boostReport}, nil
}

func (s *ReportService) runBaselineVariant(cleaned dataset.Dataset, features []dataset.Column, req RunRequest) (*VariantResult, error) {
	// The baseline shares the forest variant's preparation so the two
	// are directly comparable.
	scaler := cleaning.NewStandardScaler()
	if err := scaler.Fit(cleaned, scalableSubset(forestScaling, features)...); err != nil {
		return nil, err
	}
	scaled, err := scaler.Transform(cleaned)
	if err != nil {
		return nil, err
	}
	split, err := partition.Split(scaled, req.Ratios, req.Seed, partition.Uniform)
	if err != nil {
		return nil, err
	}
	baseline, err := ml.TrainBaseline(split.Train.Data, features)
	if err != nil {
		return nil, err
	}
	report, err := evaluation.Evaluate("baseline", baseline,
		[]dataset.Partition{split.Train, split.Validation, split.Test}, nil)
	if err != nil {
		return nil, err
	}
	return &VariantResult{Name: "baseline", Report: report}, nil
}

// renderVariantPlots draws the predicted-vs-actual scatter for one model
// on the test partition, in original target units.
func (s *ReportService) renderVariantPlots(result *RunResult, renderer *plot.Renderer, name string, m ml.Model, test dataset.Partition, denorm evaluation.Denormalizer) {
	predicted, err := ml.PredictAll(m, test.Data)
	if err != nil {
		s.logger.Warn("%s scatter plot skipped: %v", name, err)
		return
	}
	actual := test.Data.Target()
	if denorm != nil {
		if predicted, err = denorm(predicted); err != nil {
			s.logger.Warn("%s scatter plot skipped: %v", name, err)
			return
		}
		if actual, err = denorm(actual); err != nil {
			s.logger.Warn("%s scatter plot skipped: %v", name, err)
			return
		}
	}
	path, err := renderer.PredictedVsActual(name, actual, predicted)
	s.recordPlot(result, path, err)
}

// recordPlot appends a rendered plot's path to the run result. A failed
// plot is logged and skipped; it never fails the run.
func (s *ReportService) recordPlot(result *RunResult, path string, err error) {
	if err != nil {
		s.logger.Warn("plot failed: %v", err)
		return
	}
	result.PlotPaths = append(result.PlotPaths, path)
}

// scalableSubset intersects a scaling preset with the run's feature
// list, dropping columns a scaler may not touch (holiday, year, month).
func scalableSubset(preset, features []dataset.Column) []dataset.Column {
	scalable := make(map[dataset.Column]bool)
	for _, c := range dataset.ScalableColumns() {
		scalable[c] = true
	}
	inRun := make(map[dataset.Column]bool, len(features)+1)
	inRun[dataset.TargetColumn] = true
	for _, c := range features {
		inRun[c] = true
	}
	var out []dataset.Column
	for _, c := range preset {
		if scalable[c] && inRun[c] {
			out = append(out, c)
		}
	}
	return out
}
