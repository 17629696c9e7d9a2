package main

import (
	"fmt"
	"os"

	"salescope/adapters/tabular"
	"salescope/app"
	"salescope/internal"
	"salescope/internal/config"
	"salescope/internal/ml"
	"salescope/internal/partition"
	"salescope/internal/profiling"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "salescope",
		Short: "Retail sales analysis: summaries, cleaning, and model comparison",
	}

	rootCmd.AddCommand(
		newReportCmd(cfg),
		newSummarizeCmd(cfg),
		newSplitCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newReportCmd(cfg *config.Config) *cobra.Command {
	var (
		dataPath string
		plotDir  string
		seed     int64
		train    float64
		val      float64
		test     float64
		baseline bool

		trees       int
		maxFeatures int
		forestDepth int

		rounds       int
		learningRate float64
		boostDepth   int
		subsample    float64
		colSubsample float64
		patience     int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the full pipeline and print the comparison report",
		RunE: func(cmd *cobra.Command, args []string) error {
			service := app.NewReportService(internal.NewDefaultLogger())
			result, err := service.Run(cmd.Context(), app.RunRequest{
				DataPath: dataPath,
				PlotDir:  plotDir,
				Seed:     seed,
				Ratios:   partition.Ratios{Train: train, Validation: val, Test: test},
				Baseline: baseline,
				Forest: ml.ForestConfig{
					Trees:       trees,
					MaxFeatures: maxFeatures,
					MaxDepth:    forestDepth,
					MinLeaf:     2,
				},
				Boost: ml.BoostConfig{
					Rounds:       rounds,
					LearningRate: learningRate,
					MaxDepth:     boostDepth,
					Subsample:    subsample,
					ColSubsample: colSubsample,
					Patience:     patience,
				},
			})
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}

	forestDef := ml.DefaultForestConfig()
	boostDef := ml.DefaultBoostConfig()

	cmd.Flags().StringVar(&dataPath, "data", cfg.Data.File, "input CSV or XLSX file")
	cmd.Flags().StringVar(&plotDir, "plots", cfg.PlotDir(), "plot output directory, empty to disable")
	cmd.Flags().Int64Var(&seed, "seed", cfg.Run.Seed, "random seed for splits and training")
	cmd.Flags().Float64Var(&train, "train", cfg.Run.Train, "training partition ratio")
	cmd.Flags().Float64Var(&val, "validation", cfg.Run.Validation, "validation partition ratio")
	cmd.Flags().Float64Var(&test, "test", cfg.Run.Test, "test partition ratio")
	cmd.Flags().BoolVar(&baseline, "baseline", false, "also fit a linear-regression baseline")
	cmd.Flags().IntVar(&trees, "trees", forestDef.Trees, "forest: number of trees")
	cmd.Flags().IntVar(&maxFeatures, "max-features", forestDef.MaxFeatures, "forest: candidate features per split")
	cmd.Flags().IntVar(&forestDepth, "forest-depth", forestDef.MaxDepth, "forest: maximum tree depth")
	cmd.Flags().IntVar(&rounds, "rounds", boostDef.Rounds, "boost: maximum boosting rounds")
	cmd.Flags().Float64Var(&learningRate, "learning-rate", boostDef.LearningRate, "boost: shrinkage per round")
	cmd.Flags().IntVar(&boostDepth, "boost-depth", boostDef.MaxDepth, "boost: weak learner depth")
	cmd.Flags().Float64Var(&subsample, "subsample", boostDef.Subsample, "boost: row fraction per round")
	cmd.Flags().Float64Var(&colSubsample, "col-subsample", boostDef.ColSubsample, "boost: feature fraction per round")
	cmd.Flags().IntVar(&patience, "patience", boostDef.Patience, "boost: early-stopping patience in rounds")

	return cmd
}

func newSummarizeCmd(cfg *config.Config) *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Load the dataset and print grouped summaries only",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := tabular.Load(dataPath)
			if err != nil {
				return err
			}
			profile, err := profiling.ProfileTarget(ds)
			if err != nil {
				return err
			}
			printProfile(profile)
			for _, key := range []profiling.GroupKey{profiling.ByStore, profiling.ByMonth, profiling.ByHoliday} {
				groups, err := profiling.SummarizeBy(ds, key)
				if err != nil {
					return err
				}
				printSummary(key, groups)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", cfg.Data.File, "input CSV or XLSX file")
	return cmd
}

func newSplitCmd(cfg *config.Config) *cobra.Command {
	var (
		dataPath string
		seed     int64
		train    float64
		val      float64
		test     float64
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Partition the dataset and print the resulting sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := tabular.Load(dataPath)
			if err != nil {
				return err
			}
			result, err := partition.Split(ds,
				partition.Ratios{Train: train, Validation: val, Test: test},
				seed, partition.Strategy(strategy))
			if err != nil {
				return err
			}
			fmt.Printf("strategy=%s seed=%d\n", result.Strategy, result.Seed)
			fmt.Printf("train=%d validation=%d test=%d of %d\n",
				result.Train.Len(), result.Validation.Len(), result.Test.Len(), ds.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", cfg.Data.File, "input CSV or XLSX file")
	cmd.Flags().Int64Var(&seed, "seed", cfg.Run.Seed, "random seed")
	cmd.Flags().Float64Var(&train, "train", cfg.Run.Train, "training partition ratio")
	cmd.Flags().Float64Var(&val, "validation", cfg.Run.Validation, "validation partition ratio")
	cmd.Flags().Float64Var(&test, "test", cfg.Run.Test, "test partition ratio")
	cmd.Flags().StringVar(&strategy, "strategy", string(partition.Uniform), "uniform or stratified")
	return cmd
}

func printResult(result *app.RunResult) {
	fmt.Printf("run %s at %s (data %s)\n", result.RunID, result.StartedAt, shortHash(result.DataHash.String()))
	fmt.Printf("rows: %d loaded, %d after cleaning\n", result.RawRows, result.Rows)
	printProfile(result.Profile)
	for _, key := range []profiling.GroupKey{profiling.ByStore, profiling.ByMonth, profiling.ByHoliday} {
		printSummary(key, result.Summaries[key])
	}
	fmt.Println()
	for _, v := range result.Variants {
		fmt.Print(v.Report.Format())
		if v.Boost != nil {
			fmt.Printf("  trained %d rounds, best round %d, stopped early: %v\n",
				v.Boost.Rounds, v.Boost.BestRound, v.Boost.StoppedEarly)
		}
		if v.Importance != nil {
			fmt.Println("  feature importance:")
			for i, imp := range v.Importance {
				fmt.Printf("    %-14s %.4f\n", result.Features[i], imp)
			}
		}
		fmt.Println()
	}
	for _, p := range result.PlotPaths {
		fmt.Printf("plot: %s\n", p)
	}
	fmt.Printf("runtime: %s\n", result.Runtime)
}

func printProfile(p profiling.TargetProfile) {
	fmt.Printf("target: n=%d mean=%.2f sd=%.2f min=%.2f q25=%.2f median=%.2f q75=%.2f max=%.2f skew=%.3f\n",
		p.Count, p.Mean, p.StdDev, p.Min, p.Q25, p.Median, p.Q75, p.Max, p.Skewness)
}

func printSummary(key profiling.GroupKey, groups []profiling.GroupStat) {
	fmt.Printf("by %s:\n", key)
	fmt.Printf("  %-10s %8s %14s %14s %16s\n", "group", "count", "mean", "stddev", "sum")
	for _, g := range groups {
		fmt.Printf("  %-10s %8d %14.2f %14.2f %16.2f\n", g.Key, g.Count, g.Mean, g.StdDev, g.Sum)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
