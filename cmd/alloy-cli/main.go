package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Enwin-A/Alloy-App/alloy"
	"github.com/Enwin-A/Alloy-App/gp"
	"github.com/Enwin-A/Alloy-App/internal/modelstore"
)

type cliOptions struct {
	configPath string
	target     string
	value      float64
	tolerance  float64
	count      int
	outputPath string
	outputDir  string
	stdout     bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("alloy-cli: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("alloy-cli: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&opts.target, "target", "YS", "Target property: YS or UTS")
	flag.Float64Var(&opts.value, "value", 0, "Target property value in MPa")
	flag.Float64Var(&opts.tolerance, "tolerance", 0, "Tolerance as a fraction of the target value (default from config)")
	flag.IntVar(&opts.count, "n", 0, "Number of suggestions (default from config)")
	flag.StringVar(&opts.outputPath, "output", "", "CSV file to write suggestions (default uses --output-dir/suggest_*.csv)")
	flag.StringVar(&opts.outputDir, "output-dir", "csv", "Directory where result CSVs are written when --output is omitted")
	flag.BoolVar(&opts.stdout, "stdout", false, "Print a candidate summary to STDOUT")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --target YS --value MPA [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.target = strings.TrimSpace(opts.target)
	opts.outputPath = strings.TrimSpace(opts.outputPath)
	opts.outputDir = strings.TrimSpace(opts.outputDir)

	if _, ok := alloy.TargetColumn(opts.target); !ok {
		flag.Usage()
		return opts, fmt.Errorf("unknown target %q (want YS or UTS)", opts.target)
	}
	if opts.value <= 0 {
		flag.Usage()
		return opts, errors.New("missing required --value (must be > 0)")
	}
	return opts, nil
}

func run(opts cliOptions) error {
	cfg, err := alloy.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.tolerance <= 0 {
		opts.tolerance = cfg.Search.Tolerance
	}
	if opts.count <= 0 {
		opts.count = cfg.Search.NSuggestions
	}

	ctx := context.Background()
	if err := modelstore.EnsureModel(ctx, cfg.Model.ModelURL, cfg.Model.ModelPath); err != nil {
		return fmt.Errorf("ensure model: %w", err)
	}
	regressor, err := gp.NewRegressor(gp.Config{
		OrtDLL:     cfg.Model.OrtDLL,
		ModelPath:  cfg.Model.ModelPath,
		ScalerPath: cfg.Model.ScalerPath,
		InputName:  cfg.Model.InputName,
		OutputName: cfg.Model.OutputName,
	})
	if err != nil {
		return fmt.Errorf("init regressor: %w", err)
	}
	defer regressor.Close()

	bundle, err := alloy.NewBundle(regressor, alloy.DefaultSchema())
	if err != nil {
		return err
	}

	var dataset alloy.Dataset
	if path, ok := alloy.FindDataset(cfg.Data.Paths, opts.target); ok {
		ds, err := alloy.LoadCSVDataset(path)
		if err != nil {
			fmt.Printf("historical dataset unreadable (%s): %v\n", path, err)
		} else {
			dataset = ds
			fmt.Printf("using historical dataset %s\n", path)
		}
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)
	suggester, err := alloy.NewSuggester(bundle, dataset, logger)
	if err != nil {
		return fmt.Errorf("init suggester: %w", err)
	}

	result, err := suggester.Suggest(ctx, alloy.SuggestRequest{
		Target:       opts.target,
		Value:        opts.value,
		NSuggestions: opts.count,
		Tolerance:    opts.tolerance,
	})
	if err != nil {
		return fmt.Errorf("suggest: %w", err)
	}

	outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir)
	if err != nil {
		return err
	}
	if err := writeResultCSV(outputPath, result); err != nil {
		return err
	}
	fmt.Printf("wrote %d suggestions to %s\n", len(result.Candidates), outputPath)

	if opts.stdout {
		printSummary(opts, result)
	}
	return nil
}

func resolveOutputPath(path, dir string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "csv"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := fmt.Sprintf("suggest_%s.csv", time.Now().Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}

func writeResultCSV(path string, result *alloy.SearchResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	header := []string{"rank", "source", "predicted_value", "actual_value", "error_pct", "is_valid", "alloy_series"}
	header = append(header, alloy.CompositionElements...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, cand := range result.Candidates {
		actual := ""
		if cand.ActualValue != nil {
			actual = strconv.FormatFloat(*cand.ActualValue, 'f', 2, 64)
		}
		row := []string{
			strconv.Itoa(i + 1),
			cand.Source,
			strconv.FormatFloat(cand.PredictedValue, 'f', 2, 64),
			actual,
			strconv.FormatFloat(cand.ErrorPct, 'f', 2, 64),
			strconv.FormatBool(cand.IsValid),
			strings.Join(cand.AlloySeries, "; "),
		}
		for _, elem := range alloy.CompositionElements {
			row = append(row, strconv.FormatFloat(cand.Composition[elem], 'f', 3, 64))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush result: %w", err)
	}
	return nil
}

func printSummary(opts cliOptions, result *alloy.SearchResult) {
	fmt.Println()
	fmt.Printf("==== suggestions for %s = %.1f MPa (±%.0f%%) ====\n",
		opts.target, opts.value, opts.tolerance*100)
	for _, report := range result.Reports {
		if report.Skipped {
			fmt.Printf("  strategy %-12s skipped: %s\n", report.Source, report.Reason)
		} else {
			fmt.Printf("  strategy %-12s produced %d candidates\n", report.Source, report.Candidates)
		}
	}
	if result.ModelStats != nil {
		fmt.Printf("  scan predictions: min=%.1f max=%.1f mean=%.1f in_range=%v\n",
			result.ModelStats.PredMin, result.ModelStats.PredMax,
			result.ModelStats.PredMean, result.ModelStats.InRange)
	}
	if len(result.Candidates) == 0 {
		fmt.Println("  no candidates found")
		return
	}
	for i, cand := range result.Candidates {
		fmt.Printf("%d. %s predicted=%.1f err=%.1f%% valid=%v series=%s\n",
			i+1, cand.Source, cand.PredictedValue, cand.ErrorPct, cand.IsValid,
			strings.Join(cand.AlloySeries, ", "))
		if len(cand.Violations) > 0 {
			for _, v := range cand.Violations {
				fmt.Printf("    ! %s\n", v)
			}
		}
	}
}
