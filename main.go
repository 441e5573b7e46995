package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thatisuday/commando"
	"go.uber.org/zap"

	"github.com/shravanasati/tck/internal"
	"github.com/shravanasati/tck/internal/bench"
	"github.com/shravanasati/tck/internal/cases"
	"github.com/shravanasati/tck/internal/config"
	"github.com/shravanasati/tck/internal/sampler"
)

const (
	// NAME is the executable name.
	NAME = "tck"
	// VERSION is the executable version.
	VERSION = "v0.1.0"
)

// runOptions are the parsed root command flags.
type runOptions struct {
	configPath   string
	trials       int
	minSuccesses int
	settle       time.Duration
	precision    int
	exports      []string
	plots        []string
	reportDir    string
	historyPath  string
	noHistory    bool
	metricsFile  string
	unit         time.Duration
	gpu          bool
	verbose      bool
}

// splitNames accepts case names separated by commas or whitespace.
func splitNames(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func setColor(flags map[string]commando.FlagValue) {
	color, e := flags["color"].GetBool()
	if e != nil {
		internal.Log("red", "Application error: cannot parse flag values.")
	}
	internal.NO_COLOR = !color
}

func parseRunOptions(flags map[string]commando.FlagValue) (runOptions, error) {
	var (
		opts runOptions
		errs []error
	)
	get := func(name string, dst any) {
		var err error
		switch d := dst.(type) {
		case *int:
			*d, err = flags[name].GetInt()
		case *bool:
			*d, err = flags[name].GetBool()
		case *string:
			*d, err = flags[name].GetString()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", name, err))
		}
	}

	var settle, exports, plots, unit string
	get("config", &opts.configPath)
	get("trials", &opts.trials)
	get("min-successes", &opts.minSuccesses)
	get("settle", &settle)
	get("precision", &opts.precision)
	get("export", &exports)
	get("plot", &plots)
	get("report-dir", &opts.reportDir)
	get("history", &opts.historyPath)
	get("skip-history", &opts.noHistory)
	get("metrics-file", &opts.metricsFile)
	get("unit", &unit)
	get("gpu", &opts.gpu)
	get("verbose", &opts.verbose)
	if len(errs) > 0 {
		return opts, errors.Join(errs...)
	}

	var err error
	if settle != "" {
		if opts.settle, err = time.ParseDuration(settle); err != nil {
			return opts, fmt.Errorf("--settle: %w", err)
		}
	}
	if opts.exports, err = internal.VerifyExportFormats(exports); err != nil {
		return opts, err
	}
	if opts.plots, err = internal.VerifyPlotFormats(plots); err != nil {
		return opts, err
	}
	if opts.unit, err = internal.ParseTimeUnit(unit); err != nil {
		return opts, fmt.Errorf("--unit %q: %w", unit, err)
	}
	return opts, nil
}

// registry holds the builtin cases plus those of the case file, if any.
func registry(opts runOptions, logger *zap.Logger) (*bench.Registry, config.Defaults, error) {
	cache := config.NewCache(0)
	reg := bench.NewRegistry()
	if err := cases.Register(reg, cache); err != nil {
		return nil, config.Defaults{}, err
	}
	defaults := config.BuiltinDefaults()
	if opts.configPath != "" {
		var err error
		defaults, err = config.NewLoader(cache, logger).Register(opts.configPath, reg)
		if err != nil {
			return nil, defaults, err
		}
	}

	// non-zero flags win over the case file
	if opts.trials > 0 {
		defaults.Trials = opts.trials
	}
	if opts.minSuccesses > 0 {
		defaults.MinSuccesses = opts.minSuccesses
	}
	if opts.settle > 0 {
		defaults.Settle = opts.settle
	}
	if opts.precision > 0 {
		defaults.Precision = opts.precision
	}
	return reg, defaults, nil
}

func openHistory(opts runOptions) (*internal.History, error) {
	if opts.noHistory {
		return nil, nil
	}
	path := opts.historyPath
	if path == "" {
		dir, err := internal.DataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "history")
	}
	return internal.OpenHistory(path)
}

func runCases(names []string, opts runOptions) error {
	logger := internal.NewLogger(opts.verbose)
	defer logger.Sync()

	reg, defaults, err := registry(opts, logger)
	if err != nil {
		return err
	}

	var selected []bench.Case
	if len(names) == 0 || (len(names) == 1 && strings.EqualFold(names[0], "all")) {
		selected = reg.Cases()
	} else {
		for _, name := range names {
			c, err := reg.Get(name)
			if err != nil {
				return fmt.Errorf("%w (run `%s list` to see every case)", err, NAME)
			}
			selected = append(selected, c)
		}
	}

	history, err := openHistory(opts)
	if err != nil {
		internal.Log("yellow", "History is unavailable: "+err.Error())
	}
	if history != nil {
		defer history.Close()
	}

	metrics := internal.NewMetrics()
	observers := internal.MultiObserver{metrics}
	if !opts.verbose {
		observers = append(observers, internal.NewProgressObserver())
	}

	runner := bench.NewRunner(sampler.New(sampler.WithLogger(logger), sampler.WithGPU(opts.gpu)), logger)
	runner.Settle = defaults.Settle
	orch := bench.NewOrchestrator(runner, logger)
	orch.Options = defaults.AggregateOptions()
	orch.Comparer.Precision = defaults.Precision
	orch.Observer = observers

	var (
		failed  []error
		reports []*internal.Report
	)
	for _, c := range selected {
		logger.Debug("running case", zap.String("case", c.Name), zap.Int("trials", orch.Options.Trials))
		res, err := orch.RunCase(c)
		if err != nil {
			internal.Log("red", fmt.Sprintf("%s failed: %v", c.Name, err))
			failed = append(failed, fmt.Errorf("%s: %w", c.Name, err))
			continue
		}

		report := internal.NewReport(res)
		reports = append(reports, report)
		var prev *internal.Report
		if history != nil {
			if prev, err = history.Previous(report); err != nil {
				logger.Warn("reading history", zap.Error(err))
			}
			if err := history.Record(report); err != nil {
				logger.Warn("recording history", zap.Error(err))
			}
		}
		internal.Consolify(os.Stdout, report, prev, opts.unit)

		written, err := report.Export(opts.exports, opts.reportDir, opts.unit)
		if err != nil {
			internal.Log("red", "Export failed: "+err.Error())
		}
		plotted, err := internal.Plot(opts.plots, report, opts.reportDir, opts.unit)
		if err != nil {
			internal.Log("red", "Plotting failed: "+err.Error())
		}
		for _, path := range append(written, plotted...) {
			internal.Log("green", "Wrote "+path)
		}

		noisy := false
		for _, v := range report.Versions {
			noisy = noisy || v.Noisy
		}
		if noisy {
			internal.Log("yellow", "\nWarning: Statistical outliers were detected. Consider re-running this case on a quiet system, devoid of any interferences from other programs.")
			if defaults.Trials < 5 {
				internal.Log("yellow", "It might help to use more --trials.")
			}
		}
	}

	if len(reports) > 0 {
		fmt.Println()
		fmt.Print(internal.Leaderboard(reports, opts.unit))
	}

	if opts.metricsFile != "" {
		if err := metrics.WriteFile(opts.metricsFile); err != nil {
			internal.Log("red", "Writing metrics failed: "+err.Error())
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

func listCases(configPath string) error {
	reg, _, err := registry(runOptions{configPath: configPath}, zap.NewNop())
	if err != nil {
		return err
	}
	for _, c := range reg.Cases() {
		variants := make([]string, len(c.Variants))
		for i, v := range c.Variants {
			variants[i] = v.Name
		}
		internal.Log("cyan", c.Name)
		if c.Description != "" {
			internal.Log("white", "  "+c.Description)
		}
		internal.Log("white", "  variants: "+strings.Join(variants, ", "))
	}
	return nil
}

func showHistory(caseName string, limit int, historyPath string, unit time.Duration) error {
	history, err := openHistory(runOptions{historyPath: historyPath})
	if err != nil {
		return err
	}
	defer history.Close()

	reports, err := history.List(caseName, limit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		internal.Log("yellow", "No recorded runs for "+caseName)
		return nil
	}
	internal.Log("cyan", strings.ToUpper(caseName))
	fmt.Println(internal.HistoryTable(reports, unit))
	return nil
}

func main() {
	// * basic configuration
	commando.
		SetExecutableName(NAME).
		SetVersion(VERSION).
		SetDescription("tck benchmarks alternative implementations of the same function against a baseline,\nchecks they agree, and scores them on speed, resources and code quality.")

	// * root command
	commando.
		Register(nil).
		SetShortDescription("Run benchmark cases.").
		SetDescription("Run the named benchmark cases, or every registered case.").
		AddArgument("cases...", "Case names to run, comma or space separated.", "all").
		AddFlag("config,c", "A YAML case file declaring extra command cases.", commando.String, "").
		AddFlag("trials,t", "The number of trials per candidate.", commando.Int, 0).
		AddFlag("min-successes,m", "Stop once this many trials succeeded.", commando.Int, 0).
		AddFlag("settle", "Pause before each trial, like 100ms.", commando.String, "").
		AddFlag("precision,p", "Decimal places used when comparing results.", commando.Int, 0).
		AddFlag("export,e", "Comma separated list of report export formats, including json, text, csv and markdown.", commando.String, internal.DefaultExport).
		AddFlag("plot", "Comma separated list of plots, including hist, box, bar and score.", commando.String, "none").
		AddFlag("report-dir,o", "Directory for exports and plots.", commando.String, ".").
		AddFlag("history", "Path of the run history database.", commando.String, "").
		AddFlag("skip-history", "Do not read or record run history.", commando.Bool, false).
		AddFlag("metrics-file", "Write Prometheus metrics to this file.", commando.String, "").
		AddFlag("unit,u", "Time unit for summaries, one of ns, us, ms, s, m and h.", commando.String, "ms").
		AddFlag("gpu", "Sample GPU usage through nvidia-smi.", commando.Bool, false).
		AddFlag("verbose,V", "Enable verbose output.", commando.Bool, false).
		AddFlag("no-color", "Disable colored output.", commando.Bool, false).
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			setColor(flags)
			internal.Log("white", fmt.Sprintf("%v %v\n", NAME, VERSION))

			opts, err := parseRunOptions(flags)
			if err != nil {
				internal.Log("red", err.Error())
				os.Exit(2)
			}
			if err := runCases(splitNames(args["cases"].Value), opts); err != nil {
				os.Exit(1)
			}
		})

	// * list command
	commando.
		Register("list").
		SetShortDescription("List the registered cases.").
		AddFlag("config,c", "A YAML case file declaring extra command cases.", commando.String, "").
		AddFlag("no-color", "Disable colored output.", commando.Bool, false).
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			setColor(flags)
			configPath, _ := flags["config"].GetString()
			if err := listCases(configPath); err != nil {
				internal.Log("red", err.Error())
				os.Exit(1)
			}
		})

	// * history command
	commando.
		Register("history").
		SetShortDescription("Show past runs of a case.").
		AddArgument("case", "The case name.", "").
		AddFlag("limit,l", "The number of runs to show, zero for all.", commando.Int, 10).
		AddFlag("history", "Path of the run history database.", commando.String, "").
		AddFlag("unit,u", "Time unit, one of ns, us, ms, s, m and h.", commando.String, "ms").
		AddFlag("no-color", "Disable colored output.", commando.Bool, false).
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			setColor(flags)
			limit, e := flags["limit"].GetInt()
			if e != nil {
				internal.Log("red", "The limit must be an integer!")
				return
			}
			historyPath, _ := flags["history"].GetString()
			unitName, _ := flags["unit"].GetString()
			unit, err := internal.ParseTimeUnit(unitName)
			if err != nil {
				internal.Log("red", err.Error())
				os.Exit(2)
			}
			if err := showHistory(args["case"].Value, limit, historyPath, unit); err != nil {
				internal.Log("red", err.Error())
				os.Exit(1)
			}
		})

	commando.Parse(nil)
}
