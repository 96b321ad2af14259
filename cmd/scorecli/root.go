package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"scorecli/internal/config"
	"scorecli/internal/dataprocessing"
	"scorecli/internal/infrastructure"
	"scorecli/internal/presenter"
	"scorecli/internal/services"
	"scorecli/internal/store"
	"scorecli/pkg/contracts"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configFile string
	baseDir    string
	logLevel   string
	noStore    bool
	noColor    bool
	threshold  float64
	strict     bool
	cleaning   string
	subjects   []string
	sheet      string
}

// cli holds the collaborators built for one command invocation
type cli struct {
	flags  globalFlags
	out    io.Writer
	errOut io.Writer

	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	store     *store.Store
	service   *services.AnalysisService
	presenter *presenter.TablePresenter
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "scorecli",
		Short: "Student score analytics",
		Long: `scorecli computes pass/fail status, semester averages, top students,
the weakest subject and improvement trends over student score files.

Sources are .xlsx, .xlsm or .csv files with Student and Semester columns
followed by one numeric column per subject. Relative sources are looked up
in the data directory when they do not exist in the working directory.

Configuration comes from config.yaml, a .env file and SCORES_* environment
variables; flags override all of them.`,
		Example: `  # Print every analysis table
  scorecli report data/semester1.xlsx data/semester2.xlsx

  # Write the semester averages table as a workbook
  scorecli export --format xlsx scores.csv

  # Fill missing cells with the column mean and save the cleaned data
  scorecli clean --strategy mean --out cleaned.csv scores.csv

  # List stored analysis runs
  scorecli runs`,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SuggestionsMinimumDistance = 2

	f := root.PersistentFlags()
	f.StringVar(&c.flags.configFile, "config", "", "YAML config file (default: config.yaml or configs/config.yaml)")
	f.StringVar(&c.flags.baseDir, "base-dir", "", "base directory holding data/, reports/ and logs/ (default: executable directory)")
	f.StringVar(&c.flags.logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")
	f.BoolVar(&c.flags.noStore, "no-store", false, "disable the SQLite run store")
	f.BoolVar(&c.flags.noColor, "no-color", false, "disable colored output")
	f.Float64Var(&c.flags.threshold, "threshold", 0, "lowest passing score (default from config)")
	f.BoolVar(&c.flags.strict, "strict", false, "require strictly increasing semester averages for improvement")
	f.StringVar(&c.flags.cleaning, "cleaning", "", "cleaning strategy applied before analysis: none, dropna or mean")
	f.StringSliceVar(&c.flags.subjects, "subjects", nil, "fixed subject columns to analyze (default: every numeric column)")
	f.StringVar(&c.flags.sheet, "sheet", "", "worksheet to read from workbooks (default: first sheet)")

	root.AddCommand(
		newReportCmd(c),
		newExportCmd(c),
		newCleanCmd(c),
		newRunsCmd(c),
		newSourcesCmd(c),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the service
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("base-dir") {
		cfg.Paths.BaseDir = c.flags.baseDir
	}
	if flags.Changed("threshold") {
		cfg.Analysis.PassThreshold = c.flags.threshold
	}
	if flags.Changed("strict") {
		cfg.Analysis.StrictImprovement = c.flags.strict
	}
	if flags.Changed("cleaning") {
		cfg.Analysis.Cleaning = c.flags.cleaning
	}
	if flags.Changed("subjects") {
		cfg.Analysis.Subjects = c.flags.subjects
	}
	if flags.Changed("sheet") {
		cfg.Analysis.Sheet = c.flags.sheet
	}
	if c.flags.noStore {
		cfg.Storage.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	c.logger = infrastructure.NewLogger(c.flags.logLevel, c.errOut)

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}
	c.paths = paths

	if cfg.Storage.Enabled {
		st, err := store.Open(paths.DatabaseFile)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		c.store = st
	}
	c.service = c.newService(cfg.Analysis)

	c.presenter = presenter.NewTablePresenter(c.out, cfg.Analysis.Precision, c.useColor(), c.logger)
	return nil
}

func (c *cli) newService(cfg config.AnalysisConfig) *services.AnalysisService {
	var opts []services.AnalysisOption
	if c.store != nil {
		opts = append(opts, services.WithStore(c.store))
	}
	return services.NewAnalysisService(cfg, c.paths, c.logger, opts...)
}

func (c *cli) loadConfig() (*config.Config, error) {
	if c.flags.configFile != "" {
		return config.LoadFrom(c.flags.configFile)
	}
	return config.Load()
}

func (c *cli) useColor() bool {
	if c.flags.noColor || color.NoColor {
		return false
	}
	f, ok := c.out.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

// load parses the given sources. Without arguments the configured sources
// are used, and without those every score file in the data directory.
func (c *cli) load(ctx context.Context, sources []string) error {
	return c.service.Load(ctx, sources...)
}

// run wraps a subcommand so the store is closed even when it fails
func (c *cli) run(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := c.close(); err == nil {
				err = cerr
			}
		}()
		cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
		return fn(cmd, args)
	}
}

func (c *cli) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

func cleaningStrategies() []string {
	return []string{dataprocessing.StrategyNone, dataprocessing.StrategyDropNA, dataprocessing.StrategyMean}
}
