package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	vtc "github.com/jamesainslie/go-vtc"
	"github.com/jamesainslie/go-vtc/annotation"
	"github.com/jamesainslie/go-vtc/internal/corpus"
	"github.com/jamesainslie/go-vtc/internal/report"
	"github.com/jamesainslie/go-vtc/rttm"
	"github.com/jamesainslie/go-vtc/taxonomy"
)

// Set by -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	Database    string
	Protocol    string
	Subset      string
	ApplyFolder string
	Classes     string
	Taxonomy    string
	Mapping     string
	ReportPath  string
	Workers     int
	Verbose     bool
	NoProgress  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "vtc-score",
		Short: "Score voice type classifier output against a protocol",
		Long: `vtc-score reads hypothesis RTTM files from --apply-folder, scores them
against the reference of a protocol subset with a detection F-measure per
class, prints the table and writes it as CSV to --report-path.

Every flag can also be set with a VTC_ environment variable
(VTC_APPLY_FOLDER, ...) or a config file given with --config.`,
		Version:      fmt.Sprintf("%s (%s, %s)", version, commit, date),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindConfig(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := options{
				Database:    v.GetString("database"),
				Protocol:    v.GetString("protocol"),
				Subset:      v.GetString("subset"),
				ApplyFolder: v.GetString("apply-folder"),
				Classes:     v.GetString("classes"),
				Taxonomy:    v.GetString("taxonomy"),
				Mapping:     v.GetString("mapping"),
				ReportPath:  v.GetString("report-path"),
				Workers:     v.GetInt("workers"),
				Verbose:     v.GetBool("verbose"),
				NoProgress:  v.GetBool("no-progress"),
			}
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.String("config", "", "Config file (yaml, json or toml)")
	f.String("database", "", "Protocol database YAML file (required)")
	f.String("protocol", "X.SpeakerDiarization.BBT2", "Protocol name")
	f.String("subset", "test", "Protocol subset: train, development or test")
	f.String("apply-folder", "", "Directory of hypothesis RTTM files (required)")
	f.String("classes", "babytrain", "Class profile name")
	f.String("taxonomy", "", "YAML file with additional class profiles")
	f.String("mapping", "", "YAML label mapping applied to references")
	f.String("report-path", "", "CSV report output path (required)")
	f.Int("workers", 0, "Files scored in parallel (0 = number of CPUs)")
	f.BoolP("verbose", "v", false, "Debug logging")
	f.Bool("no-progress", false, "Disable the progress bar")

	return cmd
}

// bindConfig makes flags, VTC_* environment variables and the optional
// config file visible through v, in that order of precedence.
func bindConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix("VTC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func (o options) validate() error {
	var errs []error
	if o.Database == "" {
		errs = append(errs, errors.New("--database is required"))
	}
	if o.ApplyFolder == "" {
		errs = append(errs, errors.New("--apply-folder is required"))
	}
	if o.ReportPath == "" {
		errs = append(errs, errors.New("--report-path is required"))
	}
	if o.Workers < 0 {
		errs = append(errs, errors.New("--workers must not be negative"))
	}
	return errors.Join(errs...)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, opts options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	logger := newLogger(opts.Verbose)

	profile, err := loadProfile(opts.Classes, opts.Taxonomy)
	if err != nil {
		return err
	}

	evalOpts := []vtc.Option{vtc.WithLogger(logger)}
	if opts.Workers > 0 {
		evalOpts = append(evalOpts, vtc.WithWorkers(opts.Workers))
	}
	if opts.Mapping != "" {
		m, err := taxonomy.LoadMapping(opts.Mapping)
		if err != nil {
			return err
		}
		evalOpts = append(evalOpts, vtc.WithMapping(m))
	}

	db, err := corpus.LoadDatabase(opts.Database)
	if err != nil {
		return err
	}
	files, err := db.Load(opts.Protocol, opts.Subset, logger)
	if err != nil {
		return err
	}

	hyps, err := loadHypotheses(opts.ApplyFolder, logger)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if !opts.NoProgress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("scoring"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		evalOpts = append(evalOpts, vtc.WithProgress(func(uri string) {
			if err := bar.Add(1); err != nil {
				logger.Debug("progress bar update failed", "uri", uri, "err", err)
			}
		}))
	}

	ev, err := vtc.New(profile, evalOpts...)
	if err != nil {
		return err
	}

	r, err := ev.Evaluate(ctx, files, hyps)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s / %s / %s\n\n", opts.Protocol, opts.Subset, profile.Name)
	if err := report.Render(os.Stdout, r); err != nil {
		return err
	}
	if err := report.Save(opts.ReportPath, r); err != nil {
		return err
	}
	logger.Info("report written", "path", opts.ReportPath)
	return nil
}

func loadProfile(name, extraPath string) (*taxonomy.Profile, error) {
	var extra map[string]*taxonomy.Profile
	if extraPath != "" {
		var err error
		extra, err = taxonomy.LoadProfiles(extraPath)
		if err != nil {
			return nil, err
		}
	}
	return taxonomy.Lookup(name, extra)
}

func loadHypotheses(dir string, logger *slog.Logger) (map[string]*annotation.Annotation, error) {
	hyps, warnings, err := rttm.LoadDir(dir)
	for _, w := range warnings {
		logger.Warn("dropping malformed record", "err", w)
	}
	if err != nil {
		return nil, fmt.Errorf("load hypotheses: %w", err)
	}
	logger.Debug("loaded hypotheses", "path", dir, "files", len(hyps))
	return hyps, nil
}
