package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"studentprep/preprocess"
)

const (
	defaultSource     = "https://drive.google.com/uc?id=1mEOFj5EuMjcWTmieXEooFSUIe2mGyEta"
	defaultOutputDir  = "preprocessing"
	defaultOutputName = "dataset_mesin_membangun_sistem_machine_learning_preprocessing.csv"

	envPrefix = "STUDENTPREP"
)

// errEmptyResult means preprocessing produced no table, so nothing was written.
var errEmptyResult = errors.New("preprocessing produced an empty table; no output written")

type config struct {
	Source     string
	OutputDir  string
	OutputName string
	LogLevel   string
	LogFormat  string
}

func (c config) outputPath() string {
	return filepath.Join(c.OutputDir, c.OutputName)
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "studentprep",
		Short:         "Clean the student performance dataset for model training",
		Long:          `studentprep downloads the student performance CSV, drops identifier columns, imputes missing values, encodes categorical columns and writes the cleaned table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(stdout, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.String("source", defaultSource, "CSV source: local path or http(s) URL")
	flags.String("output-dir", defaultOutputDir, "Directory for the cleaned CSV")
	flags.String("output-name", defaultOutputName, "File name of the cleaned CSV")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console or json)")
	flags.String("config", "", "Optional config file (yaml, json or toml)")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("bind flags: %v", err))
	}

	return cmd
}

func loadConfig(v *viper.Viper) (config, error) {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	}
	cfg := config{
		Source:     v.GetString("source"),
		OutputDir:  v.GetString("output-dir"),
		OutputName: v.GetString("output-name"),
		LogLevel:   v.GetString("log-level"),
		LogFormat:  v.GetString("log-format"),
	}
	if cfg.Source == "" {
		return config{}, errors.New("source must not be empty")
	}
	if cfg.OutputName == "" {
		return config{}, errors.New("output-name must not be empty")
	}
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	switch format {
	case "json":
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// run creates the output directory, preprocesses the source and writes the
// result if it is non-empty.
func run(ctx context.Context, cfg config, log zerolog.Logger) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	log.Info().Msg("starting student performance preprocessing")

	p := preprocess.New(preprocess.WithLogger(log))
	table := p.Preprocess(ctx, cfg.Source)

	if table.IsEmpty() {
		log.Warn().Str("source", cfg.Source).Msg("nothing written: preprocessing returned an empty table")
		return errEmptyResult
	}

	path := cfg.outputPath()
	if err := table.WriteFile(path); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("path", path).Int("rows", table.Rows()).Msg("cleaned dataset saved")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errEmptyResult) {
			fmt.Fprintf(os.Stderr, "Preprocessing failed: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
