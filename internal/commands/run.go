package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/checkvolume/internal/config"
	"github.com/cleared-dev/checkvolume/internal/model"
	"github.com/cleared-dev/checkvolume/internal/ocr"
	"github.com/cleared-dev/checkvolume/internal/pipeline"
	"github.com/cleared-dev/checkvolume/internal/tier"
)

// configEnv names the variable holding the rule document path.
const configEnv = "CHECKVOLUME_CONFIG"

// defaultConfigs are tried in order when neither --config nor the
// environment names a document.
var defaultConfigs = []string{"rule.json", ruleFile}

func newRunCommand(engine ocr.Engine) *cobra.Command {
	var (
		configPath string
		problem    string
		mode       string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "OCR every check image and write the tier files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd, verbose)

			settings, err := loadSettings(logger, configPath, problem, mode)
			if err != nil {
				return err
			}
			for _, issue := range tier.Validate(settings.Ranges()) {
				logger.Warn("transaction range issue", "kind", issue.Kind, "tier", issue.Tier, "detail", issue.Description)
			}

			d := pipeline.New(settings, engine, logger)
			stats, err := d.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d of %d files (%d skipped, %d failed, %d dropped)\n",
				stats.ProcessedFiles, stats.TotalFiles, stats.SkippedFiles, stats.FailedFiles, stats.DroppedRecords)
			for _, t := range model.Tiers {
				fmt.Fprintf(out, "  %-18s %d rows\n", t.FileName(), stats.Rows[t])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "rule document (default $"+configEnv+", then rule.json or rule.yaml)")
	cmd.Flags().StringVar(&problem, "problem", "", "problem key in inputPath/outputPath")
	cmd.Flags().StringVar(&mode, "mode", "", "batch or incremental (overrides the document)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log extracted fields for every check")

	return cmd
}

// loadSettings finds, loads and resolves the rule document. mode, when
// set, overrides the document's mode.
func loadSettings(logger *log.Logger, configPath, problem, mode string) (config.Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("could not load .env file", "err", err)
	}

	path, err := resolveConfigPath(configPath)
	if err != nil {
		return config.Settings{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Settings{}, err
	}
	if mode != "" {
		cfg.Mode = mode
	}

	settings, err := cfg.Resolve(problem)
	if err != nil {
		return config.Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

func newLogger(cmd *cobra.Command, verbose bool) *log.Logger {
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix:          "checkvolume",
		ReportTimestamp: true,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func resolveConfigPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv(configEnv); env != "" {
		return env, nil
	}
	for _, name := range defaultConfigs {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no rule document: pass --config, set %s, or create %s", configEnv, defaultConfigs[0])
}
