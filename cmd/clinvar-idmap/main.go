// Package main provides the clinvar-idmap command-line tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Configuration keys.
const (
	keySample       = "sample"
	keyClinVar      = "clinvar"
	keyOut          = "out"
	keyAmbiguousOut = "ambiguous-out"
	keyAssembly     = "assembly"
	keyMaxIDs       = "max-ids"
)

// Configuration defaults.
const (
	defaultSample       = "data/esm2_selected_features.srl"
	defaultClinVar      = "data/clinvar/variant_summary.txt.gz"
	defaultOut          = "data/processed/pickle_id_to_chrposrefalt.tsv"
	defaultAmbiguousOut = "data/processed/pickle_id_to_chrposrefalt_ambiguous.tsv"
	defaultAssembly     = "GRCh38"
	defaultMaxIDs       = 50000
)

var logger = zap.NewNop()

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "clinvar-idmap",
		Short: "Map sample record IDs to ClinVar genomic coordinates",
		Long: `clinvar-idmap maps numeric record identifiers from a sample corpus to
canonical chr_pos_ref_alt coordinates by streaming the ClinVar
variant_summary.txt.gz reference corpus in a single pass. Identifiers that
resolve to exactly one coordinate go to the unique mapping table;
identifiers with multiple distinct coordinates go to the ambiguous table.`,
		Example: `  # Map IDs using GRCh38 coordinates (one pass over ClinVar)
  clinvar-idmap map --sample features.srl --clinvar variant_summary.txt.gz

  # Full coverage: read every ID in the sample corpus
  clinvar-idmap map --max-ids 100000000 --sample features.srl --clinvar variant_summary.txt.gz

  # Summarize the sample corpus structure
  clinvar-idmap inspect schema features.srl`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			logger = newLogger(verbose)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newMapCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.clinvar-idmap.yaml if present and sets defaults.
func initConfig() error {
	viper.SetDefault(keySample, defaultSample)
	viper.SetDefault(keyClinVar, defaultClinVar)
	viper.SetDefault(keyOut, defaultOut)
	viper.SetDefault(keyAmbiguousOut, defaultAmbiguousOut)
	viper.SetDefault(keyAssembly, defaultAssembly)
	viper.SetDefault(keyMaxIDs, defaultMaxIDs)

	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory: run on defaults alone.
		return nil
	}

	viper.SetConfigFile(filepath.Join(home, ".clinvar-idmap.yaml"))
	if err := viper.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// newLogger builds a console logger writing to stderr. Counts and reports
// still go to stdout; the logger carries progress and warnings.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
