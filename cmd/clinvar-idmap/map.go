package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/clinvar-idmap/internal/clinvar"
	"github.com/inodb/clinvar-idmap/internal/record"
	"github.com/inodb/clinvar-idmap/internal/resolve"
)

func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Resolve sample record IDs to chr_pos_ref_alt coordinates",
		Long: `Reads unique integer IDs from the sample corpus (up to --max-ids), then
streams the ClinVar variant_summary.txt.gz reference corpus once, keeping
single-nucleotide rows for wanted IDs on the selected assembly. IDs with
exactly one surviving coordinate are written to the unique mapping table,
IDs with several to the ambiguous table.`,
		Example: `  clinvar-idmap map --sample features.srl --clinvar variant_summary.txt.gz
  clinvar-idmap map --assembly GRCh37 --out grch37.tsv --ambiguous-out grch37_ambiguous.tsv
  clinvar-idmap map --assembly '' --max-ids 100000000   # no assembly filter, full coverage`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap()
		},
	}

	fs := cmd.Flags()
	fs.String(keySample, defaultSample, "Path to the sample record stream")
	fs.String(keyClinVar, defaultClinVar, "Path to ClinVar variant_summary.txt.gz")
	fs.String(keyOut, defaultOut, "Output TSV path for unique mappings")
	fs.String(keyAmbiguousOut, defaultAmbiguousOut, "Output TSV path for IDs with >1 possible mapping")
	fs.String(keyAssembly, defaultAssembly, "ClinVar Assembly to keep (GRCh38 or GRCh37). Use '' to disable filtering")
	fs.Int(keyMaxIDs, defaultMaxIDs, "Max IDs to read from the sample corpus (increase for full coverage)")

	for _, key := range []string{keySample, keyClinVar, keyOut, keyAmbiguousOut, keyAssembly, keyMaxIDs} {
		_ = viper.BindPFlag(key, fs.Lookup(key))
	}

	return cmd
}

func runMap() error {
	samplePath := viper.GetString(keySample)
	clinvarPath := viper.GetString(keyClinVar)
	outPath := viper.GetString(keyOut)
	ambiguousPath := viper.GetString(keyAmbiguousOut)
	assembly := viper.GetString(keyAssembly)
	maxIDs := viper.GetInt(keyMaxIDs)

	ids, err := record.CollectIDs(samplePath, record.DefaultIDField, maxIDs)
	if err != nil {
		return fmt.Errorf("collect IDs: %w", err)
	}
	fmt.Printf("Collected %d unique IDs from %s\n", ids.Len(), samplePath)

	scanner, err := clinvar.NewScanner(clinvarPath)
	if err != nil {
		return err
	}
	defer scanner.Close()
	scanner.SetLogger(logger)

	logger.Info("scanning reference corpus",
		zap.String("path", clinvarPath),
		zap.String("assembly", assembly),
		zap.Int("wanted_ids", ids.Len()))

	candidates, stats, err := scanner.Scan(ids, assembly)
	if err != nil {
		return fmt.Errorf("scan reference corpus: %w", err)
	}

	report, err := writeTables(candidates, outPath, ambiguousPath)
	if err != nil {
		return err
	}

	fmt.Printf("ClinVar rows scanned: %d\n", stats.RowsScanned)
	fmt.Printf("ClinVar rows kept after filters: %d\n", stats.RowsKept)
	fmt.Printf("Unique mappings written: %d -> %s\n", report.UniqueWritten, outPath)
	fmt.Printf("Ambiguous rows written: %d -> %s\n", report.AmbiguousWritten, ambiguousPath)

	return nil
}

// writeTables creates both output files (and their parent directories) and
// emits the partitioned mapping tables.
func writeTables(candidates resolve.Candidates, outPath, ambiguousPath string) (resolve.Report, error) {
	var report resolve.Report

	for _, path := range []string{outPath, ambiguousPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return report, fmt.Errorf("create output directory: %w", err)
			}
		}
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return report, fmt.Errorf("create unique output: %w", err)
	}
	defer outFile.Close()

	ambFile, err := os.Create(ambiguousPath)
	if err != nil {
		return report, fmt.Errorf("create ambiguous output: %w", err)
	}
	defer ambFile.Close()

	unique := resolve.NewTableWriter(outFile, resolve.MappingColumns)
	ambiguous := resolve.NewTableWriter(ambFile, resolve.AmbiguousColumns)

	report, err = resolve.Resolve(candidates, unique, ambiguous)
	if err != nil {
		return report, err
	}

	if err := outFile.Close(); err != nil {
		return report, fmt.Errorf("close unique output: %w", err)
	}
	if err := ambFile.Close(); err != nil {
		return report, fmt.Errorf("close ambiguous output: %w", err)
	}

	return report, nil
}
