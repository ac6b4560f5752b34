package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/inodb/clinvar-idmap/internal/record"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the structure of a sample record stream",
	}

	cmd.AddCommand(newInspectSchemaCmd())
	cmd.AddCommand(newInspectColumnsCmd())

	return cmd
}

func newInspectSchemaCmd() *cobra.Command {
	var (
		maxRows    int
		maxSamples int
	)

	cmd := &cobra.Command{
		Use:   "schema <sample-file>",
		Short: "Report document shapes, keys, and per-field statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspectSchema(args[0], maxRows, maxSamples)
		},
	}

	cmd.Flags().IntVar(&maxRows, "max-rows", 500, "Max records to sample")
	cmd.Flags().IntVar(&maxSamples, "samples", 10, "How many field value samples to print")

	return cmd
}

func newInspectColumnsCmd() *cobra.Command {
	var (
		maxRows      int
		maxColsPrint int
	)

	cmd := &cobra.Command{
		Use:   "columns <sample-file>",
		Short: "Report the column-name population of the record stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspectColumns(args[0], maxRows, maxColsPrint)
		},
	}

	cmd.Flags().IntVar(&maxRows, "max-rows", 200, "Max records to sample")
	cmd.Flags().IntVar(&maxColsPrint, "max-cols-print", 200, "Max string columns to print fully")

	return cmd
}

func runInspectSchema(path string, maxRows, maxSamples int) error {
	s, err := record.SummarizeSchema(path, maxRows, maxSamples)
	if err != nil {
		return fmt.Errorf("summarize schema: %w", err)
	}

	fmt.Printf("=== %s ===\n", filepath.Base(path))
	fmt.Printf("Rows sampled: %d\n", s.RowsSampled)

	fmt.Println("Document shapes (count):")
	printCounts(s.DocTypes)

	if len(s.Keys) > 0 {
		fmt.Printf("\nUnion of map keys (%d):\n", len(s.Keys))
		for _, k := range s.Keys {
			fmt.Printf("  %s\n", k)
		}
	}

	if len(s.PathTypes) > 0 {
		fmt.Println("\nPathogenicity:")
		fmt.Println("  Value types:")
		printIndentedCounts(s.PathTypes)
		fmt.Println("  Unique values (top 30):")
		printTopCounts(s.PathValues, 30)
		fmt.Printf("  Samples (first %d):\n", len(s.PathSamples))
		for _, v := range s.PathSamples {
			fmt.Printf("    %q\n", v)
		}
	}

	if len(s.IDTypes) > 0 {
		fmt.Println("\nID:")
		fmt.Println("  Value types:")
		printIndentedCounts(s.IDTypes)
		fmt.Printf("  Samples (first %d):\n", len(s.IDSamples))
		for _, v := range s.IDSamples {
			fmt.Printf("    %q\n", v)
		}
	}

	if len(s.Missing) > 0 {
		fmt.Println("\nMissing values (nil/NaN) per key (top 30):")
		printTopCounts(s.Missing, 30)
	}

	return nil
}

func runInspectColumns(path string, maxRows, maxColsPrint int) error {
	s, err := record.SummarizeColumns(path, maxRows)
	if err != nil {
		return fmt.Errorf("summarize columns: %w", err)
	}

	fmt.Printf("=== %s ===\n", filepath.Base(path))
	fmt.Printf("Rows sampled: %d\n", s.RowsSampled)
	fmt.Printf("Total columns: %d\n", s.TotalColumns)
	fmt.Printf("Numeric-named columns (count): %d\n", s.NumericCols)
	if s.NumericCols > 0 {
		fmt.Printf("Numeric-named preview: %v\n", s.NumericPrev)
	}

	fmt.Println("Top string-column prefixes (prefix,count):")
	for _, p := range s.TopPrefixes {
		fmt.Printf("  %s: %d\n", p.Prefix, p.Count)
	}

	if len(s.StringCols) <= maxColsPrint {
		fmt.Println("String columns:")
		for _, c := range s.StringCols {
			fmt.Printf("  %s\n", c)
		}
	} else {
		fmt.Printf("String columns: %d total; first 80:\n", len(s.StringCols))
		for _, c := range s.StringCols[:80] {
			fmt.Printf("  %s\n", c)
		}
		fmt.Println("...")
		for _, c := range s.StringCols[len(s.StringCols)-20:] {
			fmt.Printf("  %s\n", c)
		}
	}

	return nil
}

// printCounts prints name: count pairs, most frequent first.
func printCounts(m map[string]int) {
	for _, kc := range sortByCount(m, len(m)) {
		fmt.Printf("  %s: %d\n", kc.key, kc.count)
	}
}

func printIndentedCounts(m map[string]int) {
	for _, kc := range sortByCount(m, len(m)) {
		fmt.Printf("    %s: %d\n", kc.key, kc.count)
	}
}

func printTopCounts(m map[string]int, top int) {
	for _, kc := range sortByCount(m, top) {
		fmt.Printf("    %s: %d\n", kc.key, kc.count)
	}
}

type keyCount struct {
	key   string
	count int
}

func sortByCount(m map[string]int, top int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{key: k, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if len(out) > top {
		out = out[:top]
	}
	return out
}
