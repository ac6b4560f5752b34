package resolve

import (
	"bufio"
	"io"
	"strings"
)

// Output table column names.
var (
	// MappingColumns is the header of the unique mapping table.
	MappingColumns = []string{
		"pickle_ID",
		"Chromosome",
		"PositionVCF",
		"ReferenceAlleleVCF",
		"AlternateAlleleVCF",
		"chr_pos_ref_alt",
	}

	// AmbiguousColumns is the header of the ambiguous mapping table.
	AmbiguousColumns = append(append([]string{}, MappingColumns...), "n_candidates")
)

// TableWriter writes mapping rows in tab-delimited format.
type TableWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTableWriter creates a tab-delimited writer with the given header columns.
func NewTableWriter(w io.Writer, columns []string) *TableWriter {
	return &TableWriter{
		w:       bufio.NewWriter(w),
		columns: columns,
	}
}

// WriteHeader writes the header line.
func (tw *TableWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// WriteRow writes a single tab-delimited row.
func (tw *TableWriter) WriteRow(fields ...string) error {
	_, err := tw.w.WriteString(strings.Join(fields, "\t") + "\n")
	return err
}

// Flush flushes buffered output to the underlying writer.
func (tw *TableWriter) Flush() error {
	return tw.w.Flush()
}
