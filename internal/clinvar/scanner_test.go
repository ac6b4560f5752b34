package clinvar

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/clinvar-idmap/internal/record"
)

const testHeader = "#AlleleID\tVariationID\tAssembly\tChromosome\tPositionVCF\tReferenceAlleleVCF\tAlternateAlleleVCF"

// writeGzipTSV writes a gzipped reference file with the given lines.
func writeGzipTSV(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "variant_summary.txt.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	for _, line := range lines {
		_, err := gz.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())

	return path
}

func row(fields ...string) string {
	return strings.Join(fields, "\t")
}

func TestScanner_Header(t *testing.T) {
	path := writeGzipTSV(t, testHeader)

	s, err := NewScanner(path)
	require.NoError(t, err)
	defer s.Close()

	cols := s.Columns()
	assert.Equal(t, 1, cols.VariationID)
	assert.Equal(t, 2, cols.Assembly)
	assert.Equal(t, 3, cols.Chromosome)
	assert.Equal(t, 4, cols.PositionVCF)
	assert.Equal(t, 5, cols.ReferenceAlleleVCF)
	assert.Equal(t, 6, cols.AlternateAlleleVCF)
	assert.Equal(t, "AlleleID", strings.Split(s.Header(), "\t")[0])
}

func TestScanner_PlainText(t *testing.T) {
	input := testHeader + "\n" + row("1", "10", "GRCh38", "7", "117559590", "G", "A")

	s, err := NewScannerFromReader(strings.NewReader(input))
	require.NoError(t, err)

	r, err := s.Next()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "10", r.VariationID)
	assert.Equal(t, "GRCh38", r.Assembly)
	assert.Equal(t, "7", r.Chromosome)
	assert.Equal(t, "117559590", r.Position)
	assert.Equal(t, "G", r.Ref)
	assert.Equal(t, "A", r.Alt)

	r, err = s.Next()
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestScanner_EmptyFile(t *testing.T) {
	_, err := NewScannerFromReader(strings.NewReader(""))
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Message, "no header")
}

func TestScanner_MissingFile(t *testing.T) {
	_, err := NewScanner(filepath.Join(t.TempDir(), "nope.txt.gz"))
	require.Error(t, err)
}

func TestScan_FilterPipeline(t *testing.T) {
	path := writeGzipTSV(t,
		testHeader,
		row("1", "10", "GRCh38", "7", "117559590", "G", "A"),  // kept, unique
		row("2", "20", "GRCh38", "12", "25245350", "C", "T"),  // kept
		row("3", "20", "GRCh38", "12", "25245351", "C", "T"),  // kept, second candidate for 20
		row("4", "20", "GRCh38", "12", "25245350", "c", "t"),  // duplicate of first 20 row after uppercasing
		row("5", "99", "GRCh38", "1", "100", "A", "G"),        // not wanted
		row("6", "x", "GRCh38", "1", "100", "A", "G"),         // non-integer ID
		row("7", "10", "GRCh37", "7", "117559590", "G", "A"),  // wrong assembly
		row("8", "10", "", "7", "117559590", "G", "A"),        // blank assembly passes the filter
		row("9", "30", "GRCh38", "na", "100", "A", "G"),       // missing chromosome
		row("10", "30", "GRCh38", "1", "1e5", "A", "G"),       // non-digit position
		row("11", "30", "GRCh38", "1", "100", "AG", "A"),      // multi-nucleotide ref
		row("12", "30", "GRCh38", "1", "100", "A", "-"),       // non-ACGT alt
	)

	s, err := NewScanner(path)
	require.NoError(t, err)
	defer s.Close()

	wanted := record.IDSet{10: {}, 20: {}, 30: {}}
	candidates, stats, err := s.Scan(wanted, "GRCh38")
	require.NoError(t, err)

	assert.Equal(t, int64(12), stats.RowsScanned)
	// Rows 1-4 and 8 survive; the blank-assembly row duplicates row 1's coordinate.
	assert.Equal(t, int64(5), stats.RowsKept)

	require.Len(t, candidates, 2)
	assert.Len(t, candidates[10], 1)
	assert.Len(t, candidates[20], 2)
	assert.NotContains(t, candidates, int64(30))

	coord := candidates[10]["7_117559590_G_A"]
	assert.Equal(t, "7", coord.Chrom)
	assert.Equal(t, "117559590", coord.Pos)
	assert.Equal(t, "G", coord.Ref)
	assert.Equal(t, "A", coord.Alt)

	// Lowercase alleles canonicalize to uppercase and dedupe against row 2.
	assert.Contains(t, candidates[20], "12_25245350_C_T")
	assert.Contains(t, candidates[20], "12_25245351_C_T")
}

func TestScan_NoAssemblyFilter(t *testing.T) {
	path := writeGzipTSV(t,
		testHeader,
		row("1", "10", "GRCh38", "7", "100", "G", "A"),
		row("2", "10", "GRCh37", "7", "200", "G", "A"),
	)

	s, err := NewScanner(path)
	require.NoError(t, err)
	defer s.Close()

	candidates, stats, err := s.Scan(record.IDSet{10: {}}, "")
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.RowsKept)
	assert.Len(t, candidates[10], 2)
}

func TestScan_AbsentColumn(t *testing.T) {
	// No Chromosome column: every row fails the missing-value filter.
	header := "VariationID\tAssembly\tPositionVCF\tReferenceAlleleVCF\tAlternateAlleleVCF"
	input := header + "\n" + row("10", "GRCh38", "100", "G", "A")

	s, err := NewScannerFromReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, -1, s.Columns().Chromosome)

	candidates, stats, err := s.Scan(record.IDSet{10: {}}, "GRCh38")
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.RowsScanned)
	assert.Zero(t, stats.RowsKept)
	assert.Empty(t, candidates)
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "na", "NA", "n/a", "NaN", "none", "None", "  NA  "} {
		assert.True(t, isMissing(v), "%q should be missing", v)
	}
	for _, v := range []string{"7", "X", "MT", "0", "nan5"} {
		assert.False(t, isMissing(v), "%q should not be missing", v)
	}
}

func TestIsSNVAllele(t *testing.T) {
	for _, v := range []string{"A", "C", "G", "T", "a", "t"} {
		assert.True(t, isSNVAllele(v), "%q should be an SNV allele", v)
	}
	for _, v := range []string{"", "AG", "-", "N", "U", "AA"} {
		assert.False(t, isSNVAllele(v), "%q should not be an SNV allele", v)
	}
}

func TestIsDigits(t *testing.T) {
	assert.True(t, isDigits("117559590"))
	assert.True(t, isDigits("0"))
	assert.False(t, isDigits(""))
	assert.False(t, isDigits("1e5"))
	assert.False(t, isDigits("-5"))
	assert.False(t, isDigits("12 3"))
}
