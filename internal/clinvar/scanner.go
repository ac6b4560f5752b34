// Package clinvar streams and filters the ClinVar variant_summary reference corpus.
package clinvar

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Reference corpus column names.
const (
	ColVariationID        = "VariationID"
	ColAssembly           = "Assembly"
	ColChromosome         = "Chromosome"
	ColPositionVCF        = "PositionVCF"
	ColReferenceAlleleVCF = "ReferenceAlleleVCF"
	ColAlternateAlleleVCF = "AlternateAlleleVCF"
)

// ColumnIndices holds the indices of the consumed reference columns.
// An index of -1 means the column is absent; its values read as empty.
type ColumnIndices struct {
	VariationID        int
	Assembly           int
	Chromosome         int
	PositionVCF        int
	ReferenceAlleleVCF int
	AlternateAlleleVCF int
}

// Row is one parsed reference line, fields whitespace-trimmed.
type Row struct {
	VariationID string
	Assembly    string
	Chromosome  string
	Position    string
	Ref         string
	Alt         string
}

// Scanner reads rows from a variant_summary reference file.
type Scanner struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	columns    ColumnIndices
	headerLine string
	logger     *zap.Logger
}

// NewScanner creates a scanner for the given reference file.
// Supports both plain and gzipped (.txt.gz) files, detected by magic bytes.
func NewScanner(path string) (*Scanner, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference file: %w", err)
	}

	s := &Scanner{file: file, logger: zap.NewNop()}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read reference header: %w", err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek reference file: %w", err)
	}

	// Gzip magic number (0x1f, 0x8b)
	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		s.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		s.reader = bufio.NewReader(s.gzipReader)
	} else {
		s.reader = bufio.NewReader(file)
	}

	if err := s.parseHeader(); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// NewScannerFromReader creates a scanner from an io.Reader of uncompressed text.
func NewScannerFromReader(r io.Reader) (*Scanner, error) {
	s := &Scanner{reader: bufio.NewReader(r), logger: zap.NewNop()}
	if err := s.parseHeader(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetLogger sets the logger for scan progress messages.
func (s *Scanner) SetLogger(l *zap.Logger) {
	s.logger = l
}

// parseHeader reads the header line and resolves column indices.
func (s *Scanner) parseHeader() error {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return &ParseError{
					Line:    s.lineNumber,
					Message: "no header line found",
				}
			}
			return fmt.Errorf("read header: %w", err)
		}
		s.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		// variant_summary ships its header with a leading '#'
		s.headerLine = strings.TrimPrefix(line, "#")
		s.parseColumnIndices(s.headerLine)
		return nil
	}
}

// parseColumnIndices resolves the consumed columns from the header line.
// Absent columns keep index -1; their rows then fail the missing-value
// filter rather than aborting the scan.
func (s *Scanner) parseColumnIndices(headerLine string) {
	s.columns = ColumnIndices{
		VariationID:        -1,
		Assembly:           -1,
		Chromosome:         -1,
		PositionVCF:        -1,
		ReferenceAlleleVCF: -1,
		AlternateAlleleVCF: -1,
	}

	for i, col := range strings.Split(headerLine, "\t") {
		switch col {
		case ColVariationID:
			s.columns.VariationID = i
		case ColAssembly:
			s.columns.Assembly = i
		case ColChromosome:
			s.columns.Chromosome = i
		case ColPositionVCF:
			s.columns.PositionVCF = i
		case ColReferenceAlleleVCF:
			s.columns.ReferenceAlleleVCF = i
		case ColAlternateAlleleVCF:
			s.columns.AlternateAlleleVCF = i
		}
	}
}

// Next reads the next data row. Returns nil, nil at end of stream.
func (s *Scanner) Next() (*Row, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read reference line: %w", err)
		}
		atEOF := err == io.EOF
		s.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if atEOF {
				return nil, nil
			}
			continue
		}

		fields := strings.Split(line, "\t")
		return &Row{
			VariationID: s.field(fields, s.columns.VariationID),
			Assembly:    s.field(fields, s.columns.Assembly),
			Chromosome:  s.field(fields, s.columns.Chromosome),
			Position:    s.field(fields, s.columns.PositionVCF),
			Ref:         s.field(fields, s.columns.ReferenceAlleleVCF),
			Alt:         s.field(fields, s.columns.AlternateAlleleVCF),
		}, nil
	}
}

// field returns the trimmed value at index, or "" when the column is
// absent or the row is short.
func (s *Scanner) field(fields []string, index int) string {
	if index < 0 || index >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[index])
}

// Header returns the reference header line.
func (s *Scanner) Header() string {
	return s.headerLine
}

// Columns returns the resolved column indices.
func (s *Scanner) Columns() ColumnIndices {
	return s.columns
}

// LineNumber returns the current line number being processed.
func (s *Scanner) LineNumber() int {
	return s.lineNumber
}

// Close closes the scanner and underlying file.
func (s *Scanner) Close() error {
	if s.gzipReader != nil {
		s.gzipReader.Close()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// ParseError represents a reference parsing error with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("reference parse error at line %d: %s", e.Line, e.Message)
}
