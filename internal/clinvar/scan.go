package clinvar

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/clinvar-idmap/internal/resolve"
)

// IDSet is the set of wanted identifiers the scan selects on.
type IDSet interface {
	Contains(id int64) bool
}

// Stats counts reference rows seen and retained by a scan.
type Stats struct {
	RowsScanned int64
	RowsKept    int64
}

// progressEvery controls how often the scan logs progress.
const progressEvery = 5_000_000

// Scan consumes the reference corpus in one forward pass and accumulates
// candidate coordinates for every wanted identifier whose row passes the
// filters. A non-empty assembly restricts rows to that assembly, except
// rows whose Assembly field is blank, which pass through.
func (s *Scanner) Scan(wanted IDSet, assembly string) (resolve.Candidates, Stats, error) {
	logger := s.logger
	candidates := make(resolve.Candidates)
	var stats Stats

	for {
		row, err := s.Next()
		if err != nil {
			return nil, stats, err
		}
		if row == nil {
			break
		}
		stats.RowsScanned++

		if stats.RowsScanned%progressEvery == 0 {
			logger.Info("scanning reference corpus",
				zap.Int64("rows_scanned", stats.RowsScanned),
				zap.Int64("rows_kept", stats.RowsKept))
		}

		id, err := strconv.ParseInt(row.VariationID, 10, 64)
		if err != nil {
			continue
		}
		if !wanted.Contains(id) {
			continue
		}

		if assembly != "" && row.Assembly != "" && row.Assembly != assembly {
			continue
		}

		if isMissing(row.Chromosome) || isMissing(row.Position) ||
			isMissing(row.Ref) || isMissing(row.Alt) {
			continue
		}
		if !isDigits(row.Position) {
			continue
		}
		if !isSNVAllele(row.Ref) || !isSNVAllele(row.Alt) {
			continue
		}

		candidates.Add(id, resolve.Coordinate{
			Chrom: row.Chromosome,
			Pos:   row.Position,
			Ref:   strings.ToUpper(row.Ref),
			Alt:   strings.ToUpper(row.Alt),
		})
		stats.RowsKept++
	}

	return candidates, stats, nil
}

// isMissing reports whether a field value counts as absent.
func isMissing(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "na", "n/a", "nan", "none":
		return true
	}
	return false
}

// isDigits reports whether the value is one or more decimal digits.
func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

// isSNVAllele reports whether the allele is a single A, C, G or T.
func isSNVAllele(allele string) bool {
	if len(allele) != 1 {
		return false
	}
	switch allele[0] {
	case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		return true
	}
	return false
}
