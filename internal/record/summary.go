package record

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Sereal/Sereal/Go/sereal"
)

// SchemaSummary describes the structure of a sampled record stream.
type SchemaSummary struct {
	RowsSampled int
	DocTypes    map[string]int // document shape name -> count
	Keys        []string       // sorted union of map keys
	IDTypes     map[string]int // value type name -> count for the ID field
	IDSamples   []string
	PathTypes   map[string]int // value type name -> count for Pathogenicity
	PathValues  map[string]int // rendered Pathogenicity value -> count
	PathSamples []string
	Missing     map[string]int // key -> count of nil/NaN values
}

// SummarizeSchema samples up to maxRows documents from the record stream
// and reports shape counts, the key union, and per-field statistics.
func SummarizeSchema(path string, maxRows, maxSamples int) (*SchemaSummary, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	s := &SchemaSummary{
		DocTypes:   make(map[string]int),
		IDTypes:    make(map[string]int),
		PathTypes:  make(map[string]int),
		PathValues: make(map[string]int),
		Missing:    make(map[string]int),
	}

	keys := make(map[string]struct{})

	for s.RowsSampled < maxRows {
		doc, err := r.Next()
		if err != nil {
			return nil, err
		}
		if doc == nil {
			break
		}
		s.RowsSampled++
		s.DocTypes[docTypeName(doc)]++

		m := asMap(doc)
		if m == nil {
			continue
		}

		for k, v := range m {
			keys[k] = struct{}{}
			if isMissingValue(v) {
				s.Missing[k]++
			}
		}

		if v, ok := m[DefaultIDField]; ok {
			s.IDTypes[docTypeName(v)]++
			if len(s.IDSamples) < maxSamples {
				s.IDSamples = append(s.IDSamples, renderValue(v))
			}
		}
		if v, ok := m["Pathogenicity"]; ok {
			s.PathTypes[docTypeName(v)]++
			s.PathValues[renderValue(v)]++
			if len(s.PathSamples) < maxSamples {
				s.PathSamples = append(s.PathSamples, renderValue(v))
			}
		}
	}

	s.Keys = sortedKeys(keys)
	return s, nil
}

// PrefixCount is a column-name prefix and how many columns share it.
type PrefixCount struct {
	Prefix string
	Count  int
}

// ColumnSummary describes the column (map key) population of a record stream.
type ColumnSummary struct {
	RowsSampled  int
	TotalColumns int
	StringCols   []string // non-numeric column names, sorted
	NumericCols  int      // columns whose name is entirely numeric
	NumericPrev  []string // preview of numeric-named columns
	TopPrefixes  []PrefixCount
}

// SummarizeColumns samples up to maxRows documents and summarizes the union
// of their column names, bucketing by leading underscore-delimited prefix.
func SummarizeColumns(path string, maxRows int) (*ColumnSummary, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	keys := make(map[string]struct{})
	rows := 0
	for rows < maxRows {
		doc, err := r.Next()
		if err != nil {
			return nil, err
		}
		if doc == nil {
			break
		}
		rows++
		for k := range asMap(doc) {
			keys[k] = struct{}{}
		}
	}

	s := &ColumnSummary{
		RowsSampled:  rows,
		TotalColumns: len(keys),
	}

	prefixes := make(map[string]int)
	for k := range keys {
		if isNumericName(k) {
			s.NumericCols++
			continue
		}
		s.StringCols = append(s.StringCols, k)
		prefix := k
		if i := strings.Index(k, "_"); i >= 0 {
			prefix = k[:i]
		}
		prefixes[prefix]++
	}
	sort.Strings(s.StringCols)

	for k := range keys {
		if isNumericName(k) && len(s.NumericPrev) < 10 {
			s.NumericPrev = append(s.NumericPrev, k)
		}
	}
	sort.Strings(s.NumericPrev)

	for p, c := range prefixes {
		s.TopPrefixes = append(s.TopPrefixes, PrefixCount{Prefix: p, Count: c})
	}
	sort.Slice(s.TopPrefixes, func(i, j int) bool {
		if s.TopPrefixes[i].Count != s.TopPrefixes[j].Count {
			return s.TopPrefixes[i].Count > s.TopPrefixes[j].Count
		}
		return s.TopPrefixes[i].Prefix < s.TopPrefixes[j].Prefix
	})
	if len(s.TopPrefixes) > 10 {
		s.TopPrefixes = s.TopPrefixes[:10]
	}

	return s, nil
}

// docTypeName names a decoded document shape for reporting.
func docTypeName(doc interface{}) string {
	switch d := doc.(type) {
	case nil:
		return "nil"
	case map[string]interface{}:
		return "map"
	case []interface{}:
		return "array"
	case string, []byte:
		return "string"
	case bool:
		return "bool"
	case float32, float64:
		return "float"
	case int, int32, int64, uint, uint32, uint64:
		return "int"
	case *sereal.PerlObject:
		return "object(" + d.Class + ")"
	case sereal.PerlObject:
		return "object(" + d.Class + ")"
	default:
		return fmt.Sprintf("%T", doc)
	}
}

// isMissingValue reports whether a record value counts as missing (nil or NaN).
func isMissingValue(v interface{}) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok {
		return math.IsNaN(f)
	}
	if f, ok := v.(float32); ok {
		return math.IsNaN(float64(f))
	}
	return false
}

// isNumericName reports whether a column name is entirely numeric.
func isNumericName(name string) bool {
	if _, err := strconv.ParseFloat(name, 64); err == nil && name != "" {
		return true
	}
	return false
}

// renderValue renders a record value for human-readable reports.
func renderValue(v interface{}) string {
	switch s := v.(type) {
	case []byte:
		return string(s)
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
