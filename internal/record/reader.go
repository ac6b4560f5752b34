// Package record provides reading of length-prefixed Sereal record streams.
package record

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Sereal/Sereal/Go/sereal"
)

// DefaultIDField is the record field that links a record to the reference corpus.
const DefaultIDField = "ID"

// Reader reads a stream of length-prefixed Sereal documents.
// Each record is a uvarint byte length followed by one Sereal document.
type Reader struct {
	file         *os.File
	reader       *bufio.Reader
	recordNumber int
}

// NewReader creates a reader for the given record stream file.
func NewReader(path string) (*Reader, error) {
	if path == "-" {
		return NewReaderFromReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}

	return &Reader{
		file:   file,
		reader: bufio.NewReader(file),
	}, nil
}

// NewReaderFromReader creates a reader from an io.Reader (e.g., stdin).
func NewReaderFromReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(r)}
}

// Next reads the next decodable document from the stream.
// Returns nil, nil at a clean end of stream. Records whose payload does not
// decode as Sereal are skipped; a frame truncated mid-payload is an error.
func (r *Reader) Next() (interface{}, error) {
	for {
		length, err := binary.ReadUvarint(r.reader)
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read record length: %w", err)
		}
		r.recordNumber++

		payload := make([]byte, length)
		if _, err := io.ReadFull(r.reader, payload); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("read record %d payload: %w", r.recordNumber, err)
		}

		var doc interface{}
		if err := sereal.Unmarshal(payload, &doc); err != nil {
			// Malformed record, not a stream error.
			continue
		}
		return doc, nil
	}
}

// RecordNumber returns the number of records consumed so far,
// including skipped malformed ones.
func (r *Reader) RecordNumber() int {
	return r.recordNumber
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// IDSet is the set of identifiers extracted from a record stream.
type IDSet map[int64]struct{}

// Add inserts an identifier into the set.
func (s IDSet) Add(id int64) {
	s[id] = struct{}{}
}

// Contains reports whether the identifier is in the set.
func (s IDSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers in the set.
func (s IDSet) Len() int {
	return len(s)
}

// CollectIDs reads records from path and returns the unique integer values
// found under the given field, stopping once max identifiers are collected
// or the stream ends. Records that are not string-keyed maps, lack the
// field, or hold a non-integer value are skipped.
func CollectIDs(path, field string, max int) (IDSet, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	ids := make(IDSet)
	for ids.Len() < max {
		doc, err := r.Next()
		if err != nil {
			return nil, err
		}
		if doc == nil {
			break
		}

		m := asMap(doc)
		if m == nil {
			continue
		}
		v, ok := m[field]
		if !ok {
			continue
		}
		if id, ok := coerceInt64(v); ok {
			ids.Add(id)
		}
	}

	return ids, nil
}

// asMap extracts the underlying string-keyed map from a document, unwrapping
// Perl blessed objects, or returns nil if the document has another shape.
func asMap(doc interface{}) map[string]interface{} {
	switch d := doc.(type) {
	case map[string]interface{}:
		return d
	case *sereal.PerlObject:
		if m, ok := d.Reference.(map[string]interface{}); ok {
			return m
		}
	case sereal.PerlObject:
		if m, ok := d.Reference.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

// coerceInt64 converts loosely typed record values to an integer.
// Floats are truncated; NaN and infinities do not coerce.
func coerceInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case float32:
		return coerceInt64(float64(n))
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	case []byte:
		return coerceInt64(string(n))
	}
	return 0, false
}
