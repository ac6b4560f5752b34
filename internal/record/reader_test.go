package record

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Sereal/Sereal/Go/sereal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFrames writes length-prefixed payloads to a temp file and returns its path.
func writeFrames(t *testing.T, payloads ...[]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "records.srl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var lenBuf [binary.MaxVarintLen64]byte
	for _, payload := range payloads {
		n := binary.PutUvarint(lenBuf[:], uint64(len(payload)))
		_, err = f.Write(lenBuf[:n])
		require.NoError(t, err)
		_, err = f.Write(payload)
		require.NoError(t, err)
	}

	return path
}

// encodeDoc Sereal-encodes a document for test record streams.
func encodeDoc(t *testing.T, doc interface{}) []byte {
	t.Helper()
	payload, err := sereal.Marshal(doc)
	require.NoError(t, err)
	return payload
}

func TestCollectIDs(t *testing.T) {
	path := writeFrames(t,
		encodeDoc(t, map[string]interface{}{"ID": 10, "Pathogenicity": "Benign"}),
		encodeDoc(t, map[string]interface{}{"ID": "20"}),              // decimal string coerces
		encodeDoc(t, map[string]interface{}{"ID": 30.0}),              // integral float coerces
		encodeDoc(t, map[string]interface{}{"Pathogenicity": "VUS"}),  // no ID field
		encodeDoc(t, map[string]interface{}{"ID": "not-a-number"}),    // non-coercible
		encodeDoc(t, []interface{}{"ID", 40}),                         // not a map
		encodeDoc(t, map[string]interface{}{"ID": 10}),                // duplicate
	)

	ids, err := CollectIDs(path, DefaultIDField, 50000)
	require.NoError(t, err)

	assert.Equal(t, 3, ids.Len())
	assert.True(t, ids.Contains(10))
	assert.True(t, ids.Contains(20))
	assert.True(t, ids.Contains(30))
	assert.False(t, ids.Contains(40))
}

func TestCollectIDs_MaxBound(t *testing.T) {
	path := writeFrames(t,
		encodeDoc(t, map[string]interface{}{"ID": 1}),
		encodeDoc(t, map[string]interface{}{"ID": 2}),
		encodeDoc(t, map[string]interface{}{"ID": 3}),
		encodeDoc(t, map[string]interface{}{"ID": 4}),
	)

	ids, err := CollectIDs(path, DefaultIDField, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, ids.Len())
	assert.True(t, ids.Contains(1))
	assert.True(t, ids.Contains(2))
}

func TestCollectIDs_MissingFile(t *testing.T) {
	_, err := CollectIDs(filepath.Join(t.TempDir(), "nope.srl"), DefaultIDField, 10)
	require.Error(t, err)
}

func TestReader_CleanEOF(t *testing.T) {
	path := writeFrames(t) // empty stream

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	doc, err := r.Next()
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestReader_SkipsMalformedPayload(t *testing.T) {
	path := writeFrames(t,
		[]byte{0xde, 0xad, 0xbe, 0xef}, // not a Sereal document
		encodeDoc(t, map[string]interface{}{"ID": 7}),
	)

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	doc, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, doc)

	m, ok := doc.(map[string]interface{})
	require.True(t, ok)
	id, ok := coerceInt64(m["ID"])
	require.True(t, ok)
	assert.Equal(t, int64(7), id)

	doc, err = r.Next()
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, 2, r.RecordNumber())
}

func TestReader_TruncatedFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.srl")
	// Length prefix promises 100 bytes; only 3 follow.
	require.NoError(t, os.WriteFile(path, []byte{100, 0x01, 0x02, 0x03}, 0o644))

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload")
}

func TestCoerceInt64(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want int64
		ok   bool
	}{
		{"int", 42, 42, true},
		{"int64", int64(42), 42, true},
		{"uint64", uint64(42), 42, true},
		{"float truncates", 42.9, 42, true},
		{"negative float", -1.5, -1, true},
		{"string", " 42 ", 42, true},
		{"bytes", []byte("42"), 42, true},
		{"bool", true, 1, true},
		{"nan", nan(), 0, false},
		{"non-numeric string", "forty-two", 0, false},
		{"nil", nil, 0, false},
		{"slice", []interface{}{1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceInt64(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func nan() float64 {
	f := 0.0
	return f / f
}
