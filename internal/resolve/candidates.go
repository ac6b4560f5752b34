// Package resolve partitions candidate coordinate mappings into unique and
// ambiguous output tables.
package resolve

// Coordinate locates a single-nucleotide variant on an assembly.
// Alleles are stored uppercase; Position keeps its source text form.
type Coordinate struct {
	Chrom string
	Pos   string
	Ref   string
	Alt   string
}

// Key returns the canonical composite form "chrom_pos_ref_alt".
func (c Coordinate) Key() string {
	return c.Chrom + "_" + c.Pos + "_" + c.Ref + "_" + c.Alt
}

// Candidates maps an identifier to its deduplicated candidate coordinates,
// keyed by the composite coordinate key.
type Candidates map[int64]map[string]Coordinate

// Add registers a candidate coordinate for an identifier. Identical
// coordinates arriving from multiple reference rows collapse to one entry.
func (c Candidates) Add(id int64, coord Coordinate) {
	m, ok := c[id]
	if !ok {
		m = make(map[string]Coordinate)
		c[id] = m
	}
	m[coord.Key()] = coord
}

// Len returns the number of identifiers with at least one candidate.
func (c Candidates) Len() int {
	return len(c)
}
