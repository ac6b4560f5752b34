package resolve

import (
	"fmt"
	"sort"
	"strconv"
)

// Report holds the row counts written by Resolve.
type Report struct {
	UniqueWritten    int
	AmbiguousWritten int
}

// Resolve partitions the candidate mapping into the two output tables.
// Identifiers are visited in ascending order; an identifier with exactly one
// candidate goes to the unique table, one with two or more goes to the
// ambiguous table with one row per candidate in lexical key order. Headers
// are written here so the tables are complete even when empty.
func Resolve(c Candidates, unique, ambiguous *TableWriter) (Report, error) {
	var rep Report

	if err := unique.WriteHeader(); err != nil {
		return rep, fmt.Errorf("write unique header: %w", err)
	}
	if err := ambiguous.WriteHeader(); err != nil {
		return rep, fmt.Errorf("write ambiguous header: %w", err)
	}

	ids := make([]int64, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		byKey := c[id]

		if len(byKey) == 1 {
			for key, coord := range byKey {
				err := unique.WriteRow(
					strconv.FormatInt(id, 10),
					coord.Chrom, coord.Pos, coord.Ref, coord.Alt,
					key,
				)
				if err != nil {
					return rep, fmt.Errorf("write unique row: %w", err)
				}
			}
			rep.UniqueWritten++
			continue
		}

		keys := make([]string, 0, len(byKey))
		for key := range byKey {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			coord := byKey[key]
			err := ambiguous.WriteRow(
				strconv.FormatInt(id, 10),
				coord.Chrom, coord.Pos, coord.Ref, coord.Alt,
				key,
				strconv.Itoa(len(byKey)),
			)
			if err != nil {
				return rep, fmt.Errorf("write ambiguous row: %w", err)
			}
			rep.AmbiguousWritten++
		}
	}

	if err := unique.Flush(); err != nil {
		return rep, fmt.Errorf("flush unique table: %w", err)
	}
	if err := ambiguous.Flush(); err != nil {
		return rep, fmt.Errorf("flush ambiguous table: %w", err)
	}

	return rep, nil
}
