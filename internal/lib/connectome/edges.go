// Package connectome reads synapse edge lists.
//
// An edge list is a CSV file with one "source,target" GID pair per line and
// an optional header line. It is consumed as a pgx.CopyFromSource so edges
// stream straight into PostgreSQL.
package connectome

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Edge is a directed synapse connection between two cells.
type Edge struct {
	Source uint32
	Target uint32
}

// EdgeReader iterates over the edges of a CSV stream.
type EdgeReader struct {
	csv     *csv.Reader
	current Edge
	count   int64
	line    int
	header  bool
	err     error
}

// NewEdgeReader reads edges from r. Fields may be separated by commas,
// surrounded by spaces. Lines starting with '#' are comments.
func NewEdgeReader(r io.Reader) *EdgeReader {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &EdgeReader{csv: cr}
}

// Next advances to the next edge. It returns false at the end of the input
// or on the first malformed line, see Err.
func (er *EdgeReader) Next() bool {
	if er.err != nil {
		return false
	}

	for {
		record, err := er.csv.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			er.err = fmt.Errorf("reading edges: %w", err)
			return false
		}
		er.line, _ = er.csv.FieldPos(0)

		if len(record) != 2 {
			er.err = fmt.Errorf("line %d: expected 2 fields, got %d", er.line, len(record))
			return false
		}

		source, srcErr := parseGID(record[0])
		target, tgtErr := parseGID(record[1])
		if srcErr != nil || tgtErr != nil {
			// One non numeric record before the first edge is a header.
			// Comments and blank lines may precede it.
			if er.count == 0 && !er.header && isHeader(record) {
				er.header = true
				continue
			}
			er.err = fmt.Errorf("line %d: %w", er.line, firstErr(srcErr, tgtErr))
			return false
		}

		er.current = Edge{Source: source, Target: target}
		er.count++
		return true
	}
}

// Edge returns the edge Next advanced to.
func (er *EdgeReader) Edge() Edge {
	return er.current
}

// Values implements pgx.CopyFromSource with (source_gid, target_gid) columns.
func (er *EdgeReader) Values() ([]any, error) {
	return []any{int32(er.current.Source), int32(er.current.Target)}, nil
}

// Err returns the error that stopped the iteration, nil at a clean end.
func (er *EdgeReader) Err() error {
	return er.err
}

// Count is the number of edges read so far.
func (er *EdgeReader) Count() int64 {
	return er.count
}

func parseGID(field string) (uint32, error) {
	field = strings.TrimSpace(field)
	gid, err := strconv.ParseUint(field, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("invalid gid %q", field)
	}
	if gid == 0 {
		return 0, fmt.Errorf("invalid gid %q: gids start at 1", field)
	}
	return uint32(gid), nil
}

func isHeader(record []string) bool {
	for _, field := range record {
		if _, err := strconv.Atoi(strings.TrimSpace(field)); err == nil {
			return false
		}
	}
	return true
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
