package circuit

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Target is a named group of cells. Members are either GIDs or references
// to other targets.
type Target struct {
	Type string   `json:"type"`
	GIDs []uint32 `json:"gids,omitempty"`
	Refs []string `json:"refs,omitempty"`
}

// TargetSet holds every target of a circuit, indexed by name.
type TargetSet struct {
	Targets map[string]*Target `json:"targets"`
}

// NewTargetSet returns an empty set.
func NewTargetSet() *TargetSet {
	return &TargetSet{Targets: map[string]*Target{}}
}

// Names returns the target names in ascending order.
func (ts *TargetSet) Names() []string {
	names := make([]string, 0, len(ts.Targets))
	for name := range ts.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies other's targets into ts. Targets of other win on name clashes.
func (ts *TargetSet) Merge(other *TargetSet) {
	for name, target := range other.Targets {
		ts.Targets[name] = target
	}
}

// Resolve returns the GIDs of a target with every reference expanded,
// de-duplicated and sorted ascending.
func (ts *TargetSet) Resolve(name string) ([]uint32, error) {
	seen := map[uint32]struct{}{}
	if err := ts.collect(name, seen, map[string]bool{}); err != nil {
		return nil, err
	}

	gids := make([]uint32, 0, len(seen))
	for gid := range seen {
		gids = append(gids, gid)
	}
	sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })
	return gids, nil
}

// collect walks references depth first. visiting holds the current path so
// cycles are reported instead of looping forever.
func (ts *TargetSet) collect(name string, seen map[uint32]struct{}, visiting map[string]bool) error {
	target, ok := ts.Targets[name]
	if !ok {
		return fmt.Errorf("unknown target %q", name)
	}
	if visiting[name] {
		return fmt.Errorf("target %q references itself", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	for _, gid := range target.GIDs {
		seen[gid] = struct{}{}
	}
	for _, ref := range target.Refs {
		if err := ts.collect(ref, seen, visiting); err != nil {
			return fmt.Errorf("in target %q: %w", name, err)
		}
	}
	return nil
}

// ParseTargets reads a target file such as start.target or user.target:
//
//	Target Cell Layer1
//	{
//	  a1 a2 a3 Layer1Inhibitory
//	}
//
// "a<digits>" members are GIDs, any other member names another target.
// Everything after '#' on a line is a comment.
func ParseTargets(r io.Reader) (*TargetSet, error) {
	tokens, err := tokenize(r)
	if err != nil {
		return nil, err
	}

	ts := NewTargetSet()
	for i := 0; i < len(tokens); {
		if tokens[i] != "Target" {
			return nil, fmt.Errorf("expected \"Target\", got %q", tokens[i])
		}
		if i+3 >= len(tokens) || tokens[i+3] != "{" {
			return nil, fmt.Errorf("malformed target header after %q", strings.Join(tokens[i:min(i+3, len(tokens))], " "))
		}

		target := &Target{Type: tokens[i+1]}
		name := tokens[i+2]
		i += 4

		closed := false
		for ; i < len(tokens); i++ {
			token := tokens[i]
			if token == "}" {
				closed = true
				i++
				break
			}
			if token == "{" {
				return nil, fmt.Errorf("nested \"{\" in target %q", name)
			}
			if gid, ok := parseGID(token); ok {
				target.GIDs = append(target.GIDs, gid)
			} else {
				target.Refs = append(target.Refs, token)
			}
		}
		if !closed {
			return nil, fmt.Errorf("target %q is not closed", name)
		}

		ts.Targets[name] = target
	}

	return ts, nil
}

func tokenize(r io.Reader) ([]string, error) {
	var tokens []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if pos := strings.IndexByte(line, '#'); pos >= 0 {
			line = line[:pos]
		}
		line = strings.ReplaceAll(line, "{", " { ")
		line = strings.ReplaceAll(line, "}", " } ")
		tokens = append(tokens, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading targets: %w", err)
	}
	return tokens, nil
}

// parseGID accepts "a123".
func parseGID(token string) (uint32, bool) {
	if len(token) < 2 || token[0] != 'a' {
		return 0, false
	}
	gid, err := strconv.ParseUint(token[1:], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(gid), true
}
