package connectome

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) ([]Edge, error) {
	t.Helper()
	er := NewEdgeReader(strings.NewReader(input))
	var edges []Edge
	for er.Next() {
		edges = append(edges, er.Edge())
	}
	return edges, er.Err()
}

func TestEdgeReader(t *testing.T) {
	edges, err := readAll(t, "source,target\n1,2\n# comment\n 3, 4\n\n5,1\n")
	require.NoError(t, err)
	assert.Equal(t, []Edge{{1, 2}, {3, 4}, {5, 1}}, edges)
}

func TestEdgeReaderHeaderAfterComments(t *testing.T) {
	edges, err := readAll(t, "# edges of circuit c\n\nsource,target\n1,2\n")
	require.NoError(t, err)
	assert.Equal(t, []Edge{{1, 2}}, edges)
}

func TestEdgeReaderWithoutHeader(t *testing.T) {
	edges, err := readAll(t, "10,20\n")
	require.NoError(t, err)
	assert.Equal(t, []Edge{{10, 20}}, edges)
}

func TestEdgeReaderValues(t *testing.T) {
	er := NewEdgeReader(strings.NewReader("7,8\n"))
	require.True(t, er.Next())

	values, err := er.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{int32(7), int32(8)}, values)
	assert.False(t, er.Next())
	assert.Equal(t, int64(1), er.Count())
}

func TestEdgeReaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "zero gid", input: "0,1\n", wantErr: "gids start at 1"},
		{name: "negative gid", input: "1,2\n-3,4\n", wantErr: "line 2"},
		{name: "header not first", input: "1,2\nsource,target\n", wantErr: "line 2"},
		{name: "two headers", input: "# c\nsource,target\npre,post\n1,2\n", wantErr: "line 3"},
		{name: "three fields", input: "1,2,3\n", wantErr: "expected 2 fields"},
		{name: "one field", input: "12\n", wantErr: "expected 2 fields"},
		{name: "half header", input: "source,2\n", wantErr: `invalid gid "source"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges, err := readAll(t, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.LessOrEqual(t, len(edges), 1)
		})
	}
}
