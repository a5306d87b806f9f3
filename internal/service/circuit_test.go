package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
	"github.com/deppfellow/webbrayns-backend/internal/repository"
	"github.com/deppfellow/webbrayns-backend/internal/sandbox"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type edge struct{ source, target uint32 }

// fakeConnectome keeps edges in memory, keyed by BlueConfig path.
type fakeConnectome struct {
	edges    map[string][]edge
	imported map[string]*repository.ConnectomeImport
	err      error
}

func newFakeConnectome() *fakeConnectome {
	return &fakeConnectome{
		edges:    map[string][]edge{},
		imported: map[string]*repository.ConnectomeImport{},
	}
}

func (f *fakeConnectome) query(circuitPath string, gids []uint32, afferent bool) ([]uint32, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []uint32
	for _, gid := range gids {
		for _, e := range f.edges[circuitPath] {
			if afferent && e.target == gid {
				out = append(out, e.source)
			}
			if !afferent && e.source == gid {
				out = append(out, e.target)
			}
		}
	}
	return out, nil
}

func (f *fakeConnectome) AfferentGIDs(_ context.Context, circuitPath string, gids []uint32) ([]uint32, error) {
	return f.query(circuitPath, gids, true)
}

func (f *fakeConnectome) EfferentGIDs(_ context.Context, circuitPath string, gids []uint32) ([]uint32, error) {
	return f.query(circuitPath, gids, false)
}

func (f *fakeConnectome) GetImport(_ context.Context, circuitPath string) (*repository.ConnectomeImport, error) {
	imp, ok := f.imported[circuitPath]
	if !ok {
		return nil, fmt.Errorf("table:connectome_imports: %w", pgx.ErrNoRows)
	}
	return imp, nil
}

func (f *fakeConnectome) ReplaceEdges(_ context.Context, circuitPath, sourceFile string, src pgx.CopyFromSource) (int64, error) {
	var edges []edge
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return 0, err
		}
		edges = append(edges, edge{uint32(values[0].(int32)), uint32(values[1].(int32))})
	}
	if err := src.Err(); err != nil {
		return 0, fmt.Errorf("copy: %w", err)
	}
	if f.err != nil {
		return 0, f.err
	}
	f.edges[circuitPath] = edges
	f.imported[circuitPath] = &repository.ConnectomeImport{
		CircuitPath: circuitPath,
		SourceFile:  sourceFile,
		EdgeCount:   int64(len(edges)),
		ImportedAt:  time.Now(),
	}
	return int64(len(edges)), nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, task *asynq.Task) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(f.tasks)), Queue: "critical", Type: task.Type()}, nil
}

func writeTestFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

// newCircuitFixture lays out <root>/proj/circ with a BlueConfig and targets.
func newCircuitFixture(t *testing.T) (root string) {
	t.Helper()
	root = t.TempDir()
	circ := filepath.Join(root, "proj", "circ")

	writeTestFile(t, filepath.Join(circ, "CircuitConfig"), fmt.Sprintf(
		"Run Default\n{\n  CircuitPath %s\n  TargetFile user.target\n}\n", circ))
	writeTestFile(t, filepath.Join(circ, "start.target"),
		"Target Cell Mosaic\n{\n  L1 L2\n}\nTarget Cell L1\n{\n  a3 a1\n}\nTarget Cell L2\n{\n  a2 a3\n}\n")
	writeTestFile(t, filepath.Join(circ, "user.target"), "Target Cell Loop { Loop }\n")
	return root
}

func newCircuitService(t *testing.T, root string, store ConnectomeStore) *CircuitService {
	t.Helper()
	logger := zerolog.Nop()
	return NewCircuitService(sandbox.New(root), "CircuitConfig", NewTargetCache(nil, time.Minute, &logger), store, &logger)
}

func TestListTargets(t *testing.T) {
	root := newCircuitFixture(t)
	svc := newCircuitService(t, root, newFakeConnectome())

	names, err := svc.ListTargets(context.Background(), "proj/circ")
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2", "Loop", "Mosaic"}, names)

	names, err = svc.ListTargets(context.Background(), root+"/proj/circ/CircuitConfig")
	require.NoError(t, err)
	assert.Len(t, names, 4)
}

func TestListTargetsErrors(t *testing.T) {
	root := newCircuitFixture(t)
	svc := newCircuitService(t, root, newFakeConnectome())

	_, err := svc.ListTargets(context.Background(), "../../etc")
	requireRPCCode(t, err, errs.CodePathEscape)

	_, err = svc.ListTargets(context.Background(), "proj/none")
	requireRPCCode(t, err, errs.CodeUnexpected)
}

func TestListGIDs(t *testing.T) {
	root := newCircuitFixture(t)
	svc := newCircuitService(t, root, newFakeConnectome())

	ids, err := svc.ListGIDs(context.Background(), "proj/circ", []string{"L1", "Mosaic"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "1", "2", "3"}, ids)

	ids, err = svc.ListGIDs(context.Background(), "proj/circ", []string{})
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)

	_, err = svc.ListGIDs(context.Background(), "proj/circ", []string{"L6"})
	requireRPCCode(t, err, errs.CodeUnexpected)

	_, err = svc.ListGIDs(context.Background(), "proj/circ", []string{"Loop"})
	requireRPCCode(t, err, errs.CodeUnexpected)
}

func TestAfferentAndEfferentGIDs(t *testing.T) {
	root := newCircuitFixture(t)
	store := newFakeConnectome()
	configPath := filepath.Join(root, "proj", "circ", "CircuitConfig")
	store.imported[configPath] = &repository.ConnectomeImport{CircuitPath: configPath}
	store.edges[configPath] = []edge{{1, 3}, {2, 3}, {3, 1}}

	svc := newCircuitService(t, root, store)

	ids, err := svc.AfferentGIDs(context.Background(), "proj/circ", []uint32{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids)

	ids, err = svc.EfferentGIDs(context.Background(), "proj/circ/CircuitConfig", []uint32{3, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids)

	ids, err = svc.AfferentGIDs(context.Background(), "proj/circ", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)
}

func TestAfferentGIDsErrors(t *testing.T) {
	root := newCircuitFixture(t)
	store := newFakeConnectome()
	svc := newCircuitService(t, root, store)

	rpcErr := requireRPCCode(t, func() error {
		_, err := svc.AfferentGIDs(context.Background(), "proj/circ", []uint32{1})
		return err
	}(), errs.CodeUnexpected)
	assert.Contains(t, rpcErr.Text, "no connectome imported")

	_, err := svc.AfferentGIDs(context.Background(), "/etc", []uint32{1})
	requireRPCCode(t, err, errs.CodePathEscape)

	configPath := filepath.Join(root, "proj", "circ", "CircuitConfig")
	store.imported[configPath] = &repository.ConnectomeImport{CircuitPath: configPath}
	store.err = &pgconn.PgError{Code: "08006", Message: "connection lost"}
	_, err = svc.EfferentGIDs(context.Background(), "proj/circ", []uint32{1})
	requireRPCCode(t, err, errs.CodeUnexpected)
}

func TestTargetCacheDisabled(t *testing.T) {
	logger := zerolog.Nop()

	var nilCache *TargetCache
	assert.False(t, nilCache.enabled())
	assert.False(t, NewTargetCache(nil, time.Minute, &logger).enabled())

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	assert.False(t, NewTargetCache(client, 0, &logger).enabled())

	cache := NewTargetCache(nil, time.Minute, &logger)
	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)
	cache.Set(context.Background(), "k", nil)
}

func TestTargetCacheKey(t *testing.T) {
	cache := &TargetCache{}
	at := time.Unix(1700000000, 5)
	assert.Equal(t, "webbrayns:targets:/p/CircuitConfig@1700000000000000005", cache.Key("/p/CircuitConfig", at))
	assert.NotEqual(t, cache.Key("/p/CircuitConfig", at), cache.Key("/p/CircuitConfig", at.Add(time.Second)))
}

func TestTargetCacheRedisDown(t *testing.T) {
	logger := zerolog.Nop()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	root := newCircuitFixture(t)
	svc := NewCircuitService(sandbox.New(root), "CircuitConfig", NewTargetCache(client, time.Minute, &logger), newFakeConnectome(), &logger)

	names, err := svc.ListTargets(context.Background(), "proj/circ")
	require.NoError(t, err)
	assert.Len(t, names, 4)
}

// TestTargetCacheRedis needs a real Redis at WEBBRAYNS_TEST_REDIS_ADDR.
func TestTargetCacheRedis(t *testing.T) {
	addr := os.Getenv("WEBBRAYNS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WEBBRAYNS_TEST_REDIS_ADDR is not set")
	}

	logger := zerolog.Nop()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	root := newCircuitFixture(t)
	cache := NewTargetCache(client, time.Minute, &logger)
	svc := NewCircuitService(sandbox.New(root), "CircuitConfig", cache, newFakeConnectome(), &logger)

	_, err := svc.ListTargets(context.Background(), "proj/circ")
	require.NoError(t, err)

	keys, err := client.Keys(context.Background(), targetsKeyPrefix+filepath.Join(root, "proj", "circ", "CircuitConfig")+"@*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	t.Cleanup(func() { client.Del(context.Background(), keys...) })

	ts, ok := cache.Get(context.Background(), keys[0])
	require.True(t, ok)
	assert.Equal(t, []string{"L1", "L2", "Loop", "Mosaic"}, ts.Names())
}

func TestConnectomeImport(t *testing.T) {
	root := newCircuitFixture(t)
	store := newFakeConnectome()
	jobs := &fakeEnqueuer{}
	logger := zerolog.Nop()
	circuits := newCircuitService(t, root, store)
	svc := NewConnectomeService(circuits, store, jobs, &logger)

	writeTestFile(t, filepath.Join(root, "proj", "edges.csv"), "source,target\n1,3\n2,3\n")

	count, err := svc.ImportConnectome(context.Background(), "proj/circ", "proj/edges.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	ids, err := circuits.AfferentGIDs(context.Background(), "proj/circ", []uint32{3})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)

	ticket, err := svc.EnqueueImport(context.Background(), "proj/circ", "proj/edges.csv")
	require.NoError(t, err)
	assert.Equal(t, "task-1", ticket.TaskID)
	assert.Equal(t, filepath.Join(root, "proj", "circ", "CircuitConfig"), ticket.CircuitPath)
	assert.Equal(t, filepath.Join(root, "proj", "edges.csv"), ticket.File)
	require.Len(t, jobs.tasks, 1)
}

func TestConnectomeImportErrors(t *testing.T) {
	root := newCircuitFixture(t)
	store := newFakeConnectome()
	logger := zerolog.Nop()
	svc := NewConnectomeService(newCircuitService(t, root, store), store, &fakeEnqueuer{err: errors.New("redis down")}, &logger)

	writeTestFile(t, filepath.Join(root, "proj", "bad.csv"), "1,2\n0,4\n")
	writeTestFile(t, filepath.Join(root, "proj", "edges.csv"), "1,2\n")

	_, err := svc.ImportConnectome(context.Background(), "proj/circ", "proj/bad.csv")
	requireRPCCode(t, err, errs.CodeBadInput)

	_, err = svc.ImportConnectome(context.Background(), "proj/circ", "proj/missing.csv")
	requireRPCCode(t, err, errs.CodeNotAFile)

	_, err = svc.ImportConnectome(context.Background(), "proj/circ", "../../../edges.csv")
	requireRPCCode(t, err, errs.CodePathEscape)

	_, err = svc.EnqueueImport(context.Background(), "proj/circ", "proj/edges.csv")
	requireRPCCode(t, err, errs.CodeUnexpected)

	store.err = &pgconn.PgError{Code: "23514", TableName: "connectome_edges", ConstraintName: "connectome_edges_source_gid_check"}
	_, err = svc.ImportConnectome(context.Background(), "proj/circ", "proj/edges.csv")
	requireRPCCode(t, err, errs.CodeBadInput)
}
