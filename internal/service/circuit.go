package service

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
	"github.com/deppfellow/webbrayns-backend/internal/lib/circuit"
	"github.com/deppfellow/webbrayns-backend/internal/repository"
	"github.com/deppfellow/webbrayns-backend/internal/sandbox"
	"github.com/deppfellow/webbrayns-backend/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ConnectomeStore is the part of the connectome repository the services use.
type ConnectomeStore interface {
	AfferentGIDs(ctx context.Context, circuitPath string, gids []uint32) ([]uint32, error)
	EfferentGIDs(ctx context.Context, circuitPath string, gids []uint32) ([]uint32, error)
	GetImport(ctx context.Context, circuitPath string) (*repository.ConnectomeImport, error)
	ReplaceEdges(ctx context.Context, circuitPath, sourceFile string, edges pgx.CopyFromSource) (int64, error)
}

// CircuitService answers target and connectivity queries. Every circuit
// path goes through the sandbox first.
type CircuitService struct {
	sandbox        *sandbox.Sandbox
	configFileName string
	cache          *TargetCache
	connectome     ConnectomeStore
	logger         *zerolog.Logger
}

func NewCircuitService(
	sb *sandbox.Sandbox,
	configFileName string,
	cache *TargetCache,
	connectome ConnectomeStore,
	logger *zerolog.Logger,
) *CircuitService {
	return &CircuitService{
		sandbox:        sb,
		configFileName: configFileName,
		cache:          cache,
		connectome:     connectome,
		logger:         logger,
	}
}

// open resolves circuitPath and parses its BlueConfig.
func (s *CircuitService) open(circuitPath string) (*circuit.Circuit, error) {
	abs, err := s.sandbox.Resolve(circuitPath)
	if err != nil {
		return nil, err
	}

	c, err := circuit.Open(abs, s.configFileName)
	if err != nil {
		return nil, errs.Unexpected(err)
	}
	return c, nil
}

// configPath resolves circuitPath to its BlueConfig without parsing it. It is
// the identity of the circuit in the connectome store.
func (s *CircuitService) configPath(circuitPath string) (string, error) {
	abs, err := s.sandbox.Resolve(circuitPath)
	if err != nil {
		return "", err
	}

	configPath, _, err := circuit.Locate(abs, s.configFileName)
	if err != nil {
		return "", errs.Unexpected(err)
	}
	return configPath, nil
}

// targets returns the target set of a circuit, from the cache when none of
// its files changed.
func (s *CircuitService) targets(ctx context.Context, circuitPath string) (*circuit.TargetSet, error) {
	c, err := s.open(circuitPath)
	if err != nil {
		return nil, err
	}

	version := c.ModTime
	for _, name := range c.TargetFiles() {
		info, err := os.Stat(name)
		if err != nil {
			return nil, errs.Unexpected(err)
		}
		if info.ModTime().After(version) {
			version = info.ModTime()
		}
	}

	key := s.cache.Key(c.ConfigPath, version)
	if ts, ok := s.cache.Get(ctx, key); ok {
		return ts, nil
	}

	start := time.Now()
	ts, err := c.Targets()
	if err != nil {
		return nil, errs.Unexpected(err)
	}
	requestLogger(ctx, s.logger).Debug().
		Str("circuit", c.ConfigPath).
		Int("targets", len(ts.Targets)).
		Dur("duration", time.Since(start)).
		Msg("parsed circuit targets")

	s.cache.Set(ctx, key, ts)
	return ts, nil
}

// ListTargets returns the target names of a circuit, sorted.
func (s *CircuitService) ListTargets(ctx context.Context, circuitPath string) ([]string, error) {
	ts, err := s.targets(ctx, circuitPath)
	if err != nil {
		return nil, err
	}
	return ts.Names(), nil
}

// ListGIDs returns the GIDs of every target in order, concatenated. A GID in
// two targets appears twice.
func (s *CircuitService) ListGIDs(ctx context.Context, circuitPath string, targets []string) ([]string, error) {
	ts, err := s.targets(ctx, circuitPath)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	for _, name := range targets {
		gids, err := ts.Resolve(name)
		if err != nil {
			return nil, errs.Unexpected(err)
		}
		ids = appendIDs(ids, gids)
	}
	return ids, nil
}

// AfferentGIDs returns the presynaptic cells of each GID, concatenated.
func (s *CircuitService) AfferentGIDs(ctx context.Context, circuitPath string, gids []uint32) ([]string, error) {
	return s.neighbours(ctx, circuitPath, gids, s.connectome.AfferentGIDs)
}

// EfferentGIDs returns the postsynaptic cells of each GID, concatenated.
func (s *CircuitService) EfferentGIDs(ctx context.Context, circuitPath string, gids []uint32) ([]string, error) {
	return s.neighbours(ctx, circuitPath, gids, s.connectome.EfferentGIDs)
}

func (s *CircuitService) neighbours(
	ctx context.Context,
	circuitPath string,
	gids []uint32,
	query func(context.Context, string, []uint32) ([]uint32, error),
) ([]string, error) {
	configPath, err := s.configPath(circuitPath)
	if err != nil {
		return nil, err
	}

	if _, err := s.connectome.GetImport(ctx, configPath); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.Unexpected(errors.New("no connectome imported for " + configPath))
		}
		return nil, sqlerr.HandleError(err)
	}

	found, err := query(ctx, configPath, gids)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return appendIDs([]string{}, found), nil
}

// appendIDs renders GIDs as decimal strings, the id format of the web client.
func appendIDs(ids []string, gids []uint32) []string {
	for _, gid := range gids {
		ids = append(ids, strconv.FormatUint(uint64(gid), 10))
	}
	return ids
}
