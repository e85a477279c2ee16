package social

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nextloc/nextloc-go/internal/dataset"
)

// GraphStore hands out one World per city. Each city's graph is built at
// most once per process; on disk the graph is cached as GML under the
// storage root and reused across restarts.
type GraphStore struct {
	dataDir      string
	storageRoot  string
	khop         int
	maxNeighbors int
	logger       *log.Logger

	mu      sync.Mutex
	entries map[string]*graphEntry
}

type graphEntry struct {
	once  sync.Once
	world *World
	err   error
}

func NewGraphStore(dataDir, storageRoot string, khop, maxNeighbors int, logger *log.Logger) *GraphStore {
	return &GraphStore{
		dataDir:      dataDir,
		storageRoot:  storageRoot,
		khop:         khop,
		maxNeighbors: maxNeighbors,
		logger:       logger,
		entries:      make(map[string]*graphEntry),
	}
}

// Get returns the city's World, building or loading the graph on first use.
// Concurrent callers for the same city share a single build.
func (s *GraphStore) Get(city string, ds *dataset.Dataset) (*World, error) {
	s.mu.Lock()
	e, ok := s.entries[city]
	if !ok {
		e = &graphEntry{}
		s.entries[city] = e
	}
	s.mu.Unlock()

	e.once.Do(func() {
		g, err := s.loadOrBuild(city, ds)
		if err != nil {
			e.err = err
			return
		}
		e.world = NewWorld(g, s.khop, s.maxNeighbors)
	})
	return e.world, e.err
}

func (s *GraphStore) loadOrBuild(city string, ds *dataset.Dataset) (*Graph, error) {
	path := filepath.Join(s.storageRoot, city+"_graph.gml")

	if g, err := ReadGML(path); err == nil {
		s.logger.Info("loaded transition graph", "city", city, "nodes", g.NodeCount(), "edges", g.EdgeCount())
		return g, nil
	} else if !os.IsNotExist(err) {
		s.logger.Warn("graph cache unreadable, rebuilding", "city", city, "err", err)
	}

	if ds == nil {
		loaded, err := dataset.Load(s.dataDir, city)
		if err != nil {
			return nil, fmt.Errorf("load dataset for graph build: %w", err)
		}
		ds = loaded
	}

	g := Build(ds)
	s.logger.Info("built transition graph", "city", city, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	if err := os.MkdirAll(s.storageRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	if err := g.WriteGML(path); err != nil {
		return nil, fmt.Errorf("persist graph: %w", err)
	}
	return g, nil
}
