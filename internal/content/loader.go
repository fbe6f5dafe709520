package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jwebster45206/canadian-trail/pkg/events"
	"github.com/jwebster45206/canadian-trail/pkg/state"
	"github.com/jwebster45206/canadian-trail/pkg/world"
)

const (
	SkeletonFile = "world.json"
	LegacyFile   = "nodes.json"
	EventsFile   = "events.json"
)

// Loader reads game content from a data directory. Each file is parsed once
// and cached until Reset.
type Loader struct {
	dataDir string
	logger  *slog.Logger

	mu       sync.Mutex
	skeleton *world.Skeleton
	legacy   *world.Graph
	library  *events.Library
}

var (
	_ state.SkeletonLoader    = (*Loader)(nil)
	_ state.LegacyGraphLoader = (*Loader)(nil)
	_ events.Loader           = (*Loader)(nil)
)

func NewLoader(dataDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dataDir: dataDir, logger: logger}
}

// DataDir returns the directory content is read from.
func (l *Loader) DataDir() string {
	return l.dataDir
}

// Reset drops cached content so the next load rereads the files.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.skeleton, l.legacy, l.library = nil, nil, nil
}

func (l *Loader) readJSON(name string, v any) error {
	path := filepath.Join(l.dataDir, name)
	l.logger.Debug("Loading content file", "path", path)

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Error("Content file not found", "path", path)
			return fmt.Errorf("content not found: %s", name)
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(file, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return nil
}

// LoadSkeleton returns the checkpoint skeleton from world.json.
func (l *Loader) LoadSkeleton(ctx context.Context) (*world.Skeleton, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.skeleton != nil {
		return l.skeleton, nil
	}
	var sk world.Skeleton
	if err := l.readJSON(SkeletonFile, &sk); err != nil {
		return nil, err
	}
	if err := sk.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", SkeletonFile, err)
	}
	l.skeleton = &sk
	l.logger.Info("Loaded world skeleton", "checkpoints", len(sk.Checkpoints), "version", sk.Version())
	return l.skeleton, nil
}

// LoadLegacyGraph returns the static graph from nodes.json.
func (l *Loader) LoadLegacyGraph(ctx context.Context) (*world.Graph, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.legacy != nil {
		return l.legacy, nil
	}
	var data world.LegacyData
	if err := l.readJSON(LegacyFile, &data); err != nil {
		return nil, err
	}
	g, err := world.FromLegacy(&data)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", LegacyFile, err)
	}
	l.legacy = g
	l.logger.Info("Loaded legacy graph", "nodes", len(data.Nodes))
	return l.legacy, nil
}

// LoadEvents returns the event library from events.json.
func (l *Loader) LoadEvents(ctx context.Context) (*events.Library, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.library != nil {
		return l.library, nil
	}
	var lib events.Library
	if err := l.readJSON(EventsFile, &lib); err != nil {
		return nil, err
	}
	l.library = &lib
	l.logger.Info("Loaded event library", "events", len(lib.Events))
	return l.library, nil
}
