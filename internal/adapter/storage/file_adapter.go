package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/rl1809/botshop/internal/port"
)

// FileAdapter stores each collection as data_dir/<name>.json, the layout the
// bot has always used. Versions live in memory, so optimistic locking only
// covers writers inside this process.
type FileAdapter struct {
	dir    string
	logger *zap.Logger

	mu       sync.Mutex
	versions map[string]int64
}

func NewFileAdapter(dir string, logger *zap.Logger) (*FileAdapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileAdapter{dir: dir, logger: logger, versions: map[string]int64{}}, nil
}

func (f *FileAdapter) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f *FileAdapter) Load(ctx context.Context, name string) (port.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		if err := f.write(name, map[string]json.RawMessage{}); err != nil {
			return port.Snapshot{}, err
		}
		return port.Snapshot{Records: map[string]json.RawMessage{}, Version: f.versions[name]}, nil
	}
	if err != nil {
		return port.Snapshot{}, fmt.Errorf("read collection: %w", err)
	}

	return port.Snapshot{Records: decodePayload(f.logger, name, payload), Version: f.versions[name]}, nil
}

func (f *FileAdapter) Save(ctx context.Context, name string, records map[string]json.RawMessage, version int64) error {
	return f.SaveAll(ctx, []port.Write{{Name: name, Records: records, Version: version}})
}

// SaveAll writes collections one file at a time in the given order. A
// failure part way leaves earlier files written.
func (f *FileAdapter) SaveAll(ctx context.Context, writes []port.Write) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, w := range writes {
		if f.versions[w.Name] != w.Version {
			return ErrOptimisticLock
		}
	}
	for _, w := range writes {
		if err := f.write(w.Name, w.Records); err != nil {
			return err
		}
		f.versions[w.Name]++
	}
	return nil
}

func (f *FileAdapter) write(name string, records map[string]json.RawMessage) error {
	if records == nil {
		records = map[string]json.RawMessage{}
	}
	payload, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), f.path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
