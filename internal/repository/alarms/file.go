package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// FileRepository persists the alarm collection to a JSON document on disk.
// The document maps StorageKey to the serialized alarm slice so the file
// stays a plain key-value namespace.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the collection from disk. A missing file or an unreadable
// payload yields an empty collection.
func (r *FileRepository) Load(ctx context.Context) ([]*alarm.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var document map[string]json.RawMessage
	if err = json.Unmarshal(contents, &document); err != nil {
		logger.WarnKV(ctx, "Ignoring malformed alarm state file", "path", r.path, "error", err)

		return nil, nil
	}

	return decodeAlarms(ctx, document[StorageKey]), nil
}

// Save writes the collection to disk.
func (r *FileRepository) Save(_ context.Context, alarms []*alarm.Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := json.Marshal(alarms)
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	document, err := json.Marshal(map[string]json.RawMessage{
		StorageKey: payload,
	})
	if err != nil {
		return fmt.Errorf("encode state document: %w", err)
	}

	if err = os.WriteFile(r.path, document, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}
