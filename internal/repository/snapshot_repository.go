// internal/repository/snapshot_repository.go
package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"usb-inventory-service/internal/model"
)

// Load placeholder messages; these are part of the persistence contract
// and are matched by the store health check.
const (
	MsgStoreMissing    = "device info does not exist"
	MsgStoreLoadFailed = "failed to load device info"
	MsgStoreEmpty      = "device info is empty"
)

// JSONSnapshotRepository persists the snapshot list as a JSON array file.
type JSONSnapshotRepository struct {
	path   string
	logger *zap.Logger
}

// NewJSONSnapshotRepository creates a repository backed by the given file.
func NewJSONSnapshotRepository(path string, logger *zap.Logger) *JSONSnapshotRepository {
	return &JSONSnapshotRepository{
		path:   path,
		logger: logger.With(zap.String("component", "snapshot-repository")),
	}
}

// Path returns the backing file path.
func (r *JSONSnapshotRepository) Path() string {
	return r.path
}

// Load reads the persisted snapshot list. A missing, unreadable, malformed
// or empty store yields a single placeholder snapshot instead of an error.
// An array entry with a wrong-typed field fails the whole load; entries
// that are objects with missing fields load with zero values.
func (r *JSONSnapshotRepository) Load() []*model.DeviceSnapshot {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*model.DeviceSnapshot{model.NewPlaceholder(MsgStoreMissing)}
		}
		r.logger.Warn("Failed to read snapshot store", zap.Error(err), zap.String("path", r.path))
		return []*model.DeviceSnapshot{model.NewPlaceholder(MsgStoreLoadFailed)}
	}

	var snapshots []*model.DeviceSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		// A single object store is wrapped as a one-element list.
		var single model.DeviceSnapshot
		if objErr := json.Unmarshal(data, &single); objErr == nil {
			return []*model.DeviceSnapshot{&single}
		}
		r.logger.Warn("Failed to decode snapshot store", zap.Error(err), zap.String("path", r.path))
		return []*model.DeviceSnapshot{model.NewPlaceholder(MsgStoreLoadFailed)}
	}
	if len(snapshots) == 0 {
		return []*model.DeviceSnapshot{model.NewPlaceholder(MsgStoreEmpty)}
	}
	return snapshots
}

// Save serializes the snapshot list and overwrites the store atomically.
// Failures are logged; callers continue with the in-memory snapshots.
func (r *JSONSnapshotRepository) Save(snapshots []*model.DeviceSnapshot) error {
	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		r.logger.Error("Failed to encode snapshots", zap.Error(err))
		return fmt.Errorf("failed to encode snapshots: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logger.Error("Failed to create snapshot directory", zap.Error(err), zap.String("dir", dir))
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshots-*.json")
	if err != nil {
		r.logger.Error("Failed to create snapshot temp file", zap.Error(err))
		return fmt.Errorf("failed to create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		r.logger.Error("Failed to write snapshot store", zap.Error(err), zap.String("path", r.path))
		return fmt.Errorf("failed to write snapshot store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		r.logger.Error("Failed to replace snapshot store", zap.Error(err), zap.String("path", r.path))
		return fmt.Errorf("failed to replace snapshot store: %w", err)
	}

	r.logger.Debug("Snapshot store saved",
		zap.Int("snapshots", len(snapshots)),
		zap.String("path", r.path),
	)
	return nil
}
