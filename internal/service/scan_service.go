// internal/service/scan_service.go - scan orchestration
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"usb-inventory-service/internal/discovery"
	"usb-inventory-service/internal/discovery/usb"
	"usb-inventory-service/internal/model"
	"usb-inventory-service/internal/repository"
	"usb-inventory-service/internal/utils"
)

// MsgNoDevicesFound is the placeholder message for a clean scan that saw
// nothing at all.
const MsgNoDevicesFound = "no USB or BLE devices were found"

// EventPublisher receives scan lifecycle events. The WebSocket event bus
// implements it; a nil publisher disables publication.
type EventPublisher interface {
	Publish(event model.Event)
}

// ScanService coordinates scanning, topology annotation, persistence and
// change events. One refresh runs at a time; concurrent callers queue.
type ScanService struct {
	logger    *zap.Logger
	scanners  *discovery.ScannerManager
	repo      repository.SnapshotRepository
	publisher EventPublisher

	mu sync.Mutex
}

// NewScanService creates the scan orchestrator.
func NewScanService(
	logger *zap.Logger,
	scanners *discovery.ScannerManager,
	repo repository.SnapshotRepository,
	publisher EventPublisher,
) *ScanService {
	return &ScanService{
		logger:    logger.With(zap.String("service", "scan")),
		scanners:  scanners,
		repo:      repo,
		publisher: publisher,
	}
}

// Refresh runs one scan pass: scan, substitute a placeholder for an empty
// result, annotate topology, persist, publish change events. The scan
// error (if any) is returned alongside the snapshots, not instead of them.
func (s *ScanService) Refresh(ctx context.Context, scanType string) ([]*model.DeviceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.repo.Load()
	scanLog := utils.NewScanLogger(s.logger, scanType)
	started := time.Now()
	scanLog.Start()
	s.publish(model.EventScanStarted, map[string]interface{}{"scan_type": scanType})

	var (
		snapshots []*model.DeviceSnapshot
		scanErr   error
	)
	if scanType == "" || scanType == "all" {
		snapshots, scanErr = s.scanners.ScanAll(ctx)
	} else {
		snapshots, scanErr = s.scanners.ScanByType(ctx, scanType)
	}
	if scanErr != nil {
		scanLog.Failed(scanErr)
	}

	if len(snapshots) == 0 {
		message := MsgNoDevicesFound
		if scanErr != nil {
			message = scanErr.Error()
		}
		snapshots = []*model.DeviceSnapshot{model.NewPlaceholder(message)}
	}

	usb.AnnotateTopology(s.logger, usbSubset(snapshots))

	if err := s.repo.Save(snapshots); err != nil {
		// persisting is best-effort; the scan result is still valid
		s.logger.Error("Failed to persist snapshots", zap.Error(err))
	}

	added, removed := diffSnapshots(previous, snapshots)
	for _, snapshot := range added {
		s.publish(model.EventDeviceAdded, deviceEventData(snapshot))
	}
	for _, snapshot := range removed {
		s.publish(model.EventDeviceRemoved, deviceEventData(snapshot))
	}

	completed := map[string]interface{}{
		"scan_type":     scanType,
		"devices_found": len(snapshots),
		"added":         len(added),
		"removed":       len(removed),
	}
	if scanErr != nil {
		completed["error"] = scanErr.Error()
	}
	s.publish(model.EventScanCompleted, completed)

	scanLog.Completed(len(snapshots), time.Since(started),
		zap.Int("added", len(added)),
		zap.Int("removed", len(removed)),
	)
	return snapshots, scanErr
}

// Load returns the persisted snapshot list without scanning.
func (s *ScanService) Load() []*model.DeviceSnapshot {
	return s.repo.Load()
}

// AvailableScanners lists the scanner types usable on this host.
func (s *ScanService) AvailableScanners() []string {
	return s.scanners.GetAvailableScanners()
}

func (s *ScanService) publish(eventType model.EventType, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(model.NewEvent(eventType, "scan-service", data))
}

func usbSubset(snapshots []*model.DeviceSnapshot) []*model.DeviceSnapshot {
	var subset []*model.DeviceSnapshot
	for _, snapshot := range snapshots {
		if snapshot.DeviceType == model.DeviceTypeUSB && !snapshot.IsPlaceholder() {
			subset = append(subset, snapshot)
		}
	}
	return subset
}

// diffSnapshots compares two passes by Key()+Identity(). Placeholders
// never participate in the diff.
func diffSnapshots(previous, current []*model.DeviceSnapshot) (added, removed []*model.DeviceSnapshot) {
	index := func(snapshots []*model.DeviceSnapshot) map[string]*model.DeviceSnapshot {
		m := make(map[string]*model.DeviceSnapshot, len(snapshots))
		for _, snapshot := range snapshots {
			if snapshot.IsPlaceholder() {
				continue
			}
			m[snapshot.Key()+"|"+snapshot.Identity()] = snapshot
		}
		return m
	}

	prevIndex := index(previous)
	currIndex := index(current)

	for _, snapshot := range current {
		if snapshot.IsPlaceholder() {
			continue
		}
		if _, ok := prevIndex[snapshot.Key()+"|"+snapshot.Identity()]; !ok {
			added = append(added, snapshot)
		}
	}
	for _, snapshot := range previous {
		if snapshot.IsPlaceholder() {
			continue
		}
		if _, ok := currIndex[snapshot.Key()+"|"+snapshot.Identity()]; !ok {
			removed = append(removed, snapshot)
		}
	}
	return added, removed
}

func deviceEventData(snapshot *model.DeviceSnapshot) map[string]interface{} {
	return map[string]interface{}{
		"key":         snapshot.Key(),
		"identity":    snapshot.Identity(),
		"device_type": string(snapshot.DeviceType),
		"product":     snapshot.Product,
	}
}
