// internal/discovery/scanner.go - Main Scanner Interface
package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"usb-inventory-service/internal/model"
)

// DeviceScanner interface - Strategy Pattern. Scan returns the snapshots
// it could produce plus an optional diagnostic error; both may be non-nil
// at once (placeholder snapshot + its message).
type DeviceScanner interface {
	Scan(ctx context.Context) ([]*model.DeviceSnapshot, error)
	GetScannerType() string
	IsAvailable() bool
}

// ScannerManager manages all device scanners - Facade Pattern
type ScannerManager struct {
	scanners map[string]DeviceScanner
	order    []string
	logger   *zap.Logger
}

// NewScannerManager creates a new scanner manager
func NewScannerManager(logger *zap.Logger) *ScannerManager {
	return &ScannerManager{
		scanners: make(map[string]DeviceScanner),
		logger:   logger,
	}
}

// RegisterScanner registers a device scanner
func (sm *ScannerManager) RegisterScanner(scanner DeviceScanner) {
	scannerType := scanner.GetScannerType()
	if _, exists := sm.scanners[scannerType]; !exists {
		sm.order = append(sm.order, scannerType)
	}
	sm.scanners[scannerType] = scanner
	sm.logger.Info("Scanner registered", zap.String("type", scannerType))
}

// ScanAll runs every registered scanner in registration order. Individual
// scanner failures never abort the pass; their diagnostics are combined
// into a single error of the form "USB: <e1> / BLE: <e2>". Unavailable
// scanners are still scanned so the capability they are missing shows up
// in the combined error rather than vanishing from the pass.
func (sm *ScannerManager) ScanAll(ctx context.Context) ([]*model.DeviceSnapshot, error) {
	var allSnapshots []*model.DeviceSnapshot
	var failures []string

	for _, scannerType := range sm.order {
		scanner := sm.scanners[scannerType]
		available := scanner.IsAvailable()
		if !available {
			sm.logger.Warn("Scanner not available", zap.String("type", scannerType))
		}

		snapshots, err := scanner.Scan(ctx)
		allSnapshots = append(allSnapshots, snapshots...)
		if err == nil && !available {
			err = errors.New("not available")
		}
		if err != nil {
			sm.logger.Warn("Scanner reported a problem",
				zap.String("type", scannerType),
				zap.Error(err),
			)
			failures = append(failures, fmt.Sprintf("%s: %s", strings.ToUpper(scannerType), err.Error()))
			continue
		}

		sm.logger.Info("Scanner completed",
			zap.String("type", scannerType),
			zap.Int("devices_found", len(snapshots)),
		)
	}

	return allSnapshots, combineErrors(failures)
}

// ScanByType scans specific scanner type
func (sm *ScannerManager) ScanByType(ctx context.Context, scannerType string) ([]*model.DeviceSnapshot, error) {
	scanner, exists := sm.scanners[scannerType]
	if !exists {
		return nil, fmt.Errorf("scanner type not found: %s", scannerType)
	}

	if !scanner.IsAvailable() {
		return nil, fmt.Errorf("scanner not available: %s", scannerType)
	}

	return scanner.Scan(ctx)
}

// GetAvailableScanners returns list of available scanner types
func (sm *ScannerManager) GetAvailableScanners() []string {
	var available []string
	for _, scannerType := range sm.order {
		if sm.scanners[scannerType].IsAvailable() {
			available = append(available, scannerType)
		}
	}
	return available
}

func combineErrors(failures []string) error {
	if len(failures) == 0 {
		return nil
	}
	return errors.New(strings.Join(failures, " / "))
}
