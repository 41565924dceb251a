// internal/discovery/ble/scanner.go - BLE advertisement scanner
package ble

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"usb-inventory-service/internal/model"
)

// DefaultScanTimeout bounds one advertisement collection window.
const DefaultScanTimeout = 10 * time.Second

// Advertisement is one observed BLE advertiser, deduplicated by address.
type Advertisement struct {
	Address string
	Name    string
	RSSI    int
	UUIDs   []string
}

// Adapter abstracts the radio so the snapshot mapping can be tested
// without Bluetooth hardware.
type Adapter interface {
	Enable() error
	Scan(ctx context.Context, timeout time.Duration) ([]Advertisement, error)
}

// Scanner implements discovery.DeviceScanner over a BLE adapter.
type Scanner struct {
	logger  *zap.Logger
	adapter Adapter
	timeout time.Duration
}

// NewScanner creates a new BLE scanner. A nil adapter produces a scanner
// that reports itself unavailable.
func NewScanner(logger *zap.Logger, adapter Adapter, timeout time.Duration) *Scanner {
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	return &Scanner{
		logger:  logger.With(zap.String("scanner", "ble")),
		adapter: adapter,
		timeout: timeout,
	}
}

// GetScannerType returns scanner type identifier
func (s *Scanner) GetScannerType() string {
	return "ble"
}

// IsAvailable checks whether a Bluetooth adapter can be enabled.
func (s *Scanner) IsAvailable() bool {
	if s.adapter == nil {
		return false
	}
	if err := s.adapter.Enable(); err != nil {
		s.logger.Debug("Bluetooth adapter unavailable", zap.Error(err))
		return false
	}
	return true
}

// Scan collects advertisements for one timeout window and maps them to
// snapshots. BLE failures yield an empty list plus the diagnostic; there
// is no placeholder snapshot for BLE.
func (s *Scanner) Scan(ctx context.Context) ([]*model.DeviceSnapshot, error) {
	if s.adapter == nil {
		return []*model.DeviceSnapshot{}, errors.New("Bluetooth adapter not available")
	}

	s.logger.Info("Starting BLE scan", zap.Duration("timeout", s.timeout))
	if err := s.adapter.Enable(); err != nil {
		return []*model.DeviceSnapshot{}, errors.New("Bluetooth adapter not available: " + err.Error())
	}

	advertisements, err := s.adapter.Scan(ctx, s.timeout)
	if err != nil {
		return []*model.DeviceSnapshot{}, errors.New("BLE scan failed: " + err.Error())
	}

	snapshots := make([]*model.DeviceSnapshot, 0, len(advertisements))
	for _, adv := range advertisements {
		snapshots = append(snapshots, snapshotFromAdvertisement(adv))
	}

	s.logger.Info("BLE scan completed", zap.Int("devices_found", len(snapshots)))
	return snapshots, nil
}

// snapshotFromAdvertisement maps one advertiser to the shared snapshot
// shape. BLE snapshots carry no USB identifiers.
func snapshotFromAdvertisement(adv Advertisement) *model.DeviceSnapshot {
	rssi := adv.RSSI
	return &model.DeviceSnapshot{
		VID:        model.ValueNone,
		PID:        model.ValueNone,
		DeviceType: model.DeviceTypeBLE,
		ClassGuess: "BLE",
		BLEAddress: adv.Address,
		BLEName:    adv.Name,
		BLERSSI:    &rssi,
		BLEUUIDs:   append([]string(nil), adv.UUIDs...),
	}
}
