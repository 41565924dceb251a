//go:build !windows

// internal/discovery/usb/scanner_unix.go - backend-chain scan path
package usb

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"usb-inventory-service/internal/correlation"
	"usb-inventory-service/internal/model"
)

// IsAvailable checks if USB scanning is available on this system
func (s *Scanner) IsAvailable() bool {
	for _, b := range s.backends() {
		if b.available() {
			return true
		}
	}
	return false
}

// Scan walks the backend chain and returns the result of the first
// backend that can enumerate. With no usable backend the scan degrades
// to a single placeholder snapshot carrying the remediation message.
func (s *Scanner) Scan(ctx context.Context) ([]*model.DeviceSnapshot, error) {
	s.logger.Info("Starting USB device scan")

	for _, b := range s.backends() {
		snapshots, err := b.scan()
		if err != nil {
			s.logger.Warn("USB backend failed",
				zap.String("backend", b.name()),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("USB scan completed",
			zap.String("backend", b.name()),
			zap.Int("devices_found", len(snapshots)),
		)
		return snapshots, nil
	}

	return []*model.DeviceSnapshot{model.NewPlaceholder(msgNoBackend)}, errors.New(msgNoBackend)
}

// IsConnected is the light existence check: enumerate and compare VID/PID
// (and serial, when supplied) without keeping anything open.
func (s *Scanner) IsConnected(ctx context.Context, vid, pid, serial string) bool {
	targetVID := correlation.NormalizeHexID(vid)
	targetPID := correlation.NormalizeHexID(pid)
	targetSerial := correlation.NormalizeSerial(serial)

	for _, b := range s.backends() {
		snapshots, err := b.scan()
		if err != nil {
			continue
		}
		for _, snapshot := range snapshots {
			if snapshot.IsPlaceholder() {
				continue
			}
			if correlation.NormalizeHexID(snapshot.VID) != targetVID ||
				correlation.NormalizeHexID(snapshot.PID) != targetPID {
				continue
			}
			if targetSerial != "" &&
				correlation.NormalizeSerial(snapshot.Serial) != targetSerial {
				continue
			}
			return true
		}
		return false
	}
	return false
}
