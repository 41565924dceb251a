// internal/discovery/usb/scanner.go - USB scanner common surface
package usb

import (
	"go.uber.org/zap"
)

// Scanner implements discovery.DeviceScanner for USB devices. The scan
// path is selected at compile time: Windows builds enumerate Win32
// PnP entities, everything else walks descriptors through a native
// backend chain.
type Scanner struct {
	logger *zap.Logger
}

// NewScanner creates a new USB scanner
func NewScanner(logger *zap.Logger) *Scanner {
	return &Scanner{
		logger: logger.With(zap.String("scanner", "usb")),
	}
}

// GetScannerType returns scanner type identifier
func (s *Scanner) GetScannerType() string {
	return "usb"
}
