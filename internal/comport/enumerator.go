// internal/comport/enumerator.go
package comport

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"usb-inventory-service/internal/correlation"
	"usb-inventory-service/internal/model"
)

// Enumerator lists the live serial/COM ports with best-effort USB
// metadata. The most recent enumeration is cached process-wide; Cached
// supports an explicit forced-refresh bypass.
type Enumerator struct {
	logger *zap.Logger

	mu    sync.RWMutex
	cache []*model.ComPort
}

// NewEnumerator creates a serial port enumerator.
func NewEnumerator(logger *zap.Logger) *Enumerator {
	return &Enumerator{
		logger: logger.With(zap.String("component", "comport")),
	}
}

// List enumerates the current serial ports and refreshes the cache.
func (e *Enumerator) List() ([]*model.ComPort, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	ports := make([]*model.ComPort, 0, len(details))
	for _, detail := range details {
		port := &model.ComPort{
			Name:         detail.Name,
			VID:          strings.ToLower(detail.VID),
			PID:          strings.ToLower(detail.PID),
			SerialNumber: detail.SerialNumber,
			Product:      detail.Product,
			IsUSB:        detail.IsUSB,
		}
		ports = append(ports, port)
	}

	enrichPorts(e.logger, ports)

	// The classifier always needs hwid text to work with; synthesize one
	// in pyserial style when the platform enumerator has none.
	for _, port := range ports {
		if port.HWID == "" {
			port.HWID = synthesizeHWID(port)
		}
	}

	e.mu.Lock()
	e.cache = ports
	e.mu.Unlock()

	e.logger.Debug("Serial ports enumerated", zap.Int("ports", len(ports)))
	return ports, nil
}

// Cached returns the last enumeration, refreshing when forced or when no
// enumeration has happened yet.
func (e *Enumerator) Cached(forceRefresh bool) ([]*model.ComPort, error) {
	if !forceRefresh {
		e.mu.RLock()
		cached := e.cache
		e.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
	}
	return e.List()
}

// Filter narrows a port list by normalized VID/PID/serial. Empty arguments
// match everything.
func Filter(ports []*model.ComPort, vid, pid, serial string) []*model.ComPort {
	targetVID := correlation.NormalizeHexID(vid)
	targetPID := correlation.NormalizeHexID(pid)
	targetSerial := correlation.NormalizeSerial(serial)

	var results []*model.ComPort
	for _, port := range ports {
		if targetVID != "" && correlation.NormalizeHexID(port.VID) != targetVID {
			continue
		}
		if targetPID != "" && correlation.NormalizeHexID(port.PID) != targetPID {
			continue
		}
		if targetSerial != "" && correlation.NormalizeSerial(port.SerialNumber) != targetSerial {
			continue
		}
		results = append(results, port)
	}
	return results
}

// FormatPortName normalizes a port name for the host OS.
func FormatPortName(name string) string {
	if name == "" {
		return ""
	}
	if runtime.GOOS == "windows" {
		return strings.ToUpper(name)
	}
	return name
}

// IsPortConnected reports whether a port with the given name currently
// exists.
func (e *Enumerator) IsPortConnected(name string) bool {
	if name == "" {
		return false
	}
	ports, err := e.List()
	if err != nil {
		return false
	}
	target := FormatPortName(name)
	for _, port := range ports {
		if FormatPortName(port.Name) == target {
			return true
		}
	}
	return false
}

func synthesizeHWID(port *model.ComPort) string {
	if !port.IsUSB && port.VID == "" && port.PID == "" {
		return ""
	}
	hwid := fmt.Sprintf("USB VID:PID=%s:%s", port.VID, port.PID)
	if port.SerialNumber != "" {
		hwid += " SER=" + port.SerialNumber
	}
	if port.Location != "" {
		hwid += " LOCATION=" + port.Location
	}
	return hwid
}
