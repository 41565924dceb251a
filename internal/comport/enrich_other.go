//go:build !windows && !linux

// internal/comport/enrich_other.go
package comport

import (
	"go.uber.org/zap"

	"usb-inventory-service/internal/model"
)

// enrichPorts is a no-op where no extra port metadata source exists; the
// base enumerator's VID/PID/serial is all we get.
func enrichPorts(_ *zap.Logger, _ []*model.ComPort) {}
