//go:build !windows

package usb

import (
	"go.uber.org/zap"

	"usb-inventory-service/internal/model"
)

// AnnotateTopology is a no-op where WMI is unavailable; absence of
// topology data is a normal unknown, not an error.
func AnnotateTopology(_ *zap.Logger, _ []*model.DeviceSnapshot) {}
