// internal/repository/interfaces.go
package repository

import "usb-inventory-service/internal/model"

// SnapshotRepository defines persistence for the device snapshot list.
// Load never fails: storage problems surface as a single error-placeholder
// snapshot so the caller's pipeline keeps going.
type SnapshotRepository interface {
	Load() []*model.DeviceSnapshot
	Save(snapshots []*model.DeviceSnapshot) error
	Path() string
}
