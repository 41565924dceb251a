//go:build windows

// internal/discovery/usb/scanner_windows.go - WMI-backed scan path
package usb

import (
	"context"
	"errors"

	"github.com/yusufpapurcu/wmi"
	"go.uber.org/zap"

	"usb-inventory-service/internal/correlation"
	"usb-inventory-service/internal/model"
)

const (
	msgWMIQueryFailed = "failed to query USB devices through WMI; check that the " +
		"Winmgmt service is running and the process has sufficient privileges"
	msgWMINoDevices = "WMI reports no USB-rooted devices; check USB connections"
	msgWMIEmptyList = "WMI is reachable but returned no PnP entities; check the " +
		"Winmgmt service state and process privileges"
)

// win32PnPEntity binds the Win32_PnPEntity columns the scanner consumes.
// Columns are NULL-able, so every field is a pointer.
type win32PnPEntity struct {
	DeviceID            *string
	Name                *string
	Caption             *string
	Description         *string
	Manufacturer        *string
	PNPClass            *string
	ClassGuid           *string
	Service             *string
	Status              *string
	LocationInformation *string
	Present             *bool
}

const pnpEntityQuery = "SELECT DeviceID, Name, Caption, Description, Manufacturer, " +
	"PNPClass, ClassGuid, Service, Status, LocationInformation, Present FROM Win32_PnPEntity"

// IsAvailable checks if USB scanning is available on this system
func (s *Scanner) IsAvailable() bool {
	return true
}

// Scan enumerates USB-rooted PnP entities. Zero qualifying rows is not a
// fatal condition: it returns an empty list plus a diagnostic. A failed
// WMI query degrades to a single placeholder snapshot.
func (s *Scanner) Scan(ctx context.Context) ([]*model.DeviceSnapshot, error) {
	s.logger.Info("Starting USB device scan")

	rows, err := queryPnPEntities()
	if err != nil {
		s.logger.Error("WMI query failed", zap.Error(err))
		return []*model.DeviceSnapshot{model.NewPlaceholder(msgWMIQueryFailed)}, errors.New(msgWMIQueryFailed)
	}
	if len(rows) == 0 {
		return []*model.DeviceSnapshot{}, errors.New(msgWMIEmptyList)
	}

	var snapshots []*model.DeviceSnapshot
	for _, row := range rows {
		snapshot := snapshotFromPnPEntity(row)
		if snapshot == nil {
			continue
		}
		snapshots = append(snapshots, snapshot)
	}

	if len(snapshots) == 0 {
		return []*model.DeviceSnapshot{}, errors.New(msgWMINoDevices)
	}

	s.logger.Info("USB scan completed", zap.Int("devices_found", len(snapshots)))
	return snapshots, nil
}

// IsConnected is the light existence check: no descriptor walk, only
// VID/PID (and serial, when supplied) comparison over PnP entities.
func (s *Scanner) IsConnected(ctx context.Context, vid, pid, serial string) bool {
	rows, err := queryPnPEntities()
	if err != nil {
		return false
	}

	targetVID := correlation.NormalizeHexID(vid)
	targetPID := correlation.NormalizeHexID(pid)
	targetSerial := correlation.NormalizeSerial(serial)

	for _, row := range rows {
		deviceID := stringValue(row.DeviceID)
		if !isUSBRooted(deviceID) {
			continue
		}
		devVID, devPID := ParseVidPid(deviceID)
		if correlation.NormalizeHexID(devVID) != targetVID ||
			correlation.NormalizeHexID(devPID) != targetPID {
			continue
		}
		if targetSerial != "" &&
			correlation.NormalizeSerial(ParseSerialTail(deviceID)) != targetSerial {
			continue
		}
		return true
	}
	return false
}

func queryPnPEntities() ([]win32PnPEntity, error) {
	var rows []win32PnPEntity
	if err := wmi.Query(pnpEntityQuery, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// snapshotFromPnPEntity builds a snapshot from one PnP row, or nil when
// the row is not a USB device with a parseable VID/PID.
func snapshotFromPnPEntity(row win32PnPEntity) *model.DeviceSnapshot {
	deviceID := stringValue(row.DeviceID)
	if !isUSBRooted(deviceID) {
		return nil
	}
	vid, pid := ParseVidPid(deviceID)
	if vid == "" || pid == "" {
		return nil
	}

	manufacturer := stringValue(row.Manufacturer)
	if manufacturer == "" {
		manufacturer = model.ValueUnavailable
	}
	product := stringValue(row.Name)
	if product == "" {
		product = stringValue(row.Caption)
	}
	if product == "" {
		product = model.ValueUnavailable
	}
	classGuess := stringValue(row.PNPClass)
	if classGuess == "" {
		classGuess = stringValue(row.ClassGuid)
	}
	if classGuess == "" {
		classGuess = model.ValueNone
	}

	descriptor := map[string]interface{}{
		"pnp_device_id": deviceID,
		"description":   stringValue(row.Description),
		"service":       stringValue(row.Service),
		"status":        stringValue(row.Status),
	}
	if row.Present != nil {
		descriptor["present"] = *row.Present
	}

	return &model.DeviceSnapshot{
		VID:                 "0x" + correlation.NormalizeHexID(vid),
		PID:                 "0x" + correlation.NormalizeHexID(pid),
		DeviceType:          model.DeviceTypeUSB,
		Manufacturer:        manufacturer,
		Product:             product,
		Serial:              ParseSerialTail(deviceID),
		DeviceDescriptor:    descriptor,
		ClassGuess:          classGuess,
		LocationInformation: stringValue(row.LocationInformation),
	}
}
