//go:build windows

// internal/discovery/usb/topology_windows.go - hub/port topology via WMI
package usb

import (
	"github.com/yusufpapurcu/wmi"
	"go.uber.org/zap"

	"usb-inventory-service/internal/correlation"
	"usb-inventory-service/internal/model"
)

// win32USBControllerDevice relates a USB device to its host controller.
// Both endpoints arrive as WMI object paths with an embedded DeviceID.
type win32USBControllerDevice struct {
	Antecedent string
	Dependent  string
}

type win32USBController struct {
	DeviceID *string
	Name     *string
}

// AnnotateTopology augments USB snapshots with hub/port chain, raw
// location string and owning host controllers. Topology that cannot be
// resolved stays absent; resolution failures never fail the scan.
func AnnotateTopology(logger *zap.Logger, snapshots []*model.DeviceSnapshot) {
	if len(snapshots) == 0 {
		return
	}

	mapping, err := buildTopologyMapping()
	if err != nil {
		logger.Warn("USB topology resolution failed", zap.Error(err))
		return
	}
	if len(mapping) == 0 {
		return
	}

	for _, snapshot := range snapshots {
		if snapshot.DeviceType != model.DeviceTypeUSB || snapshot.IsPlaceholder() {
			continue
		}
		withSerial := snapshotTopologyKey(snapshot, true)
		entry, ok := mapping[withSerial]
		if !ok {
			entry, ok = mapping[snapshotTopologyKey(snapshot, false)]
		}
		if !ok {
			continue
		}
		snapshot.TopologyChain = entry.chain
		snapshot.LocationInformation = entry.locationInfo
		snapshot.LocationFallback = ""
		snapshot.USBControllers = entry.controllers
	}
}

// buildTopologyMapping runs the three WMI queries, resolves controller
// names per entity and hands the rows to buildTopologyIndex.
func buildTopologyMapping() (map[topologyKey]*topologyEntry, error) {
	deviceToControllers, err := mapEntityToControllers()
	if err != nil {
		return nil, err
	}
	controllerNames, err := queryControllerNames()
	if err != nil {
		return nil, err
	}
	entities, err := queryPnPEntities()
	if err != nil {
		return nil, err
	}

	rows := make([]pnpTopologyRow, 0, len(entities))
	for _, dev := range entities {
		deviceID := stringValue(dev.DeviceID)
		if deviceID == "" {
			continue
		}

		var controllers []string
		for _, ctrlID := range deviceToControllers[deviceID] {
			name, ok := controllerNames[ctrlID]
			if !ok {
				name = ctrlID
			}
			controllers = append(controllers, name)
		}

		rows = append(rows, pnpTopologyRow{
			DeviceID:     deviceID,
			LocationInfo: stringValue(dev.LocationInformation),
			Controllers:  controllers,
		})
	}
	return buildTopologyIndex(rows), nil
}

func mapEntityToControllers() (map[string][]string, error) {
	var relations []win32USBControllerDevice
	query := "SELECT Antecedent, Dependent FROM Win32_USBControllerDevice"
	if err := wmi.Query(query, &relations); err != nil {
		return nil, err
	}

	deviceToControllers := make(map[string][]string)
	for _, rel := range relations {
		deviceID := ExtractDeviceID(rel.Dependent)
		controllerID := ExtractDeviceID(rel.Antecedent)
		if deviceID == "" || controllerID == "" {
			continue
		}
		deviceToControllers[deviceID] = append(deviceToControllers[deviceID], controllerID)
	}
	return deviceToControllers, nil
}

func queryControllerNames() (map[string]string, error) {
	var controllers []win32USBController
	query := "SELECT DeviceID, Name FROM Win32_USBController"
	if err := wmi.Query(query, &controllers); err != nil {
		return nil, err
	}

	names := make(map[string]string)
	for _, ctrl := range controllers {
		deviceID := stringValue(ctrl.DeviceID)
		if deviceID == "" {
			continue
		}
		name := stringValue(ctrl.Name)
		if name == "" {
			name = deviceID
		}
		names[deviceID] = name
	}
	return names, nil
}

func snapshotTopologyKey(snapshot *model.DeviceSnapshot, includeSerial bool) topologyKey {
	key := topologyKey{
		vid: correlation.NormalizeHexID(snapshot.VID),
		pid: correlation.NormalizeHexID(snapshot.PID),
	}
	if includeSerial {
		key.serial = correlation.NormalizeSerial(snapshot.Serial)
	}
	return key
}
