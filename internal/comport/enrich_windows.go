//go:build windows

// internal/comport/enrich_windows.go
package comport

import (
	"regexp"
	"strings"

	"github.com/yusufpapurcu/wmi"
	"go.uber.org/zap"

	"usb-inventory-service/internal/model"
)

// win32SerialPnPEntity binds the Win32_PnPEntity columns used for COM port
// enrichment. WMI NULL-able columns bind to pointers.
type win32SerialPnPEntity struct {
	DeviceID            *string
	Name                *string
	Manufacturer        *string
	PNPClass            *string
	LocationInformation *string
	Status              *string
}

// enrichPorts fills description/hwid/PnP fields from WMI. Serial-capable
// PnP entities advertise the port in their display name, e.g.
// "USB Serial Port (COM7)".
func enrichPorts(logger *zap.Logger, ports []*model.ComPort) {
	if len(ports) == 0 {
		return
	}

	var rows []win32SerialPnPEntity
	query := "SELECT DeviceID, Name, Manufacturer, PNPClass, LocationInformation, Status " +
		"FROM Win32_PnPEntity WHERE Name LIKE '%(COM%'"
	if err := wmi.Query(query, &rows); err != nil {
		logger.Debug("WMI port enrichment unavailable", zap.Error(err))
		return
	}

	byPort := make(map[string]win32SerialPnPEntity, len(rows))
	for _, row := range rows {
		name := deref(row.Name)
		if com := extractComToken(name); com != "" {
			byPort[com] = row
		}
	}

	for _, port := range ports {
		row, ok := byPort[strings.ToUpper(port.Name)]
		if !ok {
			continue
		}
		port.Description = deref(row.Name)
		port.HWID = deref(row.DeviceID)
		port.PnPName = deref(row.Name)
		port.PnPManufacturer = deref(row.Manufacturer)
		port.PnPClass = deref(row.PNPClass)
		port.PnPStatus = deref(row.Status)
		port.LocationInformation = deref(row.LocationInformation)
		if strings.HasPrefix(strings.ToUpper(port.HWID), `USB\`) {
			port.IsUSB = true
		}
	}

	fillControllers(logger, ports)
}

type win32PortControllerRelation struct {
	Antecedent string
	Dependent  string
}

type win32PortController struct {
	DeviceID *string
	Name     *string
}

var relDeviceIDRE = regexp.MustCompile(`DeviceID="([^"]+)"`)

// fillControllers resolves each USB port's host controllers through the
// Win32_USBControllerDevice relation, keyed by the port's PnP device-id.
func fillControllers(logger *zap.Logger, ports []*model.ComPort) {
	var relations []win32PortControllerRelation
	if err := wmi.Query("SELECT Antecedent, Dependent FROM Win32_USBControllerDevice", &relations); err != nil {
		logger.Debug("USB controller relation unavailable", zap.Error(err))
		return
	}
	var controllers []win32PortController
	if err := wmi.Query("SELECT DeviceID, Name FROM Win32_USBController", &controllers); err != nil {
		logger.Debug("USB controller names unavailable", zap.Error(err))
		return
	}

	names := make(map[string]string, len(controllers))
	for _, ctrl := range controllers {
		id := deref(ctrl.DeviceID)
		if id == "" {
			continue
		}
		name := deref(ctrl.Name)
		if name == "" {
			name = id
		}
		names[id] = name
	}

	deviceToControllers := make(map[string][]string, len(relations))
	for _, rel := range relations {
		deviceID := relMatch(rel.Dependent)
		controllerID := relMatch(rel.Antecedent)
		if deviceID == "" || controllerID == "" {
			continue
		}
		name, ok := names[controllerID]
		if !ok {
			name = controllerID
		}
		key := strings.ToUpper(deviceID)
		deviceToControllers[key] = append(deviceToControllers[key], name)
	}

	for _, port := range ports {
		if port.HWID == "" {
			continue
		}
		port.USBControllers = deviceToControllers[strings.ToUpper(port.HWID)]
	}
}

func relMatch(relPath string) string {
	match := relDeviceIDRE.FindStringSubmatch(relPath)
	if match == nil {
		return ""
	}
	return match[1]
}

// extractComToken pulls "COM7" out of "USB Serial Port (COM7)".
func extractComToken(name string) string {
	start := strings.LastIndex(name, "(COM")
	if start < 0 {
		return ""
	}
	end := strings.Index(name[start:], ")")
	if end < 0 {
		return ""
	}
	return strings.ToUpper(name[start+1 : start+end])
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
