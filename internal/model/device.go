// internal/model/device.go
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// DeviceType identifies the transport a snapshot came from
type DeviceType string

const (
	DeviceTypeUSB DeviceType = "usb"
	DeviceTypeBLE DeviceType = "ble"
)

// ValueUnavailable marks a device attribute that could not be read.
// Snapshots never carry nulls for failed reads; they carry this sentinel.
const ValueUnavailable = "N/A"

// ValueNone is the sentinel for fields that have no value at all
// (vid/pid of BLE snapshots and placeholders, unresolved class guesses).
const ValueNone = "-"

// DeviceSnapshot is a point-in-time serializable record of one discovered
// device. USB snapshots carry 0x-prefixed lowercase 4-hex vid/pid; BLE
// snapshots and placeholders carry "-". Exactly one of {Error set} or
// {device fields populated} holds.
type DeviceSnapshot struct {
	VID          string     `json:"vid"`
	PID          string     `json:"pid"`
	DeviceType   DeviceType `json:"device_type"`
	Manufacturer string     `json:"manufacturer"`
	Product      string     `json:"product"`
	Serial       string     `json:"serial"`
	Bus          *int       `json:"bus"`
	Address      *int       `json:"address"`
	PortPath     []int      `json:"port_path"`

	DeviceDescriptor map[string]interface{}   `json:"device_descriptor"`
	Configurations   []map[string]interface{} `json:"configurations"`

	ClassGuess string `json:"class_guess"`
	Error      string `json:"error,omitempty"`

	// Windows topology annotations, empty elsewhere
	TopologyChain       []string `json:"topology_chain"`
	LocationInformation string   `json:"location_information"`
	LocationFallback    string   `json:"location_fallback"`
	USBControllers      []string `json:"usb_controllers"`

	// BLE-only fields
	BLEAddress string   `json:"ble_address,omitempty"`
	BLEName    string   `json:"ble_name,omitempty"`
	BLERSSI    *int     `json:"ble_rssi,omitempty"`
	BLEUUIDs   []string `json:"ble_uuids,omitempty"`
}

// NewPlaceholder creates an error-placeholder snapshot. All device fields
// of a placeholder are meaningless; only Error carries information.
func NewPlaceholder(message string) *DeviceSnapshot {
	return &DeviceSnapshot{
		VID:        ValueNone,
		PID:        ValueNone,
		DeviceType: DeviceTypeUSB,
		ClassGuess: ValueNone,
		Error:      message,
	}
}

// IsPlaceholder reports whether the snapshot is an error placeholder.
func (s *DeviceSnapshot) IsPlaceholder() bool {
	return s.Error != ""
}

// Key returns the canonical VID:PID pair identifier (BLE snapshots are
// keyed by their radio address instead).
func (s *DeviceSnapshot) Key() string {
	if s.DeviceType == DeviceTypeBLE {
		addr := s.BLEAddress
		if addr == "" {
			addr = s.BLEName
		}
		if addr == "" {
			addr = ValueNone
		}
		return "BLE:" + addr
	}
	return fmt.Sprintf("%s:%s", s.VID, s.PID)
}

// Identity returns a deterministic identifier that disambiguates physical
// units sharing the same VID/PID. Serial number takes priority, then the
// physical port path, then bus/address at enumeration time.
func (s *DeviceSnapshot) Identity() string {
	if s.DeviceType == DeviceTypeBLE {
		return s.bleIdentity()
	}

	var parts []string
	serial := strings.TrimSpace(s.Serial)
	switch {
	case serial != "" && serial != ValueUnavailable && serial != ValueNone:
		parts = append(parts, "SER:"+serial)
	case len(s.PortPath) > 0:
		segs := make([]string, len(s.PortPath))
		for i, p := range s.PortPath {
			segs[i] = strconv.Itoa(p)
		}
		parts = append(parts, "PORT:"+strings.Join(segs, "-"))
	}
	if s.Bus != nil {
		parts = append(parts, fmt.Sprintf("BUS:%d", *s.Bus))
	}
	if s.Address != nil {
		parts = append(parts, fmt.Sprintf("ADDR:%d", *s.Address))
	}
	if len(parts) == 0 {
		parts = append(parts, "UNIDENTIFIED")
	}
	parts = append(parts, fmt.Sprintf("VIDPID:%s:%s", s.VID, s.PID))
	return strings.Join(parts, " | ")
}

func (s *DeviceSnapshot) bleIdentity() string {
	var parts []string
	if s.BLEAddress != "" {
		parts = append(parts, "ADDR:"+s.BLEAddress)
	} else if s.BLEName != "" {
		parts = append(parts, "NAME:"+s.BLEName)
	}
	if s.BLERSSI != nil {
		parts = append(parts, fmt.Sprintf("RSSI:%d", *s.BLERSSI))
	}
	if len(parts) == 0 {
		parts = append(parts, "UNIDENTIFIED")
	}
	parts = append(parts, fmt.Sprintf("VIDPID:%s:%s", s.VID, s.PID))
	return strings.Join(parts, " | ")
}
