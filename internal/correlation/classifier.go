// internal/correlation/classifier.go
package correlation

import "strings"

// PortKind is the classified transport behind a serial port.
type PortKind string

const (
	KindUSB          PortKind = "USB"
	KindBluetooth    PortKind = "Bluetooth"
	KindLegacySerial PortKind = "RS-232/PCI/ACPI"
	KindUnknown      PortKind = "Unknown"
)

// Classification is the outcome of the port-kind rule cascade.
type Classification struct {
	Kind       PortKind `json:"kind"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// ClassifyPort labels a serial port as USB, Bluetooth, legacy serial or
// Unknown. Rules form a strictly ordered cascade: the first matching rule
// wins and later rules are not evaluated. vid/pid are the port's parsed
// identifiers so enumerator metadata and hwid-derived fallbacks both count
// toward the VID/PID-presence rule.
func ClassifyPort(hwid, description, pnpClass, vid, pid string) Classification {
	hw := strings.ToUpper(strings.TrimSpace(hwid))
	desc := strings.ToUpper(strings.TrimSpace(description))

	if containsAny(hw, "BTHENUM", "BLUETOOTH", "RFCOMM") ||
		containsAny(desc, "BTHENUM", "BLUETOOTH", "RFCOMM") {
		return Classification{
			Kind:       KindBluetooth,
			Confidence: 0.95,
			Reasons:    []string{"hwid/desc indicates Bluetooth (BTHENUM/BLUETOOTH/RFCOMM)"},
		}
	}

	if vid != "" && pid != "" {
		return Classification{
			Kind:       KindUSB,
			Confidence: 0.92,
			Reasons:    []string{"VID/PID available (likely USB-serial)"},
		}
	}
	if strings.HasPrefix(hw, `USB\`) || strings.Contains(" "+desc, " USB") {
		return Classification{
			Kind:       KindUSB,
			Confidence: 0.75,
			Reasons:    []string{"hwid/desc suggests USB"},
		}
	}

	if strings.HasPrefix(hw, `ACPI\`) || strings.HasPrefix(hw, `PCI\`) ||
		strings.Contains(hw, "PNP0501") || strings.Contains(hw, "PNP0500") {
		return Classification{
			Kind:       KindLegacySerial,
			Confidence: 0.85,
			Reasons:    []string{"hwid indicates ACPI/PCI standard serial"},
		}
	}
	if strings.EqualFold(strings.TrimSpace(pnpClass), "Ports") &&
		!strings.Contains(hw, `USB\`) && !strings.Contains(hw, "BTHENUM") {
		return Classification{
			Kind:       KindLegacySerial,
			Confidence: 0.60,
			Reasons:    []string{"PnPClass=Ports but not USB/Bluetooth"},
		}
	}

	return Classification{
		Kind:       KindUnknown,
		Confidence: 0.30,
		Reasons:    []string{"no strong indicators found"},
	}
}

func containsAny(s string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
