// pkg/usbclass/usbclass.go
package usbclass

import "fmt"

// Well-known USB interface class codes
const (
	ClassCDCACM uint8 = 0x02
	ClassHID    uint8 = 0x03
	ClassUSBTMC uint8 = 0xFE
	ClassVendor uint8 = 0xFF
)

// labels maps interface class codes to the human labels used in snapshot
// class guesses. Codes outside the table render as their hex value.
var labels = map[uint8]string{
	ClassCDCACM: "CDC-ACM",
	ClassHID:    "HID",
	ClassUSBTMC: "USBTMC",
	ClassVendor: "Vendor",
}

// Label returns the human label for a USB interface class code.
func Label(code uint8) string {
	if name, ok := labels[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", code)
}

// Join returns the comma-joined set of distinct class labels in first-seen
// order, or "-" when no class could be resolved.
func Join(codes []uint8) string {
	if len(codes) == 0 {
		return "-"
	}
	seen := make(map[string]bool, len(codes))
	var out string
	for _, code := range codes {
		label := Label(code)
		if seen[label] {
			continue
		}
		seen[label] = true
		if out != "" {
			out += ","
		}
		out += label
	}
	return out
}
