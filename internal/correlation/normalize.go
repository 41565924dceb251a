// internal/correlation/normalize.go
package correlation

import (
	"fmt"
	"strings"

	"usb-inventory-service/internal/model"
)

// NormalizeHexID canonicalizes a VID or PID for comparison: strip any
// 0x/0X prefix, lowercase, left-pad with zeros to exactly 4 hex digits.
// The empty string normalizes to the empty string.
func NormalizeHexID(value string) string {
	text := strings.ToLower(strings.TrimSpace(value))
	if text == "" {
		return ""
	}
	text = strings.TrimPrefix(text, "0x")
	for len(text) < 4 {
		text = "0" + text
	}
	return text
}

// NormalizeSerial canonicalizes a serial number for comparison: trim,
// uppercase, and map all "no serial known" sentinels to the empty string.
func NormalizeSerial(value string) string {
	text := strings.ToUpper(strings.TrimSpace(value))
	switch text {
	case "", model.ValueNone, model.ValueUnavailable:
		return ""
	}
	return text
}

// FormatUsbID renders a numeric USB identifier in the snapshot's canonical
// 0x-prefixed lowercase form.
func FormatUsbID(value uint16) string {
	return fmt.Sprintf("0x%04x", value)
}
