// internal/discovery/usb/topology.go - pure topology parsing helpers
//
// These parsers are platform-independent even though their inputs only
// occur on Windows; keeping them untagged lets every platform unit-test
// them.
package usb

import (
	"regexp"
	"strings"

	"usb-inventory-service/internal/correlation"
)

var (
	vidPidRE    = regexp.MustCompile(`(?i)VID_([0-9A-F]{4}).*PID_([0-9A-F]{4})`)
	portTokenRE = regexp.MustCompile(`(?i)(Port_#\d+|Hub_#\d+)`)
	deviceIDRE  = regexp.MustCompile(`DeviceID="([^"]+)"`)
	idSplitRE   = regexp.MustCompile(`[\\#]`)
)

// ParseVidPid extracts the VID/PID pair from a hierarchical PnP device-id
// such as `USB\VID_0403&PID_6001\A50285BI`. Both come back uppercased
// without a prefix; a miss returns two empty strings.
func ParseVidPid(pnpDeviceID string) (vid, pid string) {
	match := vidPidRE.FindStringSubmatch(pnpDeviceID)
	if match == nil {
		return "", ""
	}
	return strings.ToUpper(match[1]), strings.ToUpper(match[2])
}

// ParseSerialTail derives the serial as the final path segment of a PnP
// device-id split on its hierarchy separators.
func ParseSerialTail(pnpDeviceID string) string {
	if pnpDeviceID == "" {
		return ""
	}
	parts := idSplitRE.Split(pnpDeviceID, -1)
	return strings.ToUpper(parts[len(parts)-1])
}

// ParseLocationChain tokenizes a LocationInformation string like
// "Port_#0003.Hub_#0006" into its ordered Port_#/Hub_# tokens, read
// root-to-leaf. Unparseable input yields an empty chain.
func ParseLocationChain(locationInfo string) []string {
	if locationInfo == "" {
		return nil
	}
	return portTokenRE.FindAllString(locationInfo, -1)
}

// ExtractDeviceID pulls the embedded DeviceID="..." literal out of a WMI
// relation endpoint reference.
func ExtractDeviceID(relPath string) string {
	match := deviceIDRE.FindStringSubmatch(relPath)
	if match == nil {
		return ""
	}
	return match[1]
}

// pnpTopologyRow is one PnP entity reduced to the fields the topology
// index consumes, with controller names already resolved.
type pnpTopologyRow struct {
	DeviceID     string
	LocationInfo string
	Controllers  []string
}

type topologyKey struct {
	vid    string
	pid    string
	serial string
}

type topologyEntry struct {
	pnpDeviceID  string
	locationInfo string
	chain        []string
	controllers  []string
}

// buildTopologyIndex indexes USB-rooted rows by (vid, pid, serial). Each
// row is also registered under (vid, pid, "") as a serial-less fallback;
// the first registration claims the fallback key and later rows never
// displace it.
func buildTopologyIndex(rows []pnpTopologyRow) map[topologyKey]*topologyEntry {
	index := make(map[topologyKey]*topologyEntry)
	for _, row := range rows {
		if !isUSBRooted(row.DeviceID) {
			continue
		}
		vid, pid := ParseVidPid(row.DeviceID)
		if vid == "" || pid == "" {
			continue
		}

		entry := &topologyEntry{
			pnpDeviceID:  row.DeviceID,
			locationInfo: row.LocationInfo,
			chain:        ParseLocationChain(row.LocationInfo),
			controllers:  row.Controllers,
		}

		key := topologyKey{
			vid:    correlation.NormalizeHexID(vid),
			pid:    correlation.NormalizeHexID(pid),
			serial: correlation.NormalizeSerial(ParseSerialTail(row.DeviceID)),
		}
		if key.serial == "" {
			// primary key and fallback key coincide; first row keeps it
			if _, claimed := index[key]; !claimed {
				index[key] = entry
			}
			continue
		}
		index[key] = entry

		fallback := key
		fallback.serial = ""
		if _, claimed := index[fallback]; !claimed {
			index[fallback] = entry
		}
	}
	return index
}

func isUSBRooted(pnpDeviceID string) bool {
	return strings.HasPrefix(strings.ToUpper(pnpDeviceID), `USB\`)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
