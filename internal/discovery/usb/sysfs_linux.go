//go:build linux

// internal/discovery/usb/sysfs_linux.go - sysfs fallback backend
package usb

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"usb-inventory-service/internal/model"
	"usb-inventory-service/pkg/usbclass"
)

const sysfsUSBRoot = "/sys/bus/usb/devices"

// Device entries look like "3-1.4"; root hubs like "usb3". Interface
// entries ("3-1.4:1.0") are skipped at the top level and read per device.
var (
	sysfsDeviceRE    = regexp.MustCompile(`^\d+-[\d.]+$`)
	sysfsRootHubRE   = regexp.MustCompile(`^usb\d+$`)
	sysfsInterfaceRE = regexp.MustCompile(`^\d+-[\d.]+:\d+\.\d+$`)
)

func platformBackends(logger *zap.Logger) []backend {
	return []backend{&sysfsBackend{logger: logger, root: sysfsUSBRoot}}
}

// sysfsBackend reads device attributes straight from sysfs. It needs no
// libusb and no elevated permissions, at the cost of not seeing full
// config/endpoint descriptors.
type sysfsBackend struct {
	logger *zap.Logger
	root   string
}

func (b *sysfsBackend) name() string { return "sysfs" }

func (b *sysfsBackend) available() bool {
	info, err := os.Stat(b.root)
	return err == nil && info.IsDir()
}

func (b *sysfsBackend) scan() ([]*model.DeviceSnapshot, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.root, err)
	}

	var snapshots []*model.DeviceSnapshot
	for _, entry := range entries {
		name := entry.Name()
		if !sysfsDeviceRE.MatchString(name) && !sysfsRootHubRE.MatchString(name) {
			continue
		}
		snapshot := b.snapshotEntry(name)
		if snapshot == nil {
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (b *sysfsBackend) snapshotEntry(name string) *model.DeviceSnapshot {
	dir := filepath.Join(b.root, name)
	vid := sysfsAttr(dir, "idVendor")
	pid := sysfsAttr(dir, "idProduct")
	if vid == "" || pid == "" {
		return nil
	}

	snapshot := &model.DeviceSnapshot{
		VID:          "0x" + strings.ToLower(vid),
		PID:          "0x" + strings.ToLower(pid),
		DeviceType:   model.DeviceTypeUSB,
		Manufacturer: sysfsAttrOr(dir, "manufacturer", model.ValueUnavailable),
		Product:      sysfsAttrOr(dir, "product", model.ValueUnavailable),
		Serial:       sysfsAttr(dir, "serial"),
		PortPath:     parseDevpath(sysfsAttr(dir, "devpath")),
		DeviceDescriptor: map[string]interface{}{
			"idVendor":           "0x" + strings.ToLower(vid),
			"idProduct":          "0x" + strings.ToLower(pid),
			"bcdDevice":          sysfsAttr(dir, "bcdDevice"),
			"bDeviceClass":       sysfsAttr(dir, "bDeviceClass"),
			"bMaxPacketSize0":    sysfsAttr(dir, "bMaxPacketSize0"),
			"bNumConfigurations": sysfsAttr(dir, "bNumConfigurations"),
			"speed":              sysfsAttr(dir, "speed"),
			"version":            sysfsAttr(dir, "version"),
		},
		ClassGuess: b.classGuess(dir, name),
	}

	if bus, err := strconv.Atoi(sysfsAttr(dir, "busnum")); err == nil {
		snapshot.Bus = &bus
	}
	if addr, err := strconv.Atoi(sysfsAttr(dir, "devnum")); err == nil {
		snapshot.Address = &addr
	}
	return snapshot
}

// classGuess joins the interface classes of the device's bound
// interfaces, read from its "<name>:<config>.<iface>" subdirectories.
func (b *sysfsBackend) classGuess(dir, name string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return model.ValueNone
	}
	var codes []uint8
	for _, entry := range entries {
		if !sysfsInterfaceRE.MatchString(entry.Name()) {
			continue
		}
		raw := sysfsAttr(filepath.Join(dir, entry.Name()), "bInterfaceClass")
		code, err := strconv.ParseUint(raw, 16, 8)
		if err != nil {
			continue
		}
		codes = append(codes, uint8(code))
	}
	return usbclass.Join(codes)
}

func sysfsAttr(dir, attr string) string {
	data, err := os.ReadFile(filepath.Join(dir, attr))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func sysfsAttrOr(dir, attr, fallback string) string {
	if value := sysfsAttr(dir, attr); value != "" {
		return value
	}
	return fallback
}

// parseDevpath turns a sysfs devpath like "1.4" into the port chain
// [1 4]. Root hubs carry "0" and map to an empty chain.
func parseDevpath(devpath string) []int {
	if devpath == "" || devpath == "0" {
		return nil
	}
	var ports []int
	for _, seg := range strings.Split(devpath, ".") {
		port, err := strconv.Atoi(seg)
		if err != nil {
			return nil
		}
		ports = append(ports, port)
	}
	return ports
}
