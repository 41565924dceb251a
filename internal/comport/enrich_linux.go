//go:build linux

// internal/comport/enrich_linux.go
package comport

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"usb-inventory-service/internal/model"
)

const sysTTYPath = "/sys/class/tty"

// enrichPorts walks /sys/class/tty up to the owning USB device directory
// and reads the sysfs attribute files the base enumerator does not expose.
func enrichPorts(logger *zap.Logger, ports []*model.ComPort) {
	for _, port := range ports {
		deviceDir := usbDeviceDir(filepath.Base(port.Name))
		if deviceDir == "" {
			continue
		}
		port.IsUSB = true
		if port.VID == "" {
			port.VID = readSysAttr(deviceDir, "idVendor")
		}
		if port.PID == "" {
			port.PID = readSysAttr(deviceDir, "idProduct")
		}
		if port.SerialNumber == "" {
			port.SerialNumber = readSysAttr(deviceDir, "serial")
		}
		if port.Manufacturer == "" {
			port.Manufacturer = readSysAttr(deviceDir, "manufacturer")
		}
		if port.Product == "" {
			port.Product = readSysAttr(deviceDir, "product")
		}
		if port.Location == "" {
			port.Location = readSysAttr(deviceDir, "devpath")
		}
		if port.Description == "" {
			port.Description = port.Product
		}
	}
	logger.Debug("sysfs port enrichment applied", zap.Int("ports", len(ports)))
}

// usbDeviceDir resolves the sysfs USB device directory for a tty name by
// walking parent directories until one carries idVendor/idProduct.
func usbDeviceDir(ttyName string) string {
	link, err := os.Readlink(filepath.Join(sysTTYPath, ttyName))
	if err != nil {
		return ""
	}
	dir := filepath.Join(sysTTYPath, link)
	for i := 0; i < 6; i++ {
		dir = filepath.Dir(dir)
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err == nil {
			return dir
		}
	}
	return ""
}

func readSysAttr(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
