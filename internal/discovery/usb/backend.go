//go:build !windows

// internal/discovery/usb/backend.go - native scan backends
package usb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"usb-inventory-service/internal/correlation"
	"usb-inventory-service/internal/model"
	"usb-inventory-service/pkg/usbclass"
)

const msgNoBackend = "no usable USB backend found; install libusb-1.0 " +
	"(e.g. apt install libusb-1.0-0) and check device permissions"

// backend is one way of enumerating USB devices. Backends are tried in
// order; the first one that produces a result wins.
type backend interface {
	name() string
	available() bool
	scan() ([]*model.DeviceSnapshot, error)
}

func (s *Scanner) backends() []backend {
	candidates := []backend{&gousbBackend{logger: s.logger}}
	return append(candidates, platformBackends(s.logger)...)
}

// gousbBackend enumerates devices through libusb. Descriptor data comes
// from the enumeration pass; string descriptors need an opened device
// and degrade to "N/A" when the open is denied.
type gousbBackend struct {
	logger *zap.Logger
}

func (b *gousbBackend) name() string { return "libusb" }

func (b *gousbBackend) available() bool {
	ctx, err := newUSBContext()
	if err != nil {
		return false
	}
	ctx.Close()
	return true
}

func (b *gousbBackend) scan() ([]*model.DeviceSnapshot, error) {
	ctx, err := newUSBContext()
	if err != nil {
		return nil, err
	}
	defer ctx.Close()

	var descs []*gousb.DeviceDesc
	devices, openErr := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		descs = append(descs, desc)
		return true
	})
	defer func() {
		for _, dev := range devices {
			dev.Close()
		}
	}()

	if openErr != nil && len(descs) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", openErr)
	}
	if openErr != nil {
		b.logger.Warn("Some USB devices could not be opened", zap.Error(openErr))
	}

	opened := make(map[*gousb.DeviceDesc]*gousb.Device, len(devices))
	for _, dev := range devices {
		opened[dev.Desc] = dev
	}

	snapshots := make([]*model.DeviceSnapshot, 0, len(descs))
	for _, desc := range descs {
		snapshots = append(snapshots, b.snapshotDevice(desc, opened[desc]))
	}
	return snapshots, nil
}

// newUSBContext wraps gousb.NewContext, which panics instead of returning
// an error when libusb cannot be initialized.
func newUSBContext() (ctx *gousb.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
			err = fmt.Errorf("libusb initialization failed: %v", r)
		}
	}()
	return gousb.NewContext(), nil
}

func (b *gousbBackend) snapshotDevice(desc *gousb.DeviceDesc, dev *gousb.Device) *model.DeviceSnapshot {
	bus := desc.Bus
	address := desc.Address

	manufacturer := model.ValueUnavailable
	product := model.ValueUnavailable
	serial := model.ValueUnavailable
	if dev != nil {
		manufacturer = stringDescriptor(dev.Manufacturer)
		product = stringDescriptor(dev.Product)
		serial = stringDescriptor(dev.SerialNumber)
	}

	descriptor := map[string]interface{}{
		"idVendor":           correlation.FormatUsbID(uint16(desc.Vendor)),
		"idProduct":          correlation.FormatUsbID(uint16(desc.Product)),
		"bcdDevice":          desc.Device.String(),
		"bcdUSB":             desc.Spec.String(),
		"bDeviceClass":       int(desc.Class),
		"bDeviceSubClass":    int(desc.SubClass),
		"bDeviceProtocol":    int(desc.Protocol),
		"bMaxPacketSize0":    desc.MaxControlPacketSize,
		"bNumConfigurations": len(desc.Configs),
		"speed":              desc.Speed.String(),
	}

	var (
		configurations []map[string]interface{}
		classCodes     []uint8
	)
	for _, num := range sortedConfigNumbers(desc.Configs) {
		cfg := desc.Configs[num]
		cfgInfo := map[string]interface{}{
			"configuration_descriptor": map[string]interface{}{
				"bConfigurationValue": int(cfg.Number),
				"bNumInterfaces":      len(cfg.Interfaces),
				"bMaxPower":           fmt.Sprintf("%dmA", int(cfg.MaxPower)),
				"self_powered":        cfg.SelfPowered,
				"remote_wakeup":       cfg.RemoteWakeup,
			},
		}
		var interfaces []map[string]interface{}
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				classCodes = append(classCodes, uint8(alt.Class))
				interfaces = append(interfaces, interfaceInfo(alt))
			}
		}
		cfgInfo["interfaces"] = interfaces
		configurations = append(configurations, cfgInfo)
	}

	return &model.DeviceSnapshot{
		VID:              correlation.FormatUsbID(uint16(desc.Vendor)),
		PID:              correlation.FormatUsbID(uint16(desc.Product)),
		DeviceType:       model.DeviceTypeUSB,
		Manufacturer:     manufacturer,
		Product:          product,
		Serial:           serial,
		Bus:              &bus,
		Address:          &address,
		PortPath:         append([]int(nil), desc.Path...),
		DeviceDescriptor: descriptor,
		Configurations:   configurations,
		ClassGuess:       usbclass.Join(classCodes),
	}
}

func interfaceInfo(alt gousb.InterfaceSetting) map[string]interface{} {
	var endpoints []map[string]interface{}
	for _, addr := range sortedEndpointAddresses(alt.Endpoints) {
		ep := alt.Endpoints[addr]
		endpoints = append(endpoints, map[string]interface{}{
			"bEndpointAddress": int(ep.Address),
			"direction":        ep.Direction.String(),
			"transfer_type":    ep.TransferType.String(),
			"wMaxPacketSize":   ep.MaxPacketSize,
			"bInterval":        ep.PollInterval.String(),
		})
	}
	return map[string]interface{}{
		"interface_descriptor": map[string]interface{}{
			"bInterfaceNumber":   alt.Number,
			"bAlternateSetting":  alt.Alternate,
			"bNumEndpoints":      len(alt.Endpoints),
			"bInterfaceClass":    int(alt.Class),
			"bInterfaceSubClass": int(alt.SubClass),
			"bInterfaceProtocol": int(alt.Protocol),
		},
		"endpoints": endpoints,
	}
}

func stringDescriptor(read func() (string, error)) string {
	value, err := read()
	if err != nil {
		return model.ValueUnavailable
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return model.ValueUnavailable
	}
	return value
}

func sortedConfigNumbers(configs map[int]gousb.ConfigDesc) []int {
	nums := make([]int, 0, len(configs))
	for num := range configs {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}

func sortedEndpointAddresses(endpoints map[gousb.EndpointAddress]gousb.EndpointDesc) []gousb.EndpointAddress {
	addrs := make([]gousb.EndpointAddress, 0, len(endpoints))
	for addr := range endpoints {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}
