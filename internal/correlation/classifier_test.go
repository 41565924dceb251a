package correlation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyPortBluetooth(t *testing.T) {
	c := ClassifyPort(`BTHENUM\{00001101-0000-1000-8000-00805F9B34FB}`, "Standard Serial over Bluetooth link", "Ports", "", "")
	require.Equal(t, KindBluetooth, c.Kind)
	require.Equal(t, 0.95, c.Confidence)
}

func TestClassifyPortBluetoothFromDescription(t *testing.T) {
	c := ClassifyPort("", "Bluetooth Serial Port", "", "", "")
	require.Equal(t, KindBluetooth, c.Kind)
}

func TestClassifyPortBluetoothBeatsVidPid(t *testing.T) {
	// Bluetooth indicators outrank a present VID/PID pair.
	c := ClassifyPort(`BTHENUM\DEV_AABBCCDDEEFF`, "", "", "0403", "6001")
	require.Equal(t, KindBluetooth, c.Kind)
}

func TestClassifyPortUSBWithVidPid(t *testing.T) {
	c := ClassifyPort(`USB\VID_0403+PID_6001+A50285BIA`, "USB Serial Port (COM7)", "Ports", "0403", "6001")
	require.Equal(t, KindUSB, c.Kind)
	require.Equal(t, 0.92, c.Confidence)
}

func TestClassifyPortUSBWeak(t *testing.T) {
	// USB hints without a parsed VID/PID land in the weaker tier.
	c := ClassifyPort(`USB\ROOT_HUB30`, "", "", "", "")
	require.Equal(t, KindUSB, c.Kind)
	require.Equal(t, 0.75, c.Confidence)

	c = ClassifyPort("", "Prolific USB-to-Serial Comm Port", "", "", "")
	require.Equal(t, KindUSB, c.Kind)
	require.Equal(t, 0.75, c.Confidence)
}

func TestClassifyPortLegacySerial(t *testing.T) {
	c := ClassifyPort(`ACPI\PNP0501\1`, "Communications Port (COM1)", "Ports", "", "")
	require.Equal(t, KindLegacySerial, c.Kind)
	require.Equal(t, 0.85, c.Confidence)

	c = ClassifyPort(`PCI\VEN_8086&DEV_9D3D`, "", "", "", "")
	require.Equal(t, KindLegacySerial, c.Kind)
	require.Equal(t, 0.85, c.Confidence)
}

func TestClassifyPortLegacySerialFromPnPClass(t *testing.T) {
	c := ClassifyPort("", "Some Serial Device", "Ports", "", "")
	require.Equal(t, KindLegacySerial, c.Kind)
	require.Equal(t, 0.60, c.Confidence)
}

func TestClassifyPortUnknown(t *testing.T) {
	c := ClassifyPort("", "", "", "", "")
	require.Equal(t, KindUnknown, c.Kind)
	require.Equal(t, 0.30, c.Confidence)
	require.Equal(t, []string{"no strong indicators found"}, c.Reasons)
}
