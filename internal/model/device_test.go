package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewPlaceholder(t *testing.T) {
	p := NewPlaceholder("no USB or BLE devices were found")
	require.True(t, p.IsPlaceholder())
	require.Equal(t, ValueNone, p.VID)
	require.Equal(t, ValueNone, p.PID)
	require.Equal(t, ValueNone, p.ClassGuess)
	require.Equal(t, "no USB or BLE devices were found", p.Error)
}

func TestKey(t *testing.T) {
	s := &DeviceSnapshot{VID: "0x0403", PID: "0x6001", DeviceType: DeviceTypeUSB}
	require.Equal(t, "0x0403:0x6001", s.Key())

	b := &DeviceSnapshot{DeviceType: DeviceTypeBLE, BLEAddress: "AA:BB:CC:DD:EE:FF"}
	require.Equal(t, "BLE:AA:BB:CC:DD:EE:FF", b.Key())

	named := &DeviceSnapshot{DeviceType: DeviceTypeBLE, BLEName: "beacon"}
	require.Equal(t, "BLE:beacon", named.Key())

	anon := &DeviceSnapshot{DeviceType: DeviceTypeBLE}
	require.Equal(t, "BLE:-", anon.Key())
}

func TestIdentitySerialWins(t *testing.T) {
	s := &DeviceSnapshot{
		VID: "0x0403", PID: "0x6001", DeviceType: DeviceTypeUSB,
		Serial: "A50285BI", PortPath: []int{1, 4}, Bus: intPtr(1), Address: intPtr(7),
	}
	require.Equal(t, "SER:A50285BI | BUS:1 | ADDR:7 | VIDPID:0x0403:0x6001", s.Identity())
}

func TestIdentityPortPathFallback(t *testing.T) {
	s := &DeviceSnapshot{
		VID: "0x0403", PID: "0x6001", DeviceType: DeviceTypeUSB,
		Serial: "N/A", PortPath: []int{1, 4, 2},
	}
	require.Equal(t, "PORT:1-4-2 | VIDPID:0x0403:0x6001", s.Identity())
}

func TestIdentityUnidentified(t *testing.T) {
	s := &DeviceSnapshot{VID: "0x0403", PID: "0x6001", DeviceType: DeviceTypeUSB}
	require.Equal(t, "UNIDENTIFIED | VIDPID:0x0403:0x6001", s.Identity())
}

func TestIdentityDeterministic(t *testing.T) {
	s := &DeviceSnapshot{
		VID: "0x0403", PID: "0x6001", DeviceType: DeviceTypeUSB,
		Serial: "A50285BI", Bus: intPtr(1), Address: intPtr(7),
	}
	first := s.Identity()
	for i := 0; i < 5; i++ {
		require.Equal(t, first, s.Identity())
	}
}

func TestIdentityDistinguishesUnits(t *testing.T) {
	// Two physical units of the same product differ only by serial.
	a := &DeviceSnapshot{VID: "0x0403", PID: "0x6001", DeviceType: DeviceTypeUSB, Serial: "A50285BI"}
	b := &DeviceSnapshot{VID: "0x0403", PID: "0x6001", DeviceType: DeviceTypeUSB, Serial: "A9Z1PP0X"}
	require.Equal(t, a.Key(), b.Key())
	require.NotEqual(t, a.Identity(), b.Identity())
}

func TestBLEIdentity(t *testing.T) {
	rssi := -62
	b := &DeviceSnapshot{
		VID: ValueNone, PID: ValueNone, DeviceType: DeviceTypeBLE,
		BLEAddress: "AA:BB:CC:DD:EE:FF", BLERSSI: &rssi,
	}
	require.Equal(t, "ADDR:AA:BB:CC:DD:EE:FF | RSSI:-62 | VIDPID:-:-", b.Identity())
}
