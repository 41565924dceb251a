package ble

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"usb-inventory-service/internal/model"
)

type fakeAdapter struct {
	enableErr      error
	scanErr        error
	advertisements []Advertisement
}

func (a *fakeAdapter) Enable() error { return a.enableErr }

func (a *fakeAdapter) Scan(_ context.Context, _ time.Duration) ([]Advertisement, error) {
	return a.advertisements, a.scanErr
}

func TestScanMapsAdvertisements(t *testing.T) {
	adapter := &fakeAdapter{
		advertisements: []Advertisement{
			{Address: "AA:BB:CC:DD:EE:FF", Name: "thermo", RSSI: -58, UUIDs: []string{"0000180a-0000-1000-8000-00805f9b34fb"}},
			{Address: "11:22:33:44:55:66", RSSI: -80},
		},
	}
	scanner := NewScanner(zap.NewNop(), adapter, time.Second)

	snapshots, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	first := snapshots[0]
	require.Equal(t, model.DeviceTypeBLE, first.DeviceType)
	require.Equal(t, model.ValueNone, first.VID)
	require.Equal(t, model.ValueNone, first.PID)
	require.Equal(t, "BLE", first.ClassGuess)
	require.Equal(t, "AA:BB:CC:DD:EE:FF", first.BLEAddress)
	require.Equal(t, "thermo", first.BLEName)
	require.NotNil(t, first.BLERSSI)
	require.Equal(t, -58, *first.BLERSSI)
	require.Equal(t, []string{"0000180a-0000-1000-8000-00805f9b34fb"}, first.BLEUUIDs)
	require.False(t, first.IsPlaceholder())
}

func TestScanNilAdapter(t *testing.T) {
	scanner := NewScanner(zap.NewNop(), nil, time.Second)

	require.False(t, scanner.IsAvailable())

	snapshots, err := scanner.Scan(context.Background())
	require.EqualError(t, err, "Bluetooth adapter not available")
	require.Empty(t, snapshots)
}

func TestScanEnableFailure(t *testing.T) {
	adapter := &fakeAdapter{enableErr: errors.New("no adapter")}
	scanner := NewScanner(zap.NewNop(), adapter, time.Second)

	require.False(t, scanner.IsAvailable())

	snapshots, err := scanner.Scan(context.Background())
	require.EqualError(t, err, "Bluetooth adapter not available: no adapter")
	// No placeholder snapshot for BLE failures.
	require.Empty(t, snapshots)
}

func TestScanRadioFailure(t *testing.T) {
	adapter := &fakeAdapter{scanErr: errors.New("radio busy")}
	scanner := NewScanner(zap.NewNop(), adapter, time.Second)

	snapshots, err := scanner.Scan(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "radio busy")
	require.Empty(t, snapshots)
}

func TestScannerType(t *testing.T) {
	scanner := NewScanner(zap.NewNop(), &fakeAdapter{}, 0)
	require.Equal(t, "ble", scanner.GetScannerType())
	require.True(t, scanner.IsAvailable())
}
