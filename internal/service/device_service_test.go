package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"usb-inventory-service/internal/comport"
	"usb-inventory-service/internal/discovery"
	"usb-inventory-service/internal/model"
	"usb-inventory-service/internal/repository"
)

func snapshotFixture(vid, pid, serial string) *model.DeviceSnapshot {
	return &model.DeviceSnapshot{
		VID: vid, PID: pid, Serial: serial,
		DeviceType: model.DeviceTypeUSB,
	}
}

func portFixture(name, vid, pid, serial string) *model.ComPort {
	return &model.ComPort{Name: name, VID: vid, PID: pid, SerialNumber: serial, IsUSB: true}
}

func newTestDeviceService(t *testing.T, stored []*model.DeviceSnapshot) *DeviceService {
	t.Helper()
	logger := zap.NewNop()
	repo := repository.NewJSONSnapshotRepository(filepath.Join(t.TempDir(), "devices.json"), logger)
	if stored != nil {
		require.NoError(t, repo.Save(stored))
	}
	scans := NewScanService(logger, discovery.NewScannerManager(logger), repo, nil)
	return NewDeviceService(logger, scans, comport.NewEnumerator(logger), nil, SerialSettings{})
}

func TestMatchComPortBySerial(t *testing.T) {
	snapshot := snapshotFixture("0x0403", "0x6001", "A50285BI")
	ports := []*model.ComPort{
		portFixture("COM3", "1a86", "7523", ""),
		portFixture("COM7", "0403", "6001", "A50285BI"),
	}
	require.Equal(t, "COM7", matchComPort(snapshot, ports))
}

func TestMatchComPortSerialCaseInsensitive(t *testing.T) {
	snapshot := snapshotFixture("0x0403", "0x6001", "a50285bi")
	ports := []*model.ComPort{portFixture("COM7", "0403", "6001", "A50285BI")}
	require.Equal(t, "COM7", matchComPort(snapshot, ports))
}

func TestMatchComPortSerialMismatch(t *testing.T) {
	// A snapshot with a serial never accepts a port with a different one,
	// including a port that reports no serial at all.
	snapshot := snapshotFixture("0x0403", "0x6001", "A50285BI")
	ports := []*model.ComPort{
		portFixture("COM7", "0403", "6001", ""),
		portFixture("COM8", "0403", "6001", "OTHER123"),
	}
	require.Empty(t, matchComPort(snapshot, ports))
}

func TestMatchComPortNoSnapshotSerial(t *testing.T) {
	// Without a snapshot serial, the first enumeration-order VID/PID
	// match wins regardless of the port's serial.
	snapshot := snapshotFixture("0x0403", "0x6001", "N/A")
	ports := []*model.ComPort{
		portFixture("COM9", "0403", "6001", "WHATEVER"),
		portFixture("COM10", "0403", "6001", ""),
	}
	require.Equal(t, "COM9", matchComPort(snapshot, ports))
}

func TestMatchComPortNormalizesIdentifiers(t *testing.T) {
	snapshot := snapshotFixture("0x0403", "0x6001", "")
	ports := []*model.ComPort{portFixture("/dev/ttyUSB0", "0403", "6001", "X")}
	require.Equal(t, "/dev/ttyUSB0", matchComPort(snapshot, ports))

	bare := snapshotFixture("403", "6001", "")
	require.Equal(t, "/dev/ttyUSB0", matchComPort(bare, ports))
}

func TestPickConnection(t *testing.T) {
	_, err := pickConnection(nil, "")
	require.ErrorIs(t, err, ErrDeviceNotFound)

	_, err = pickConnection([]*Connection{{}}, "")
	require.ErrorIs(t, err, ErrNoComPort)

	target, err := pickConnection([]*Connection{{ComPort: "COM7"}}, "")
	require.NoError(t, err)
	require.Equal(t, "COM7", target.ComPort)
}

func TestPickConnectionAmbiguous(t *testing.T) {
	connections := []*Connection{{ComPort: "COM7"}, {ComPort: "COM8"}}

	_, err := pickConnection(connections, "")
	require.ErrorIs(t, err, ErrAmbiguousPort)

	// A serial filter upstream makes the pick deterministic.
	target, err := pickConnection(connections[:1], "A50285BI")
	require.NoError(t, err)
	require.Equal(t, "COM7", target.ComPort)
}

func TestFindSnapshotsFiltering(t *testing.T) {
	stored := []*model.DeviceSnapshot{
		snapshotFixture("0x0403", "0x6001", "A50285BI"),
		snapshotFixture("0x0403", "0x6001", "A9Z1PP0X"),
		snapshotFixture("0x1a86", "0x7523", ""),
		{DeviceType: model.DeviceTypeBLE, VID: "-", PID: "-", BLEAddress: "AA:BB:CC:DD:EE:FF"},
	}
	svc := newTestDeviceService(t, stored)

	matches := svc.FindSnapshots(context.Background(), "0403", "6001", "", false)
	require.Len(t, matches, 2)

	matches = svc.FindSnapshots(context.Background(), "0x0403", "0x6001", "a50285bi", false)
	require.Len(t, matches, 1)
	require.Equal(t, "A50285BI", matches[0].Serial)

	matches = svc.FindSnapshots(context.Background(), "dead", "beef", "", false)
	require.Empty(t, matches)
}

func TestFindSnapshotsSkipsPlaceholders(t *testing.T) {
	svc := newTestDeviceService(t, nil) // missing store loads as a placeholder

	matches := svc.FindSnapshots(context.Background(), "-", "-", "", false)
	require.Empty(t, matches)
}

func TestResolveComPortNoMatchingDevice(t *testing.T) {
	svc := newTestDeviceService(t, []*model.DeviceSnapshot{snapshotFixture("0x1a86", "0x7523", "")})

	_, err := svc.ResolveComPort(context.Background(), "0xdead", "0xbeef", "", false)
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestSendCommandRejectsConflictingReadModes(t *testing.T) {
	svc := newTestDeviceService(t, nil)
	until := "\r\n"

	_, err := svc.SendCommand(context.Background(), SendCommandRequest{
		VID: "0403", PID: "6001", Command: "AT",
		ReadBytes: 16, ReadUntil: &until,
	})
	require.ErrorIs(t, err, ErrExchangeConfig)
}

func TestIsDeviceConnectedWithoutChecker(t *testing.T) {
	svc := newTestDeviceService(t, nil)
	require.False(t, svc.IsDeviceConnected(context.Background(), "0403", "6001", ""))
}

func TestInspectPortShape(t *testing.T) {
	port := &model.ComPort{
		Name:        "COM7",
		HWID:        `USB\VID_0403&PID_6001\A50285BIA`,
		Description: "USB Serial Port (COM7)",
		PnPClass:    "Ports",
		VID:         "0403", PID: "6001",
		LocationInformation: "Port_#0003.Hub_#0006",
	}

	inspection := inspectPort(port)
	require.Equal(t, "0403:6001", inspection.VidPid)
	require.Equal(t, "A50285BIA", inspection.SerialGuess)
	require.Equal(t, []string{"Port_#0003", "Hub_#0006"}, inspection.TopologyChain)
	require.Equal(t, "USB", string(inspection.Classification.Kind))
}

func TestInspectPortVidPidFallbackFromHWID(t *testing.T) {
	port := &model.ComPort{
		Name: "COM4",
		HWID: `FTDIBUS\VID_0403+PID_6001+A50285BIA\0000`,
	}

	inspection := inspectPort(port)
	require.Equal(t, "0403:6001", inspection.VidPid)
	require.Equal(t, "0000", inspection.SerialGuess)
}

func TestInspectPortLegacySerial(t *testing.T) {
	port := &model.ComPort{
		Name:        "COM1",
		HWID:        `ACPI\PNP0501\1`,
		Description: "Communications Port (COM1)",
		PnPClass:    "Ports",
	}

	inspection := inspectPort(port)
	require.Empty(t, inspection.VidPid)
	require.Equal(t, "RS-232/PCI/ACPI", string(inspection.Classification.Kind))
}
