package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"usb-inventory-service/internal/discovery"
	"usb-inventory-service/internal/model"
	"usb-inventory-service/internal/repository"
)

type fakeScanner struct {
	scannerType string
	snapshots   []*model.DeviceSnapshot
	err         error
}

func (f *fakeScanner) Scan(context.Context) ([]*model.DeviceSnapshot, error) {
	return f.snapshots, f.err
}

func (f *fakeScanner) GetScannerType() string { return f.scannerType }
func (f *fakeScanner) IsAvailable() bool      { return true }

type unavailableScanner struct {
	fakeScanner
}

func (u *unavailableScanner) IsAvailable() bool { return false }

type recordingPublisher struct {
	events []model.Event
}

func (p *recordingPublisher) Publish(event model.Event) {
	p.events = append(p.events, event)
}

func (p *recordingPublisher) typesSeen() []model.EventType {
	types := make([]model.EventType, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}
	return types
}

func newTestScanService(t *testing.T, scanner discovery.DeviceScanner) (*ScanService, *recordingPublisher, repository.SnapshotRepository) {
	t.Helper()
	logger := zap.NewNop()
	repo := repository.NewJSONSnapshotRepository(filepath.Join(t.TempDir(), "devices.json"), logger)
	manager := discovery.NewScannerManager(logger)
	if scanner != nil {
		manager.RegisterScanner(scanner)
	}
	publisher := &recordingPublisher{}
	return NewScanService(logger, manager, repo, publisher), publisher, repo
}

func TestRefreshPersistsAndPublishes(t *testing.T) {
	scanner := &fakeScanner{
		scannerType: "usb",
		snapshots:   []*model.DeviceSnapshot{snapshotFixture("0x0403", "0x6001", "A50285BI")},
	}
	svc, publisher, repo := newTestScanService(t, scanner)

	snapshots, err := svc.Refresh(context.Background(), "all")
	require.NoError(t, err)
	require.Len(t, snapshots, 1)

	// First pass: everything present counts as added.
	require.Equal(t,
		[]model.EventType{model.EventScanStarted, model.EventDeviceAdded, model.EventScanCompleted},
		publisher.typesSeen(),
	)

	stored := repo.Load()
	require.Len(t, stored, 1)
	require.Equal(t, "SER:A50285BI | VIDPID:0x0403:0x6001", stored[0].Identity())
}

func TestRefreshEmptyScanYieldsPlaceholder(t *testing.T) {
	svc, publisher, repo := newTestScanService(t, &fakeScanner{scannerType: "usb"})

	snapshots, err := svc.Refresh(context.Background(), "all")
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.True(t, snapshots[0].IsPlaceholder())
	require.Equal(t, MsgNoDevicesFound, snapshots[0].Error)

	// The placeholder is persisted but produces no device events.
	require.Equal(t,
		[]model.EventType{model.EventScanStarted, model.EventScanCompleted},
		publisher.typesSeen(),
	)
	require.Equal(t, MsgNoDevicesFound, repo.Load()[0].Error)
}

func TestRefreshScanErrorBecomesPlaceholderMessage(t *testing.T) {
	scanner := &fakeScanner{scannerType: "usb", err: errors.New("libusb missing")}
	svc, _, repo := newTestScanService(t, scanner)

	snapshots, err := svc.Refresh(context.Background(), "all")
	require.EqualError(t, err, "USB: libusb missing")
	require.Len(t, snapshots, 1)
	require.Equal(t, "USB: libusb missing", snapshots[0].Error)
	require.Equal(t, "USB: libusb missing", repo.Load()[0].Error)
}

func TestRefreshStoresAvailabilityDiagnostic(t *testing.T) {
	scanner := &unavailableScanner{fakeScanner{
		scannerType: "ble",
		err:         errors.New("Bluetooth adapter not available"),
	}}
	svc, _, repo := newTestScanService(t, scanner)

	snapshots, err := svc.Refresh(context.Background(), "all")
	require.EqualError(t, err, "BLE: Bluetooth adapter not available")
	require.Len(t, snapshots, 1)
	require.True(t, snapshots[0].IsPlaceholder())
	require.Equal(t, "BLE: Bluetooth adapter not available", snapshots[0].Error)
	require.Equal(t, "BLE: Bluetooth adapter not available", repo.Load()[0].Error)
}

func TestRefreshDiffsAgainstPreviousPass(t *testing.T) {
	scanner := &fakeScanner{
		scannerType: "usb",
		snapshots: []*model.DeviceSnapshot{
			snapshotFixture("0x0403", "0x6001", "A50285BI"),
			snapshotFixture("0x1a86", "0x7523", "XYZ"),
		},
	}
	svc, publisher, _ := newTestScanService(t, scanner)

	_, err := svc.Refresh(context.Background(), "all")
	require.NoError(t, err)

	// Second pass: one device unplugged, one new one attached.
	scanner.snapshots = []*model.DeviceSnapshot{
		snapshotFixture("0x0403", "0x6001", "A50285BI"),
		snapshotFixture("0x046d", "0xc534", ""),
	}
	publisher.events = nil

	_, err = svc.Refresh(context.Background(), "all")
	require.NoError(t, err)

	var added, removed []string
	for _, event := range publisher.events {
		switch event.Type {
		case model.EventDeviceAdded:
			added = append(added, event.Data["key"].(string))
		case model.EventDeviceRemoved:
			removed = append(removed, event.Data["key"].(string))
		}
	}
	require.Equal(t, []string{"0x046d:0xc534"}, added)
	require.Equal(t, []string{"0x1a86:0x7523"}, removed)
}

func TestRefreshUnknownScannerType(t *testing.T) {
	svc, _, _ := newTestScanService(t, &fakeScanner{scannerType: "usb"})

	snapshots, err := svc.Refresh(context.Background(), "ble")
	require.EqualError(t, err, "scanner type not found: ble")
	require.Len(t, snapshots, 1)
	require.True(t, snapshots[0].IsPlaceholder())
}

func TestDiffSnapshotsIgnoresPlaceholders(t *testing.T) {
	previous := []*model.DeviceSnapshot{model.NewPlaceholder("device info does not exist")}
	current := []*model.DeviceSnapshot{snapshotFixture("0x0403", "0x6001", "A50285BI")}

	added, removed := diffSnapshots(previous, current)
	require.Len(t, added, 1)
	require.Empty(t, removed)

	added, removed = diffSnapshots(current, []*model.DeviceSnapshot{model.NewPlaceholder("x")})
	require.Empty(t, added)
	require.Len(t, removed, 1)
}

func TestDiffSnapshotsSameDeviceNoEvents(t *testing.T) {
	a := []*model.DeviceSnapshot{snapshotFixture("0x0403", "0x6001", "A50285BI")}
	b := []*model.DeviceSnapshot{snapshotFixture("0x0403", "0x6001", "A50285BI")}

	added, removed := diffSnapshots(a, b)
	require.Empty(t, added)
	require.Empty(t, removed)
}
