package usbids

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleUsbIDs = `#
#	List of USB ID's
#
0403  Future Technology Devices International, Ltd
	6001  FT232 Serial (UART) IC
	6010  FT2232C/D/H Dual UART/FIFO IC
1a86  QinHeng Electronics
	7523  CH340 serial converter
		00  Some Interface

# List of known device classes, subclasses and protocols

C 00  (Defined at Interface level)
C 01  Audio
	01  Control Device
`

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usb.ids")
	require.NoError(t, os.WriteFile(path, []byte(sampleUsbIDs), 0o644))
	return NewDatabase(path, zap.NewNop())
}

func TestLookup(t *testing.T) {
	db := newTestDatabase(t)

	vendor, product := db.Lookup("0403", "6001")
	require.Equal(t, "Future Technology Devices International, Ltd", vendor)
	require.Equal(t, "FT232 Serial (UART) IC", product)

	vendor, product = db.Lookup("1a86", "7523")
	require.Equal(t, "QinHeng Electronics", vendor)
	require.Equal(t, "CH340 serial converter", product)
}

func TestLookupNormalizesInput(t *testing.T) {
	db := newTestDatabase(t)

	vendor, product := db.Lookup("0x0403", "0x6010")
	require.Equal(t, "Future Technology Devices International, Ltd", vendor)
	require.Equal(t, "FT2232C/D/H Dual UART/FIFO IC", product)

	vendor, _ = db.Lookup("403", "6001")
	require.Equal(t, "Future Technology Devices International, Ltd", vendor)
}

func TestLookupUnknown(t *testing.T) {
	db := newTestDatabase(t)

	vendor, product := db.Lookup("dead", "beef")
	require.Empty(t, vendor)
	require.Empty(t, product)

	// Known vendor, unknown product still yields the vendor name.
	vendor, product = db.Lookup("0403", "ffff")
	require.Equal(t, "Future Technology Devices International, Ltd", vendor)
	require.Empty(t, product)
}

func TestLookupIgnoresClassTables(t *testing.T) {
	// The class table at the end of usb.ids must not register as a
	// vendor, nor may its sub-lines attach to the previous vendor.
	db := newTestDatabase(t)

	vendor, _ := db.Lookup("00", "01")
	require.Empty(t, vendor)

	_, product := db.Lookup("1a86", "0001")
	require.Empty(t, product)
}

func TestLookupMissingFile(t *testing.T) {
	db := NewDatabase(filepath.Join(t.TempDir(), "absent.ids"), zap.NewNop())

	vendor, product := db.Lookup("0403", "6001")
	require.Empty(t, vendor)
	require.Empty(t, product)
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usb.ids")
	require.NoError(t, os.WriteFile(path, []byte("0403  Old Name\n"), 0o644))
	db := NewDatabase(path, zap.NewNop())

	vendor, _ := db.Lookup("0403", "0000")
	require.Equal(t, "Old Name", vendor)

	require.NoError(t, os.WriteFile(path, []byte("0403  New Name\n"), 0o644))
	db.Reload()
	vendor, _ = db.Lookup("0403", "0000")
	require.Equal(t, "New Name", vendor)
}
