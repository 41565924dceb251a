package comport

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"usb-inventory-service/internal/model"
)

func testPorts() []*model.ComPort {
	return []*model.ComPort{
		{Name: "COM7", VID: "0403", PID: "6001", SerialNumber: "A50285BI", IsUSB: true},
		{Name: "COM8", VID: "0403", PID: "6001", SerialNumber: "A9Z1PP0X", IsUSB: true},
		{Name: "COM3", VID: "1a86", PID: "7523", IsUSB: true},
		{Name: "COM1"},
	}
}

func TestFilterByVidPid(t *testing.T) {
	results := Filter(testPorts(), "0403", "6001", "")
	require.Len(t, results, 2)
	require.Equal(t, "COM7", results[0].Name)
	require.Equal(t, "COM8", results[1].Name)
}

func TestFilterBySerial(t *testing.T) {
	results := Filter(testPorts(), "0403", "6001", "a50285bi")
	require.Len(t, results, 1)
	require.Equal(t, "COM7", results[0].Name)
}

func TestFilterNormalizesArguments(t *testing.T) {
	results := Filter(testPorts(), "0x1A86", "0x7523", "")
	require.Len(t, results, 1)
	require.Equal(t, "COM3", results[0].Name)
}

func TestFilterEmptyArgumentsMatchEverything(t *testing.T) {
	require.Len(t, Filter(testPorts(), "", "", ""), 4)
}

func TestFormatPortName(t *testing.T) {
	require.Empty(t, FormatPortName(""))
	if runtime.GOOS == "windows" {
		require.Equal(t, "COM7", FormatPortName("com7"))
	} else {
		require.Equal(t, "/dev/ttyUSB0", FormatPortName("/dev/ttyUSB0"))
		require.Equal(t, "com7", FormatPortName("com7"))
	}
}

func TestSynthesizeHWID(t *testing.T) {
	port := &model.ComPort{VID: "0403", PID: "6001", SerialNumber: "A50285BI", Location: "1-4", IsUSB: true}
	require.Equal(t, "USB VID:PID=0403:6001 SER=A50285BI LOCATION=1-4", synthesizeHWID(port))

	bare := &model.ComPort{VID: "0403", PID: "6001", IsUSB: true}
	require.Equal(t, "USB VID:PID=0403:6001", synthesizeHWID(bare))

	// A non-USB port without identifiers gets no synthetic hwid.
	require.Empty(t, synthesizeHWID(&model.ComPort{Name: "COM1"}))
}
