package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "8086", cfg.Server.Port)
	require.Equal(t, "./data/usb_devices.json", cfg.Storage.SnapshotFile)
	require.False(t, cfg.Scan.BLEEnabled)
	require.Equal(t, 10*time.Second, cfg.Scan.BLETimeout)
	require.Equal(t, 9600, cfg.Serial.BaudRate)
	require.Equal(t, 2*time.Second, cfg.Serial.Timeout)
	require.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	require.Equal(t, "usb-inventory-service", cfg.App.Name)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("USB_INVENTORY_SERVER_PORT", "9090")
	t.Setenv("USB_INVENTORY_SERIAL_BAUD_RATE", "115200")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 115200, cfg.Serial.BaudRate)
}

func TestGetServerAddr(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "8086"
	require.Equal(t, "127.0.0.1:8086", cfg.GetServerAddr())
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{}
	cfg.App.Environment = "production"
	require.True(t, cfg.IsProduction())
	require.False(t, cfg.IsDevelopment())

	cfg.App.Environment = "development"
	require.True(t, cfg.IsDevelopment())
}
