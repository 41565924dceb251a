package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"usb-inventory-service/internal/comport"
	"usb-inventory-service/internal/discovery"
	"usb-inventory-service/internal/model"
	"usb-inventory-service/internal/repository"
	"usb-inventory-service/internal/service"
	"usb-inventory-service/internal/usbids"
	"usb-inventory-service/internal/utils"
)

type stubScanner struct {
	snapshots []*model.DeviceSnapshot
}

func (s *stubScanner) Scan(context.Context) ([]*model.DeviceSnapshot, error) {
	return s.snapshots, nil
}

func (s *stubScanner) GetScannerType() string { return "usb" }
func (s *stubScanner) IsAvailable() bool      { return true }

func newDeviceTestRouter(t *testing.T, stored []*model.DeviceSnapshot, scanner discovery.DeviceScanner) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	repo := repository.NewJSONSnapshotRepository(filepath.Join(t.TempDir(), "devices.json"), logger)
	if stored != nil {
		require.NoError(t, repo.Save(stored))
	}

	manager := discovery.NewScannerManager(logger)
	if scanner != nil {
		manager.RegisterScanner(scanner)
	}

	scans := service.NewScanService(logger, manager, repo, nil)
	devices := service.NewDeviceService(logger, scans, comport.NewEnumerator(logger), nil, service.SerialSettings{})
	ids := usbids.NewDatabase(filepath.Join(t.TempDir(), "absent-usb.ids"), logger)

	router := gin.New()
	NewDeviceHandler(devices, scans, ids, logger).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func doRequest(router *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, utils.APIResponse) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var envelope utils.APIResponse
	_ = json.Unmarshal(recorder.Body.Bytes(), &envelope)
	return recorder, envelope
}

func TestListDevicesEnvelope(t *testing.T) {
	stored := []*model.DeviceSnapshot{
		{VID: "0x0403", PID: "0x6001", DeviceType: model.DeviceTypeUSB, Serial: "A50285BI"},
	}
	router := newDeviceTestRouter(t, stored, nil)

	recorder, envelope := doRequest(router, http.MethodGet, "/api/v1/devices", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, envelope.Success)

	data := envelope.Data.(map[string]interface{})
	require.Equal(t, float64(1), data["count"])
}

func TestScanDevices(t *testing.T) {
	scanner := &stubScanner{snapshots: []*model.DeviceSnapshot{
		{VID: "0x1a86", PID: "0x7523", DeviceType: model.DeviceTypeUSB},
	}}
	router := newDeviceTestRouter(t, nil, scanner)

	recorder, envelope := doRequest(router, http.MethodPost, "/api/v1/devices/scan?type=usb", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, envelope.Success)

	data := envelope.Data.(map[string]interface{})
	require.Equal(t, float64(1), data["count"])
	require.NotContains(t, data, "scan_error")
}

func TestScanDevicesUnknownType(t *testing.T) {
	router := newDeviceTestRouter(t, nil, &stubScanner{})

	recorder, envelope := doRequest(router, http.MethodPost, "/api/v1/devices/scan?type=zigbee", "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.False(t, envelope.Success)
}

func TestFindDevicesRequiresVidPid(t *testing.T) {
	router := newDeviceTestRouter(t, nil, nil)

	recorder, envelope := doRequest(router, http.MethodGet, "/api/v1/devices/find?vid=0403", "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.False(t, envelope.Success)
}

func TestFindDevicesMatches(t *testing.T) {
	stored := []*model.DeviceSnapshot{
		{VID: "0x0403", PID: "0x6001", DeviceType: model.DeviceTypeUSB, Serial: "A50285BI"},
		{VID: "0x1a86", PID: "0x7523", DeviceType: model.DeviceTypeUSB},
	}
	router := newDeviceTestRouter(t, stored, nil)

	recorder, envelope := doRequest(router, http.MethodGet, "/api/v1/devices/find?vid=0x0403&pid=6001", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	data := envelope.Data.(map[string]interface{})
	require.Equal(t, float64(1), data["count"])
}

func TestGetPortNoMatchingDevice(t *testing.T) {
	router := newDeviceTestRouter(t, nil, nil)

	recorder, envelope := doRequest(router, http.MethodGet, "/api/v1/devices/port?vid=dead&pid=beef", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.False(t, envelope.Success)
}

func TestSendCommandConflictingReadModes(t *testing.T) {
	stored := []*model.DeviceSnapshot{
		{VID: "0x0403", PID: "0x6001", DeviceType: model.DeviceTypeUSB},
	}
	router := newDeviceTestRouter(t, stored, nil)

	body := `{"vid":"0403","pid":"6001","command":"AT","read_bytes":8,"read_until":"\r\n"}`
	recorder, envelope := doRequest(router, http.MethodPost, "/api/v1/devices/send", body)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.False(t, envelope.Success)
}

func TestSendCommandRequiresIdentifiers(t *testing.T) {
	router := newDeviceTestRouter(t, nil, nil)

	recorder, _ := doRequest(router, http.MethodPost, "/api/v1/devices/send", `{"command":"AT"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestIsConnectedWithoutChecker(t *testing.T) {
	router := newDeviceTestRouter(t, nil, nil)

	recorder, envelope := doRequest(router, http.MethodGet, "/api/v1/devices/connected?vid=0403&pid=6001", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	data := envelope.Data.(map[string]interface{})
	require.Equal(t, false, data["connected"])
}
