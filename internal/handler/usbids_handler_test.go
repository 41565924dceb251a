package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"usb-inventory-service/internal/usbids"
)

func newUsbIDsTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "usb.ids")
	data := "0403  Future Technology Devices International, Ltd\n\t6001  FT232 Serial (UART) IC\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	router := gin.New()
	NewUsbIDsHandler(usbids.NewDatabase(path, zap.NewNop())).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestUsbIDsLookup(t *testing.T) {
	router := newUsbIDsTestRouter(t)

	recorder, envelope := doRequest(router, http.MethodGet, "/api/v1/usbids/lookup?vid=0x0403&pid=6001", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, envelope.Success)

	data := envelope.Data.(map[string]interface{})
	require.Equal(t, "Future Technology Devices International, Ltd", data["vendor_name"])
	require.Equal(t, "FT232 Serial (UART) IC", data["product_name"])
}

func TestUsbIDsLookupUnknownIDs(t *testing.T) {
	router := newUsbIDsTestRouter(t)

	recorder, envelope := doRequest(router, http.MethodGet, "/api/v1/usbids/lookup?vid=dead&pid=beef", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	data := envelope.Data.(map[string]interface{})
	require.Equal(t, "", data["vendor_name"])
	require.Equal(t, "", data["product_name"])
}

func TestUsbIDsLookupMissingParams(t *testing.T) {
	router := newUsbIDsTestRouter(t)

	recorder, envelope := doRequest(router, http.MethodGet, "/api/v1/usbids/lookup?vid=0403", "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.False(t, envelope.Success)
}
