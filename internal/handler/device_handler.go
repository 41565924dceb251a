// internal/handler/device_handler.go
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usb-inventory-service/internal/model"
	"usb-inventory-service/internal/service"
	"usb-inventory-service/internal/usbids"
	"usb-inventory-service/internal/utils"
)

// DeviceHandler handles device-related HTTP requests
type DeviceHandler struct {
	deviceService *service.DeviceService
	scanService   *service.ScanService
	usbIDs        *usbids.Database
	logger        *utils.ServiceLogger
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(
	deviceService *service.DeviceService,
	scanService *service.ScanService,
	usbIDs *usbids.Database,
	logger *zap.Logger,
) *DeviceHandler {
	return &DeviceHandler{
		deviceService: deviceService,
		scanService:   scanService,
		usbIDs:        usbIDs,
		logger:        utils.NewServiceLogger(logger, "device-handler"),
	}
}

// RegisterRoutes registers device-related routes
func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.GET("", h.ListDevices)
		devices.POST("/scan", h.ScanDevices)
		devices.GET("/find", h.FindDevices)
		devices.GET("/connections", h.GetConnections)
		devices.GET("/port", h.GetPort)
		devices.GET("/connected", h.IsConnected)
		devices.POST("/send", h.SendCommand)
	}
}

// snapshotView decorates a snapshot with usb.ids vendor/product names.
type snapshotView struct {
	*model.DeviceSnapshot
	VendorName  string `json:"vendor_name,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

func (h *DeviceHandler) decorate(snapshots []*model.DeviceSnapshot) []snapshotView {
	views := make([]snapshotView, 0, len(snapshots))
	for _, snapshot := range snapshots {
		view := snapshotView{DeviceSnapshot: snapshot}
		if h.usbIDs != nil && !snapshot.IsPlaceholder() && snapshot.DeviceType == model.DeviceTypeUSB {
			view.VendorName, view.ProductName = h.usbIDs.Lookup(snapshot.VID, snapshot.PID)
		}
		views = append(views, view)
	}
	return views
}

// ListDevices lists the persisted device snapshots
// @Summary List persisted device snapshots
// @Description Get the last persisted snapshot list, decorated with usb.ids names
// @Tags Devices
// @Produce json
// @Success 200 {object} utils.APIResponse "Snapshots retrieved successfully"
// @Router /devices [get]
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	snapshots := h.scanService.Load()
	utils.SuccessResponse(c, http.StatusOK, "Snapshots retrieved successfully", gin.H{
		"devices": h.decorate(snapshots),
		"count":   len(snapshots),
	})
}

// ScanDevices runs a scan pass
// @Summary Scan for devices
// @Description Run a scan pass and persist the result
// @Tags Devices
// @Produce json
// @Param type query string false "Scanner type" Enums(all, usb, ble) default(all)
// @Success 200 {object} utils.APIResponse "Scan completed"
// @Failure 400 {object} utils.APIResponse "Unknown scanner type"
// @Router /devices/scan [post]
func (h *DeviceHandler) ScanDevices(c *gin.Context) {
	scanType := c.DefaultQuery("type", "all")
	switch scanType {
	case "all", "usb", "ble":
	default:
		utils.ErrorResponse(c, http.StatusBadRequest, "Unknown scanner type", errors.New("type must be all, usb or ble"))
		return
	}

	snapshots, scanErr := h.scanService.Refresh(c.Request.Context(), scanType)
	data := gin.H{
		"devices": h.decorate(snapshots),
		"count":   len(snapshots),
	}
	if scanErr != nil {
		data["scan_error"] = scanErr.Error()
	}
	utils.SuccessResponse(c, http.StatusOK, "Scan completed", data)
}

// FindDevices finds snapshots by VID/PID
// @Summary Find device snapshots
// @Description Find persisted snapshots matching VID/PID and optional serial
// @Tags Devices
// @Produce json
// @Param vid query string true "Vendor ID (0x1234 or 1234)"
// @Param pid query string true "Product ID"
// @Param serial query string false "Serial number"
// @Param refresh query bool false "Scan before matching"
// @Success 200 {object} utils.APIResponse "Matching snapshots"
// @Failure 400 {object} utils.APIResponse "Missing parameters"
// @Router /devices/find [get]
func (h *DeviceHandler) FindDevices(c *gin.Context) {
	vid, pid, ok := requireVidPid(c)
	if !ok {
		return
	}

	matches := h.deviceService.FindSnapshots(
		c.Request.Context(), vid, pid, c.Query("serial"), boolQuery(c, "refresh"),
	)
	utils.SuccessResponse(c, http.StatusOK, "Matching snapshots", gin.H{
		"devices": h.decorate(matches),
		"count":   len(matches),
	})
}

// GetConnections returns matching snapshots with resolved COM ports
// @Summary Get device connections
// @Description Per matching snapshot, the resolved COM port plus identity metadata
// @Tags Devices
// @Produce json
// @Param vid query string true "Vendor ID"
// @Param pid query string true "Product ID"
// @Param serial query string false "Serial number"
// @Param refresh query bool false "Scan before matching"
// @Success 200 {object} utils.APIResponse "Connections"
// @Failure 400 {object} utils.APIResponse "Missing parameters"
// @Router /devices/connections [get]
func (h *DeviceHandler) GetConnections(c *gin.Context) {
	vid, pid, ok := requireVidPid(c)
	if !ok {
		return
	}

	connections, err := h.deviceService.FindConnections(
		c.Request.Context(), vid, pid, c.Query("serial"), boolQuery(c, "refresh"),
	)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Connections", gin.H{
		"connections": connections,
		"count":       len(connections),
	})
}

// GetPort resolves the single COM port for a device
// @Summary Resolve COM port
// @Description Resolve the COM port for a VID/PID (+ optional serial)
// @Tags Devices
// @Produce json
// @Param vid query string true "Vendor ID"
// @Param pid query string true "Product ID"
// @Param serial query string false "Serial number"
// @Param refresh query bool false "Scan before matching"
// @Success 200 {object} utils.APIResponse "Resolved port"
// @Failure 404 {object} utils.APIResponse "No matching device or port"
// @Failure 409 {object} utils.APIResponse "Ambiguous match"
// @Router /devices/port [get]
func (h *DeviceHandler) GetPort(c *gin.Context) {
	vid, pid, ok := requireVidPid(c)
	if !ok {
		return
	}

	port, err := h.deviceService.ResolveComPort(
		c.Request.Context(), vid, pid, c.Query("serial"), boolQuery(c, "refresh"),
	)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Resolved port", gin.H{"port": port})
}

// IsConnected checks device presence
// @Summary Check device presence
// @Description Light existence check for a VID/PID (+ optional serial)
// @Tags Devices
// @Produce json
// @Param vid query string true "Vendor ID"
// @Param pid query string true "Product ID"
// @Param serial query string false "Serial number"
// @Success 200 {object} utils.APIResponse "Presence"
// @Router /devices/connected [get]
func (h *DeviceHandler) IsConnected(c *gin.Context) {
	vid, pid, ok := requireVidPid(c)
	if !ok {
		return
	}

	connected := h.deviceService.IsDeviceConnected(c.Request.Context(), vid, pid, c.Query("serial"))
	utils.SuccessResponse(c, http.StatusOK, "Presence", gin.H{"connected": connected})
}

// SendCommand sends a serial command to a resolved device port
// @Summary Send a serial command
// @Description Resolve the device's COM port and perform one write/read exchange
// @Tags Devices
// @Accept json
// @Produce json
// @Param request body service.SendCommandRequest true "Exchange request"
// @Success 200 {object} utils.APIResponse{data=service.SendCommandResult} "Exchange result"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 404 {object} utils.APIResponse "No matching device or port"
// @Failure 409 {object} utils.APIResponse "Ambiguous match"
// @Failure 502 {object} utils.APIResponse "Serial transport failure"
// @Router /devices/send [post]
func (h *DeviceHandler) SendCommand(c *gin.Context) {
	var req service.SendCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.deviceService.SendCommand(c.Request.Context(), req)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.logger.Info("Serial command sent",
		zap.String("port", result.Port),
		zap.Int("bytes_written", result.BytesWritten),
	)
	utils.SuccessResponse(c, http.StatusOK, "Exchange completed", result)
}

// respondServiceError maps correlation errors to HTTP statuses.
func (h *DeviceHandler) respondServiceError(c *gin.Context, err error) {
	var ioErr *service.IOFailure
	switch {
	case errors.Is(err, service.ErrDeviceNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "No matching device", err)
	case errors.Is(err, service.ErrNoComPort):
		utils.ErrorResponse(c, http.StatusNotFound, "No COM port for matching device", err)
	case errors.Is(err, service.ErrAmbiguousPort):
		utils.ErrorResponse(c, http.StatusConflict, "Ambiguous match", err)
	case errors.Is(err, service.ErrExchangeConfig):
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid exchange configuration", err)
	case errors.As(err, &ioErr):
		h.logger.Error("Serial transport failure", zap.Error(err))
		utils.ErrorResponse(c, http.StatusBadGateway, "Serial transport failure", err)
	default:
		h.logger.Error("Device operation failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Device operation failed", err)
	}
}

func requireVidPid(c *gin.Context) (vid, pid string, ok bool) {
	vid = c.Query("vid")
	pid = c.Query("pid")
	if vid == "" || pid == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "vid and pid are required", nil)
		return "", "", false
	}
	return vid, pid, true
}

func boolQuery(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(c.DefaultQuery(key, "false"))
	return err == nil && value
}
