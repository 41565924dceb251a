// internal/handler/port_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usb-inventory-service/internal/service"
	"usb-inventory-service/internal/utils"
)

// PortHandler handles COM port HTTP requests
type PortHandler struct {
	deviceService *service.DeviceService
	logger        *utils.ServiceLogger
}

// NewPortHandler creates a new port handler
func NewPortHandler(deviceService *service.DeviceService, logger *zap.Logger) *PortHandler {
	return &PortHandler{
		deviceService: deviceService,
		logger:        utils.NewServiceLogger(logger, "port-handler"),
	}
}

// RegisterRoutes registers port-related routes
func (h *PortHandler) RegisterRoutes(router *gin.RouterGroup) {
	ports := router.Group("/ports")
	{
		ports.GET("", h.ListPorts)
		ports.GET("/connected", h.IsPortConnected)
		ports.GET("/inspect", h.InspectPorts)
	}
}

// ListPorts lists serial ports
// @Summary List serial ports
// @Description Enumerate the system's serial ports with USB metadata where known
// @Tags Ports
// @Produce json
// @Param refresh query bool false "Force a fresh enumeration"
// @Success 200 {object} utils.APIResponse "Ports retrieved successfully"
// @Failure 500 {object} utils.APIResponse "Enumeration failed"
// @Router /ports [get]
func (h *PortHandler) ListPorts(c *gin.Context) {
	ports, err := h.deviceService.ListPorts(boolQuery(c, "refresh"))
	if err != nil {
		h.logger.Error("Port enumeration failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Port enumeration failed", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Ports retrieved successfully", gin.H{
		"ports": ports,
		"count": len(ports),
	})
}

// IsPortConnected checks whether a named port exists
// @Summary Check port presence
// @Description Check whether a named serial port is currently present
// @Tags Ports
// @Produce json
// @Param name query string true "Port name (COM7, /dev/ttyUSB0 or 7)"
// @Success 200 {object} utils.APIResponse "Presence"
// @Failure 400 {object} utils.APIResponse "Missing name"
// @Router /ports/connected [get]
func (h *PortHandler) IsPortConnected(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "name is required", nil)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Presence", gin.H{
		"port":      name,
		"connected": h.deviceService.IsPortConnected(name),
	})
}

// InspectPorts classifies every serial port
// @Summary Inspect serial ports
// @Description Per port, a transport classification with confidence plus PnP and topology detail
// @Tags Ports
// @Produce json
// @Param refresh query bool false "Force a fresh enumeration"
// @Success 200 {object} utils.APIResponse "Inspection report"
// @Failure 500 {object} utils.APIResponse "Enumeration failed"
// @Router /ports/inspect [get]
func (h *PortHandler) InspectPorts(c *gin.Context) {
	report, err := h.deviceService.InspectPorts(c.Request.Context(), boolQuery(c, "refresh"))
	if err != nil {
		h.logger.Error("Port inspection failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Port inspection failed", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Inspection report", gin.H{
		"ports": report,
		"count": len(report),
	})
}
