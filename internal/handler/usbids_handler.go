// internal/handler/usbids_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"usb-inventory-service/internal/usbids"
	"usb-inventory-service/internal/utils"
)

// UsbIDsHandler serves usb.ids vendor/product lookups
type UsbIDsHandler struct {
	database *usbids.Database
}

// NewUsbIDsHandler creates a new usb.ids handler
func NewUsbIDsHandler(database *usbids.Database) *UsbIDsHandler {
	return &UsbIDsHandler{database: database}
}

// RegisterRoutes registers usb.ids routes
func (h *UsbIDsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/usbids/lookup", h.Lookup)
}

// Lookup resolves vendor and product names from the usb.ids database
// @Summary Look up usb.ids names
// @Description Resolve vendor and product names for a VID/PID pair
// @Tags UsbIDs
// @Produce json
// @Param vid query string true "Vendor ID"
// @Param pid query string true "Product ID"
// @Success 200 {object} utils.APIResponse "Lookup result"
// @Failure 400 {object} utils.APIResponse "Missing parameters"
// @Router /usbids/lookup [get]
func (h *UsbIDsHandler) Lookup(c *gin.Context) {
	vid, pid, ok := requireVidPid(c)
	if !ok {
		return
	}

	vendorName, productName := h.database.Lookup(vid, pid)
	utils.SuccessResponse(c, http.StatusOK, "Lookup result", gin.H{
		"vid":          vid,
		"pid":          pid,
		"vendor_name":  vendorName,
		"product_name": productName,
	})
}
