// internal/model/comport.go
package model

// ComPort is one live serial/COM port as reported by the OS. VID, PID and
// SerialNumber are best-effort: on platforms where the enumerator carries
// no USB metadata they stay empty and must be treated as "unknown", never
// as a mismatch.
type ComPort struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	HWID         string `json:"hwid"`
	VID          string `json:"vid"`
	PID          string `json:"pid"`
	SerialNumber string `json:"serial_number"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Product      string `json:"product,omitempty"`
	Location     string `json:"location,omitempty"`
	IsUSB        bool   `json:"is_usb"`

	// PnP enrichment, filled on Windows only
	PnPName             string   `json:"pnp_name,omitempty"`
	PnPManufacturer     string   `json:"pnp_manufacturer,omitempty"`
	PnPClass            string   `json:"pnp_class,omitempty"`
	PnPStatus           string   `json:"pnp_status,omitempty"`
	LocationInformation string   `json:"location_information,omitempty"`
	USBControllers      []string `json:"usb_controllers,omitempty"`
}
