// internal/service/device_service.go - correlation engine
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"usb-inventory-service/internal/comport"
	"usb-inventory-service/internal/correlation"
	"usb-inventory-service/internal/discovery/usb"
	"usb-inventory-service/internal/model"
	serialproto "usb-inventory-service/internal/protocol/serial"
	"usb-inventory-service/internal/utils"
)

// Sentinel errors of the correlation queries. Handlers map these onto
// HTTP statuses.
var (
	ErrDeviceNotFound = errors.New("no device matches the given VID/PID")
	ErrNoComPort      = errors.New("matching device found but no COM port could be resolved")
	ErrAmbiguousPort  = errors.New("multiple matching COM ports found; specify a serial number to disambiguate")
	ErrExchangeConfig = errors.New("read_bytes and read_until cannot both be set")
)

// ConnectivityChecker is the light device-presence check implemented by
// the USB scanner.
type ConnectivityChecker interface {
	IsConnected(ctx context.Context, vid, pid, serial string) bool
}

// SerialSettings are the exchange defaults applied when a request leaves
// them unset.
type SerialSettings struct {
	BaudRate int
	Timeout  time.Duration
}

// DeviceService answers correlation queries over the persisted snapshots
// and the live serial ports.
type DeviceService struct {
	logger   *zap.Logger
	scans    *ScanService
	ports    *comport.Enumerator
	checker  ConnectivityChecker
	defaults SerialSettings
}

// NewDeviceService creates the correlation query service.
func NewDeviceService(
	logger *zap.Logger,
	scans *ScanService,
	ports *comport.Enumerator,
	checker ConnectivityChecker,
	defaults SerialSettings,
) *DeviceService {
	if defaults.BaudRate <= 0 {
		defaults.BaudRate = 9600
	}
	if defaults.Timeout <= 0 {
		defaults.Timeout = 2 * time.Second
	}
	return &DeviceService{
		logger:   logger.With(zap.String("service", "device")),
		scans:    scans,
		ports:    ports,
		checker:  checker,
		defaults: defaults,
	}
}

// Connection couples one matching snapshot with its resolved COM port.
type Connection struct {
	Snapshot *model.DeviceSnapshot `json:"snapshot"`
	Identity string                `json:"identity"`
	Serial   string                `json:"serial"`
	ComPort  string                `json:"com_port,omitempty"`
	PortPath []int                 `json:"port_path"`
	Bus      *int                  `json:"bus"`
	Address  *int                  `json:"address"`
}

// FindSnapshots returns the USB snapshots matching the given identifiers.
// Placeholders and BLE snapshots never match. The serial filter applies
// only when a target serial is given.
func (s *DeviceService) FindSnapshots(ctx context.Context, vid, pid, serial string, refresh bool) []*model.DeviceSnapshot {
	var snapshots []*model.DeviceSnapshot
	if refresh {
		snapshots, _ = s.scans.Refresh(ctx, "all")
	} else {
		snapshots = s.scans.Load()
	}

	targetVID := correlation.NormalizeHexID(vid)
	targetPID := correlation.NormalizeHexID(pid)
	targetSerial := correlation.NormalizeSerial(serial)

	var matches []*model.DeviceSnapshot
	for _, snapshot := range snapshots {
		if snapshot.IsPlaceholder() || snapshot.DeviceType != model.DeviceTypeUSB {
			continue
		}
		if correlation.NormalizeHexID(snapshot.VID) != targetVID {
			continue
		}
		if correlation.NormalizeHexID(snapshot.PID) != targetPID {
			continue
		}
		if targetSerial != "" && correlation.NormalizeSerial(snapshot.Serial) != targetSerial {
			continue
		}
		matches = append(matches, snapshot)
	}
	return matches
}

// FindConnections returns each matching snapshot with its resolved COM
// port, if one exists.
func (s *DeviceService) FindConnections(ctx context.Context, vid, pid, serial string, refresh bool) ([]*Connection, error) {
	snapshots := s.FindSnapshots(ctx, vid, pid, serial, refresh)
	ports, err := s.ports.List()
	if err != nil {
		s.logger.Warn("Serial port enumeration failed", zap.Error(err))
		ports = nil
	}

	connections := make([]*Connection, 0, len(snapshots))
	for _, snapshot := range snapshots {
		connections = append(connections, &Connection{
			Snapshot: snapshot,
			Identity: snapshot.Identity(),
			Serial:   snapshot.Serial,
			ComPort:  matchComPort(snapshot, ports),
			PortPath: snapshot.PortPath,
			Bus:      snapshot.Bus,
			Address:  snapshot.Address,
		})
	}
	return connections, nil
}

// matchComPort picks the first enumeration-order port with equal
// normalized VID/PID whose serial the snapshot's serial does not
// contradict. A snapshot without a serial accepts any port serial.
func matchComPort(snapshot *model.DeviceSnapshot, ports []*model.ComPort) string {
	snapVID := correlation.NormalizeHexID(snapshot.VID)
	snapPID := correlation.NormalizeHexID(snapshot.PID)
	snapSerial := correlation.NormalizeSerial(snapshot.Serial)

	for _, port := range ports {
		if correlation.NormalizeHexID(port.VID) != snapVID {
			continue
		}
		if correlation.NormalizeHexID(port.PID) != snapPID {
			continue
		}
		if snapSerial != "" && snapSerial != correlation.NormalizeSerial(port.SerialNumber) {
			continue
		}
		return port.Name
	}
	return ""
}

// ResolveComPort resolves the single COM port for a device. More than one
// port-carrying match without a disambiguating serial is an error, never
// an arbitrary pick.
func (s *DeviceService) ResolveComPort(ctx context.Context, vid, pid, serial string, refresh bool) (string, error) {
	connections, err := s.FindConnections(ctx, vid, pid, serial, refresh)
	if err != nil {
		return "", err
	}
	target, err := pickConnection(connections, serial)
	if err != nil {
		return "", err
	}
	return target.ComPort, nil
}

func pickConnection(connections []*Connection, serial string) (*Connection, error) {
	if len(connections) == 0 {
		return nil, ErrDeviceNotFound
	}

	var candidates []*Connection
	for _, conn := range connections {
		if conn.ComPort != "" {
			candidates = append(candidates, conn)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoComPort
	}
	if len(candidates) > 1 && serial == "" {
		return nil, ErrAmbiguousPort
	}
	return candidates[0], nil
}

// IsDeviceConnected is the light presence check, delegated to the scanner.
func (s *DeviceService) IsDeviceConnected(ctx context.Context, vid, pid, serial string) bool {
	if s.checker == nil {
		return false
	}
	return s.checker.IsConnected(ctx, vid, pid, serial)
}

// IsPortConnected reports whether a named port currently exists.
func (s *DeviceService) IsPortConnected(name string) bool {
	return s.ports.IsPortConnected(name)
}

// ListPorts returns the live serial ports.
func (s *DeviceService) ListPorts(refresh bool) ([]*model.ComPort, error) {
	return s.ports.Cached(refresh)
}

// IOFailure is a serial transport failure tagged with the port it
// happened on.
type IOFailure struct {
	Port string
	Err  error
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("serial exchange on %s failed: %v", e.Port, e.Err)
}

func (e *IOFailure) Unwrap() error { return e.Err }

// SendCommandRequest describes one serial exchange. ReadBytes and
// ReadUntil are mutually exclusive; a non-nil empty ReadUntil means
// newline. ReadBytes <= 0 counts as unset.
type SendCommandRequest struct {
	VID           string  `json:"vid" binding:"required"`
	PID           string  `json:"pid" binding:"required"`
	Serial        string  `json:"serial"`
	Command       string  `json:"command"`
	AppendNewline bool    `json:"append_newline"`
	Refresh       bool    `json:"refresh"`
	BaudRate      int     `json:"baud_rate"`
	TimeoutSec    float64 `json:"timeout_sec"`
	ReadBytes     int     `json:"read_bytes"`
	ReadUntil     *string `json:"read_until"`
}

// SendCommandResult reports one completed serial exchange.
type SendCommandResult struct {
	Port         string      `json:"port"`
	BytesWritten int         `json:"bytes_written"`
	ResponseRaw  []byte      `json:"response_raw"`
	ResponseText string      `json:"response_text"`
	Device       *Connection `json:"device"`
}

// SendCommand resolves the port for the requested device and performs one
// write/read exchange on it. Transport errors come back as *IOFailure.
func (s *DeviceService) SendCommand(ctx context.Context, req SendCommandRequest) (*SendCommandResult, error) {
	if req.ReadBytes > 0 && req.ReadUntil != nil {
		return nil, ErrExchangeConfig
	}

	connections, err := s.FindConnections(ctx, req.VID, req.PID, req.Serial, req.Refresh)
	if err != nil {
		return nil, err
	}
	target, err := pickConnection(connections, req.Serial)
	if err != nil {
		return nil, err
	}
	portName := comport.FormatPortName(target.ComPort)

	baudRate := req.BaudRate
	if baudRate <= 0 {
		baudRate = s.defaults.BaudRate
	}
	timeout := s.defaults.Timeout
	if req.TimeoutSec > 0 {
		timeout = time.Duration(req.TimeoutSec * float64(time.Second))
	}

	portLog := utils.NewPortLogger(s.logger, portName)
	started := time.Now()

	conn, err := serialproto.NewConnection(&serialproto.Config{
		Port:     portName,
		BaudRate: baudRate,
		Timeout:  timeout,
	}, s.logger)
	if err != nil {
		return nil, err
	}
	if err := conn.Open(ctx); err != nil {
		return nil, &IOFailure{Port: portName, Err: err}
	}
	defer conn.Close()

	if err := conn.DiscardBuffers(); err != nil {
		return nil, &IOFailure{Port: portName, Err: err}
	}

	payload := []byte(req.Command)
	if req.AppendNewline && !bytes.HasSuffix(payload, []byte("\n")) {
		payload = append(payload, '\n')
	}

	written, err := conn.Write(ctx, payload)
	if err != nil {
		portLog.LogExchange(written, 0, time.Since(started), err)
		return nil, &IOFailure{Port: portName, Err: err}
	}

	var response []byte
	switch {
	case req.ReadUntil != nil:
		delimiter := []byte(*req.ReadUntil)
		response, err = conn.ReadUntil(ctx, delimiter)
	case req.ReadBytes > 0:
		response, err = conn.ReadN(ctx, req.ReadBytes)
	}
	if err != nil {
		portLog.LogExchange(written, len(response), time.Since(started), err)
		return nil, &IOFailure{Port: portName, Err: err}
	}

	responseText := ""
	if utf8.Valid(response) {
		responseText = string(response)
	}

	portLog.LogExchange(written, len(response), time.Since(started), nil)
	return &SendCommandResult{
		Port:         portName,
		BytesWritten: written,
		ResponseRaw:  response,
		ResponseText: responseText,
		Device:       target,
	}, nil
}

// PortInspection is one entry of the full port inspection report.
type PortInspection struct {
	Port           string                     `json:"port"`
	Classification correlation.Classification `json:"classification"`
	Description    string                     `json:"description"`
	HWID           string                     `json:"hwid"`
	VidPid         string                     `json:"vid_pid,omitempty"`
	SerialGuess    string                     `json:"serial_guess,omitempty"`
	Location       string                     `json:"location,omitempty"`

	PnPName             string   `json:"pnp_name,omitempty"`
	PnPManufacturer     string   `json:"pnp_manufacturer,omitempty"`
	PnPStatus           string   `json:"pnp_status,omitempty"`
	PnPClass            string   `json:"pnp_class,omitempty"`
	LocationInformation string   `json:"location_information,omitempty"`
	TopologyChain       []string `json:"topology_chain,omitempty"`
	USBControllers      []string `json:"usb_controllers,omitempty"`
}

// InspectPorts builds the full classification report over the live ports.
func (s *DeviceService) InspectPorts(ctx context.Context, refresh bool) ([]PortInspection, error) {
	ports, err := s.ports.Cached(refresh)
	if err != nil {
		return nil, err
	}

	inspections := make([]PortInspection, 0, len(ports))
	for _, port := range ports {
		inspections = append(inspections, inspectPort(port))
	}
	return inspections, nil
}

func inspectPort(port *model.ComPort) PortInspection {
	vid := port.VID
	pid := port.PID
	if vid == "" || pid == "" {
		if hwVID, hwPID := usb.ParseVidPid(port.HWID); hwVID != "" && hwPID != "" {
			if vid == "" {
				vid = hwVID
			}
			if pid == "" {
				pid = hwPID
			}
		}
	}

	vidPid := ""
	if vid != "" && pid != "" {
		vidPid = fmt.Sprintf("%s:%s",
			strings.ToUpper(correlation.NormalizeHexID(vid)),
			strings.ToUpper(correlation.NormalizeHexID(pid)),
		)
	}

	serialGuess := strings.TrimSpace(port.SerialNumber)
	if serialGuess == "" && port.HWID != "" {
		serialGuess = usb.ParseSerialTail(port.HWID)
	}

	return PortInspection{
		Port:                comport.FormatPortName(port.Name),
		Classification:      correlation.ClassifyPort(port.HWID, port.Description, port.PnPClass, vid, pid),
		Description:         port.Description,
		HWID:                port.HWID,
		VidPid:              vidPid,
		SerialGuess:         serialGuess,
		Location:            port.Location,
		PnPName:             port.PnPName,
		PnPManufacturer:     port.PnPManufacturer,
		PnPStatus:           port.PnPStatus,
		PnPClass:            port.PnPClass,
		LocationInformation: port.LocationInformation,
		TopologyChain:       usb.ParseLocationChain(port.LocationInformation),
		USBControllers:      port.USBControllers,
	}
}
