// internal/protocol/serial/connection.go
package serial

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// Connection represents a serial port connection
type Connection struct {
	config *Config
	port   serial.Port
	logger *zap.Logger
	mutex  sync.RWMutex
	isOpen bool
}

// Config represents serial port configuration
type Config struct {
	Port     string        `json:"port"`
	BaudRate int           `json:"baud_rate"`
	DataBits int           `json:"data_bits"`
	StopBits int           `json:"stop_bits"`
	Parity   string        `json:"parity"`
	Timeout  time.Duration `json:"timeout"`
}

// NewConnection creates a new serial connection
func NewConnection(config *Config, logger *zap.Logger) (*Connection, error) {
	if config.Port == "" {
		return nil, fmt.Errorf("port is required")
	}
	if config.BaudRate <= 0 {
		config.BaudRate = 9600
	}
	if config.DataBits <= 0 {
		config.DataBits = 8
	}
	if config.StopBits <= 0 {
		config.StopBits = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}

	return &Connection{
		config: config,
		logger: logger,
	}, nil
}

// Open opens the serial connection
func (c *Connection) Open(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.isOpen {
		return nil
	}

	mode := &serial.Mode{
		BaudRate: c.config.BaudRate,
		DataBits: c.config.DataBits,
		StopBits: serial.StopBits(c.config.StopBits),
	}

	switch c.config.Parity {
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}

	port, err := serial.Open(c.config.Port, mode)
	if err != nil {
		c.logger.Error("Failed to open serial port",
			zap.Error(err),
			zap.String("port", c.config.Port),
		)
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	if err := port.SetReadTimeout(c.config.Timeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	c.port = port
	c.isOpen = true

	c.logger.Info("Serial port opened",
		zap.String("port", c.config.Port),
		zap.Int("baud_rate", c.config.BaudRate),
	)

	return nil
}

// Close closes the serial connection
func (c *Connection) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.isOpen || c.port == nil {
		return nil
	}

	if err := c.port.Close(); err != nil {
		c.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	c.port = nil
	c.isOpen = false

	c.logger.Info("Serial port closed", zap.String("port", c.config.Port))
	return nil
}

// DiscardBuffers drops any stale bytes from both directions so an
// exchange only ever sees the response to its own command.
func (c *Connection) DiscardBuffers() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.isOpen || c.port == nil {
		return fmt.Errorf("port not open")
	}
	if err := c.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to reset input buffer: %w", err)
	}
	if err := c.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("failed to reset output buffer: %w", err)
	}
	return nil
}

// Write writes data to the serial port and waits for it to drain.
func (c *Connection) Write(ctx context.Context, data []byte) (int, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.isOpen || c.port == nil {
		return 0, fmt.Errorf("port not open")
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	n, err := c.port.Write(data)
	if err != nil {
		c.logger.Error("Failed to write to serial port",
			zap.Error(err),
			zap.Int("bytes_to_write", len(data)),
		)
		return n, fmt.Errorf("failed to write to serial port: %w", err)
	}
	if n != len(data) {
		return n, fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}
	if err := c.port.Drain(); err != nil {
		return n, fmt.Errorf("failed to drain serial port: %w", err)
	}

	c.logger.Debug("Data written to serial port", zap.Int("bytes_written", n))
	return n, nil
}

// ReadN reads up to maxBytes from the port. A read timeout ends the
// collection with whatever arrived; it is not an error.
func (c *Connection) ReadN(ctx context.Context, maxBytes int) ([]byte, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.isOpen || c.port == nil {
		return nil, fmt.Errorf("port not open")
	}

	collected := make([]byte, 0, maxBytes)
	buffer := make([]byte, maxBytes)
	for len(collected) < maxBytes {
		select {
		case <-ctx.Done():
			return collected, ctx.Err()
		default:
		}

		n, err := c.port.Read(buffer[:maxBytes-len(collected)])
		if err != nil {
			return collected, fmt.Errorf("failed to read from serial port: %w", err)
		}
		if n == 0 {
			// read timeout: the device sent everything it will send
			break
		}
		collected = append(collected, buffer[:n]...)
	}

	c.logger.Debug("Data read from serial port", zap.Int("bytes_read", len(collected)))
	return collected, nil
}

// ReadUntil reads until the response ends with delimiter or the port
// times out. The delimiter stays part of the returned bytes.
func (c *Connection) ReadUntil(ctx context.Context, delimiter []byte) ([]byte, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.isOpen || c.port == nil {
		return nil, fmt.Errorf("port not open")
	}
	if len(delimiter) == 0 {
		delimiter = []byte{'\n'}
	}

	var collected []byte
	buffer := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return collected, ctx.Err()
		default:
		}

		n, err := c.port.Read(buffer)
		if err != nil {
			return collected, fmt.Errorf("failed to read from serial port: %w", err)
		}
		if n == 0 {
			break
		}
		collected = append(collected, buffer[:n]...)
		if bytes.HasSuffix(collected, delimiter) {
			break
		}
	}

	c.logger.Debug("Data read from serial port", zap.Int("bytes_read", len(collected)))
	return collected, nil
}

// IsOpen returns whether the connection is open
func (c *Connection) IsOpen() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.isOpen
}

// GetConfig returns the connection configuration
func (c *Connection) GetConfig() *Config {
	return c.config
}
