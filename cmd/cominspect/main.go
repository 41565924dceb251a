// cmd/cominspect/main.go
//
// One-shot serial port inspector: enumerates the system's serial ports,
// classifies each by transport and prints the report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"usb-inventory-service/internal/comport"
	"usb-inventory-service/internal/service"
)

func main() {
	var (
		timeout = flag.Duration("timeout", 30*time.Second, "enumeration timeout")
		quiet   = flag.Bool("quiet", false, "suppress log output")
	)
	flag.Parse()

	logger := newLogger(*quiet)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	ports := comport.NewEnumerator(logger)
	devices := service.NewDeviceService(logger, nil, ports, nil, service.SerialSettings{})

	report, err := devices.InspectPorts(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "port inspection failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode report: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// newLogger builds a console logger on stderr so stdout stays pure JSON.
func newLogger(quiet bool) *zap.Logger {
	if quiet {
		return zap.NewNop()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
