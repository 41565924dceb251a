// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "usb-inventory-service/docs"
	"usb-inventory-service/internal/comport"
	"usb-inventory-service/internal/config"
	"usb-inventory-service/internal/discovery"
	"usb-inventory-service/internal/discovery/ble"
	"usb-inventory-service/internal/discovery/usb"
	"usb-inventory-service/internal/handler"
	"usb-inventory-service/internal/repository"
	"usb-inventory-service/internal/routes"
	"usb-inventory-service/internal/service"
	"usb-inventory-service/internal/usbids"
	"usb-inventory-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server

	// Services
	scanService   *service.ScanService
	deviceService *service.DeviceService

	// Infrastructure
	snapshotRepo repository.SnapshotRepository
	usbIDs       *usbids.Database
	ports        *comport.Enumerator
	usbScanner   *usb.Scanner
	scanners     *discovery.ScannerManager
	wsHandler    *handler.WebSocketHandler

	stopAutoScan chan struct{}
}

// @title USB Inventory Service API
// @version 1.0.0
// @description USB device inventory with COM port correlation, port classification and serial command exchange
// @termsOfService http://swagger.io/terms/

// @contact.name USB Inventory Service Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8086
// @BasePath /api/v1
func main() {
	// Initialize application
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Start the application
	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Create service logger
	serviceLogger := utils.NewServiceLogger(logger, "usb-inventory-service")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config:       cfg,
		logger:       logger,
		stopAutoScan: make(chan struct{}),
	}

	app.initializeStorage()
	app.initializeScanners()

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeStorage sets up the snapshot store and the usb.ids database
func (app *Application) initializeStorage() {
	app.snapshotRepo = repository.NewJSONSnapshotRepository(app.config.Storage.SnapshotFile, app.logger)

	idsPath := app.config.UsbIDs.Path
	if idsPath == "" {
		idsPath = usbids.FindPath()
	}
	app.usbIDs = usbids.NewDatabase(idsPath, app.logger)

	app.logger.Info("Storage initialized",
		zap.String("snapshot_file", app.snapshotRepo.Path()),
		zap.String("usbids_path", idsPath),
	)
}

// initializeScanners registers the platform USB scanner and, when enabled,
// the BLE scanner with the scanner manager
func (app *Application) initializeScanners() {
	app.scanners = discovery.NewScannerManager(app.logger)

	app.usbScanner = usb.NewScanner(app.logger)
	app.scanners.RegisterScanner(app.usbScanner)

	if app.config.Scan.BLEEnabled {
		bleScanner := ble.NewScanner(app.logger, ble.NewNativeAdapter(), app.config.Scan.BLETimeout)
		app.scanners.RegisterScanner(bleScanner)
	}

	app.logger.Info("Scanners initialized",
		zap.Strings("available", app.scanners.GetAvailableScanners()),
		zap.Bool("ble_enabled", app.config.Scan.BLEEnabled),
	)
}

// initializeServices creates service instances
func (app *Application) initializeServices() error {
	// WebSocket stack first: its event bus feeds the scan service
	app.wsHandler = handler.NewWebSocketHandler(app.logger)

	app.scanService = service.NewScanService(
		app.logger,
		app.scanners,
		app.snapshotRepo,
		app.wsHandler.Publisher(),
	)

	app.ports = comport.NewEnumerator(app.logger)

	app.deviceService = service.NewDeviceService(
		app.logger,
		app.scanService,
		app.ports,
		app.usbScanner,
		service.SerialSettings{
			BaudRate: app.config.Serial.BaudRate,
			Timeout:  app.config.Serial.Timeout,
		},
	)

	app.logger.Info("Services initialized successfully")
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	// Create router
	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		app.snapshotRepo,
		app.usbIDs,
		app.deviceService,
		app.scanService,
		app.wsHandler,
	)

	// Setup router with all routes
	router := routerManager.SetupRouter()

	// Create HTTP server
	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)

	return nil
}

// startBackgroundServices starts background services
func (app *Application) startBackgroundServices() {
	if app.config.Scan.AutoScanInterval > 0 {
		go app.startAutoScan()
	}
}

// startAutoScan periodically refreshes the device inventory so WebSocket
// subscribers see attach/detach events without polling the API
func (app *Application) startAutoScan() {
	ticker := time.NewTicker(app.config.Scan.AutoScanInterval)
	defer ticker.Stop()

	app.logger.Info("Auto scan started",
		zap.Duration("interval", app.config.Scan.AutoScanInterval),
	)

	for {
		select {
		case <-app.stopAutoScan:
			app.logger.Info("Auto scan stopped")
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			if _, err := app.scanService.Refresh(ctx, "all"); err != nil {
				app.logger.Warn("Auto scan finished with problems", zap.Error(err))
			}
			cancel()
		}
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	// Create channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for signal
	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Perform graceful shutdown
	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "usb-inventory-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	close(app.stopAutoScan)

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	// Flush logger
	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}

	app.logger.Info("Application shutdown completed")
}

func (app *Application) Start() error {
	// Start server in goroutine
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Start background services
	app.startBackgroundServices()

	// Wait for interrupt signal
	app.waitForShutdown()

	return nil
}
