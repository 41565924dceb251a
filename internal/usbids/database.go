// internal/usbids/database.go
package usbids

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"usb-inventory-service/internal/correlation"
)

// Database resolves vendor/product names from a usb.ids file. The file is
// parsed lazily on first lookup and cached until Reload.
type Database struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	vendors map[string]*vendorEntry
}

type vendorEntry struct {
	name     string
	products map[string]string
}

// NewDatabase creates a database over the given usb.ids path. An empty
// path triggers the platform search order (env, working directory, the
// usual hwdata locations).
func NewDatabase(path string, logger *zap.Logger) *Database {
	if path == "" {
		path = FindPath()
	}
	return &Database{
		path:   path,
		logger: logger.With(zap.String("component", "usbids")),
	}
}

// FindPath returns the first existing usb.ids path across the supported
// platforms, or the working-directory default when none exists.
func FindPath() string {
	var candidates []string
	if env := os.Getenv("USB_IDS_PATH"); env != "" {
		candidates = append(candidates, env)
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "usb.ids"))
	}
	candidates = append(candidates,
		"/usr/share/hwdata/usb.ids",
		"/usr/share/misc/usb.ids",
		"/var/lib/usbutils/usb.ids",
		"/opt/homebrew/share/hwdata/usb.ids",
		"/opt/local/share/hwdata/usb.ids",
	)
	if runtime.GOOS == "windows" {
		if programData := os.Getenv("ProgramData"); programData != "" {
			candidates = append(candidates, filepath.Join(programData, "usb.ids"))
		}
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return "usb.ids"
}

// Path returns the resolved usb.ids path.
func (d *Database) Path() string {
	return d.path
}

// Reload drops the parsed cache; the next lookup re-reads the file.
func (d *Database) Reload() {
	d.mu.Lock()
	d.vendors = nil
	d.mu.Unlock()
}

// Lookup resolves vendor and product names for a VID/PID pair. Unknown
// identifiers return empty strings.
func (d *Database) Lookup(vid, pid string) (vendorName, productName string) {
	vendors := d.ensureCache()
	normVID := correlation.NormalizeHexID(vid)
	normPID := correlation.NormalizeHexID(pid)
	if normVID == "" || normPID == "" {
		return "", ""
	}
	entry, ok := vendors[normVID]
	if !ok {
		return "", ""
	}
	return entry.name, entry.products[normPID]
}

func (d *Database) ensureCache() map[string]*vendorEntry {
	d.mu.RLock()
	vendors := d.vendors
	d.mu.RUnlock()
	if vendors != nil {
		return vendors
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.vendors == nil {
		d.vendors = d.parse()
	}
	return d.vendors
}

// parse reads the usb.ids line format: vendor lines at column zero, one
// tab for a product, two tabs for a product interface (ignored here).
func (d *Database) parse() map[string]*vendorEntry {
	vendors := make(map[string]*vendorEntry)

	file, err := os.Open(d.path)
	if err != nil {
		d.logger.Debug("usb.ids not readable", zap.Error(err), zap.String("path", d.path))
		return vendors
	}
	defer file.Close()

	var current *vendorEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "\t\t") {
			continue
		}
		if strings.HasPrefix(line, "\t") {
			if current == nil {
				continue
			}
			id, name := splitIDLine(strings.TrimPrefix(line, "\t"))
			if id == "" {
				continue
			}
			current.products[correlation.NormalizeHexID(id)] = name
			continue
		}
		// Class, audio-terminal and other tables follow the vendor list;
		// their ids are not 4-hex and end the vendor section.
		id, name := splitIDLine(line)
		if !isHexID(id) {
			current = nil
			continue
		}
		current = &vendorEntry{name: name, products: make(map[string]string)}
		vendors[correlation.NormalizeHexID(id)] = current
	}
	if err := scanner.Err(); err != nil {
		d.logger.Warn("usb.ids parse aborted", zap.Error(err), zap.String("path", d.path))
	}

	d.logger.Debug("usb.ids parsed",
		zap.Int("vendors", len(vendors)),
		zap.String("path", d.path),
	)
	return vendors
}

func isHexID(id string) bool {
	if len(id) != 4 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func splitIDLine(line string) (id, name string) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(fields) == 0 || fields[0] == "" {
		return "", ""
	}
	id = fields[0]
	if len(fields) == 2 {
		name = strings.TrimSpace(fields[1])
	}
	return id, name
}
