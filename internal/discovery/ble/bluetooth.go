// internal/discovery/ble/bluetooth.go - native adapter binding
package ble

import (
	"context"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

// NativeAdapter drives the platform's default Bluetooth radio.
type NativeAdapter struct {
	adapter *bluetooth.Adapter

	enableOnce sync.Once
	enableErr  error

	mu sync.Mutex
}

// NewNativeAdapter returns an adapter bound to the system default radio.
func NewNativeAdapter() *NativeAdapter {
	return &NativeAdapter{adapter: bluetooth.DefaultAdapter}
}

// Enable powers the radio. The underlying stack tolerates only one
// enable per process, so the result is cached.
func (a *NativeAdapter) Enable() error {
	a.enableOnce.Do(func() {
		a.enableErr = a.adapter.Enable()
	})
	return a.enableErr
}

// Scan collects advertisements until the timeout or context fires.
// The underlying Scan call blocks until StopScan, so the stop is driven
// by a timer; results are deduplicated by advertiser address.
func (a *NativeAdapter) Scan(ctx context.Context, timeout time.Duration) ([]Advertisement, error) {
	if err := a.Enable(); err != nil {
		return nil, err
	}

	// tinygo supports one scan at a time per adapter
	a.mu.Lock()
	defer a.mu.Unlock()

	stopTimer := time.AfterFunc(timeout, func() {
		a.adapter.StopScan()
	})
	defer stopTimer.Stop()

	stop := context.AfterFunc(ctx, func() {
		a.adapter.StopScan()
	})
	defer stop()

	var (
		seenMu sync.Mutex
		seen   = make(map[string]int)
		found  []Advertisement
	)
	err := a.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		seenMu.Lock()
		defer seenMu.Unlock()

		address := result.Address.String()
		adv := Advertisement{
			Address: address,
			Name:    result.LocalName(),
			RSSI:    int(result.RSSI),
			UUIDs:   serviceUUIDs(result),
		}
		if idx, ok := seen[address]; ok {
			// keep the richer observation for a repeat advertiser
			if adv.Name != "" || len(adv.UUIDs) > 0 {
				found[idx] = adv
			}
			return
		}
		seen[address] = len(found)
		found = append(found, adv)
	})
	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	seenMu.Lock()
	defer seenMu.Unlock()
	return found, nil
}

func serviceUUIDs(result bluetooth.ScanResult) []string {
	var uuids []string
	for _, element := range result.ServiceData() {
		uuids = append(uuids, element.UUID.String())
	}
	return uuids
}
