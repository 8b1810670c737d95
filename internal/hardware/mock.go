package hardware

import (
	"context"
	"sync"
	"time"
)

// MockCatalog is an in-memory Catalog with optional simulated latency.
type MockCatalog struct {
	mu      sync.RWMutex
	records map[string]Record
	latency time.Duration
}

func NewMockCatalog(latency time.Duration, records ...Record) *MockCatalog {
	m := &MockCatalog{
		records: make(map[string]Record, len(records)),
		latency: latency,
	}
	for _, r := range records {
		m.Put(r)
	}
	return m
}

// NewReferenceCatalog returns a mock preloaded with ReferenceInventory.
func NewReferenceCatalog(latency time.Duration) *MockCatalog {
	return NewMockCatalog(latency, ReferenceInventory()...)
}

func (m *MockCatalog) Put(r Record) {
	r.SerialNumber = NormalizeSerial(r.SerialNumber)
	m.mu.Lock()
	m.records[r.SerialNumber] = r
	m.mu.Unlock()
}

func (m *MockCatalog) Lookup(ctx context.Context, serialNumber string) (*Record, error) {
	if m.latency > 0 {
		t := time.NewTimer(m.latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.RLock()
	r, ok := m.records[NormalizeSerial(serialNumber)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	r.Specs.Storage = append([]string(nil), r.Specs.Storage...)
	return &r, nil
}

// ReferenceInventory is the hardware the tracking system knows about out of
// the box. Two entries still carry drives and are blocked by CanList.
func ReferenceInventory() []Record {
	return []Record{
		{
			SerialNumber: "SRV-DELL-R740-001",
			Model:        "Dell PowerEdge R740",
			Manufacturer: "Dell",
			Category:     CategoryServer,
			Specs: Specs{
				CPU:     "2x Intel Xeon Gold 6140 (18-core, 2.3GHz)",
				RAM:     "384GB DDR4 ECC",
				Storage: []string{"4x 1.2TB SAS HDD", "2x 960GB SATA SSD"},
				Ports:   "4x 1GbE, 2x 10GbE SFP+",
				Other:   "Dual 1100W PSU, iDRAC9 Enterprise, GPU-ready",
			},
		},
		{
			SerialNumber: "SRV-HP-DL360-002",
			Model:        "HP ProLiant DL360 Gen10",
			Manufacturer: "HP",
			Category:     CategoryServer,
			Specs: Specs{
				CPU:     "2x Intel Xeon Silver 4214 (12-core, 2.2GHz)",
				RAM:     "128GB DDR4 ECC",
				Storage: []string{},
				Ports:   "4x 1GbE",
				Other:   "Dual 800W PSU, iLO 5, drives removed",
			},
		},
		{
			SerialNumber: "NET-CISCO-3850-001",
			Model:        "Cisco Catalyst 3850-48P",
			Manufacturer: "Cisco",
			Category:     CategoryNetworking,
			Specs: Specs{
				Ports: "48x 1GbE PoE+, 4x 10G SFP+",
				Other: "LAN Base license, dual power supply, stacking ready",
			},
		},
		{
			SerialNumber: "NET-JUNIPER-EX4300-001",
			Model:        "Juniper EX4300-48T",
			Manufacturer: "Juniper",
			Category:     CategoryNetworking,
			Specs: Specs{
				Ports: "48x 1GbE, 4x 10GbE SFP+",
				Other: "JUNOS Enhanced Layer 3, redundant power, QSFP+ uplink",
			},
		},
		{
			SerialNumber: "STG-NETAPP-FAS2650-001",
			Model:        "NetApp FAS2650",
			Manufacturer: "NetApp",
			Category:     CategoryStorage,
			Specs: Specs{
				Storage: []string{"24x 1.8TB SAS HDD"},
				Ports:   "4x 10GbE, 2x 16Gb FC",
				Other:   "Dual controller, ONTAP 9.x",
			},
		},
		{
			SerialNumber: "STG-DISK-SHELF-001",
			Model:        "NetApp DS4246 Disk Shelf",
			Manufacturer: "NetApp",
			Category:     CategoryStorage,
			Specs: Specs{
				Storage: []string{},
				Ports:   "2x SAS connections",
				Other:   "24-bay 3.5\" disk shelf, dual IOM6 modules, no drives included",
			},
		},
	}
}
