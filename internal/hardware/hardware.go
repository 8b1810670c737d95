package hardware

import (
	"context"
	"errors"
	"strings"
)

const (
	CategoryServer     = "Server"
	CategoryNetworking = "Networking"
	CategoryStorage    = "Storage"
)

// Categories are the hardware categories a listing may carry.
var Categories = []string{CategoryServer, CategoryNetworking, CategoryStorage}

var (
	// ErrNotFound means the tracking system has no record for the serial.
	ErrNotFound = errors.New("hardware: serial number not found")
	// ErrUnavailable means the tracking system could not be reached.
	ErrUnavailable = errors.New("hardware: catalog unavailable")
)

type Specs struct {
	CPU     string   `json:"cpu,omitempty"`
	RAM     string   `json:"ram,omitempty"`
	Storage []string `json:"storage,omitempty"`
	Ports   string   `json:"ports,omitempty"`
	Other   string   `json:"other,omitempty"`
}

type Record struct {
	SerialNumber string `json:"serialNumber"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	Category     string `json:"category"`
	Specs        Specs  `json:"specs"`
}

// HasStorageMedia reports whether the record still lists any storage media.
func (r *Record) HasStorageMedia() bool {
	return len(r.Specs.Storage) > 0
}

// Catalog looks hardware up by serial number. Implementations return
// ErrNotFound for unknown serials and must be safe for concurrent use.
type Catalog interface {
	Lookup(ctx context.Context, serialNumber string) (*Record, error)
}

// NormalizeSerial trims surrounding whitespace and upper-cases the serial.
func NormalizeSerial(serial string) string {
	return strings.ToUpper(strings.TrimSpace(serial))
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
