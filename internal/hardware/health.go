package hardware

import (
	"context"
	"errors"
)

const probeSerial = "HEALTHCHECK-PROBE"

// Probe reports whether catalog answers at all. A not-found answer for the
// probe serial counts as reachable.
func Probe(ctx context.Context, catalog Catalog) error {
	_, err := catalog.Lookup(ctx, probeSerial)
	if err == nil || errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
