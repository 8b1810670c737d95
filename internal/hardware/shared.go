package hardware

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// SharedCatalog collapses concurrent lookups of the same serial into a single
// call to the wrapped catalog.
type SharedCatalog struct {
	next  Catalog
	group singleflight.Group
}

func NewSharedCatalog(next Catalog) *SharedCatalog {
	return &SharedCatalog{next: next}
}

func (s *SharedCatalog) Lookup(ctx context.Context, serialNumber string) (*Record, error) {
	serial := NormalizeSerial(serialNumber)
	ch := s.group.DoChan(serial, func() (interface{}, error) {
		// the shared call outlives whichever caller happened to start it
		return s.next.Lookup(context.WithoutCancel(ctx), serial)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		r := *res.Val.(*Record)
		r.Specs.Storage = append([]string(nil), r.Specs.Storage...)
		return &r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
