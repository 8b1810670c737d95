package listing_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
)

type mockRepository struct {
	mu       sync.Mutex
	listings map[int64]*listing.Listing
	nextID   int64
	blocked  map[int64]bool // listings with an active claim
	err      error
}

func newMockRepository() *mockRepository {
	return &mockRepository{listings: map[int64]*listing.Listing{}, blocked: map[int64]bool{}}
}

func (m *mockRepository) Create(ctx context.Context, l *listing.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.listings {
		if existing.SerialNumber == l.SerialNumber {
			return internal.ErrDuplicateSerial
		}
	}
	m.nextID++
	l.ID = m.nextID
	l.CreatedAt = time.Now().Add(time.Duration(m.nextID) * time.Millisecond)
	cp := *l
	m.listings[l.ID] = &cp
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*listing.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.listings[id]
	if !ok {
		return nil, internal.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockRepository) ExistsBySerial(ctx context.Context, serial string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.listings {
		if l.SerialNumber == serial {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) List(ctx context.Context, f listing.Filter) ([]*listing.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*listing.Listing
	for _, l := range m.listings {
		if f.Category != "" && l.Category != f.Category {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(l.Title), strings.ToLower(f.Search)) {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, f listing.UpdateFields) (*listing.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, internal.ErrListingNotFound
	}
	if f.Title != nil {
		l.Title = *f.Title
	}
	if f.Description != nil {
		l.Description = *f.Description
	}
	if f.Location != nil {
		l.Location = *f.Location
	}
	if f.Condition != nil {
		l.Condition = *f.Condition
	}
	if f.ExpirationDate != nil {
		l.ExpirationDate = *f.ExpirationDate
	}
	cp := *l
	return &cp, nil
}

func (m *mockRepository) CompareAndSetStatus(ctx context.Context, id int64, expected, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok || l.Status != expected {
		return false, nil
	}
	l.Status = next
	return true, nil
}

func (m *mockRepository) DeleteIfRemovable(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok || l.Status != listing.StatusAvailable || m.blocked[id] {
		return false, nil
	}
	delete(m.listings, id)
	return true, nil
}

func (m *mockRepository) ListExpirable(ctx context.Context, cutoff time.Time) ([]*listing.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*listing.Listing
	for _, l := range m.listings {
		if l.Status == listing.StatusAvailable && l.ExpirationDate.Before(cutoff) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepository) put(l *listing.Listing) *listing.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l.ID = m.nextID
	cp := *l
	m.listings[l.ID] = &cp
	return l
}
