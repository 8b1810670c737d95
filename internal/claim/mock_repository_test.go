package claim_test

import (
	"context"
	"sort"
	"sync"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/claim"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
)

// mockRepository serialises transactions and rolls back on error.
type mockRepository struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	listings map[int64]*listing.Listing
	claims   map[int64]*claim.Claim
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{listings: map[int64]*listing.Listing{}, claims: map[int64]*claim.Claim{}}
}

func (m *mockRepository) addListing(l *listing.Listing) *listing.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[l.ID] = l
	return l
}

func (m *mockRepository) listingStatus(id int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listings[id].Status
}

func (m *mockRepository) activeClaims(listingID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.claims {
		if c.ListingID == listingID && claim.IsActive(c.Status) {
			n++
		}
	}
	return n
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(tx claim.RepositoryAPI) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	listings := make(map[int64]listing.Listing, len(m.listings))
	for id, l := range m.listings {
		listings[id] = *l
	}
	claims := make(map[int64]claim.Claim, len(m.claims))
	for id, c := range m.claims {
		claims[id] = *c
	}
	nextID := m.nextID
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.listings = map[int64]*listing.Listing{}
		for id, l := range listings {
			l := l
			m.listings[id] = &l
		}
		m.claims = map[int64]*claim.Claim{}
		for id, c := range claims {
			c := c
			m.claims[id] = &c
		}
		m.nextID = nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *mockRepository) GetListing(ctx context.Context, id int64) (*listing.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, internal.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockRepository) HasActiveClaim(ctx context.Context, listingID int64, department string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.claims {
		if c.ListingID == listingID && c.RequestingDepartment == department && claim.IsActive(c.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) Insert(ctx context.Context, c *claim.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.claims[c.ID] = &cp
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*claim.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return nil, internal.ErrClaimNotFound
	}
	return m.join(c), nil
}

func (m *mockRepository) List(ctx context.Context, f claim.Filter) ([]*claim.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*claim.Claim
	for _, c := range m.claims {
		j := m.join(c)
		if f.ListingID > 0 && j.ListingID != f.ListingID {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.OwnerDepartment != "" && j.OwnerDepartment != f.OwnerDepartment {
			continue
		}
		if f.RequestedBy > 0 && j.RequestedBy != f.RequestedBy {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID > out[k].ID })
	return out, nil
}

func (m *mockRepository) ApplyTransition(ctx context.Context, claimID int64, t claim.Transition) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[claimID]
	if !ok || c.Status != t.From {
		return false, nil
	}
	c.Status = t.To
	at, by := t.At, t.ActorID
	switch t.To {
	case claim.StatusPendingSecurity:
		c.OwnerApprovedAt, c.OwnerApprovedBy = &at, &by
	case claim.StatusApproved:
		c.SecurityApprovedAt, c.SecurityApprovedBy = &at, &by
	case claim.StatusDenied:
		c.DeniedAt, c.DeniedBy, c.DenialReason = &at, &by, t.Reason
	}
	return true, nil
}

func (m *mockRepository) SetListingStatus(ctx context.Context, listingID int64, expected, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[listingID]
	if !ok || l.Status != expected {
		return false, nil
	}
	l.Status = next
	return true, nil
}

func (m *mockRepository) join(c *claim.Claim) *claim.Claim {
	cp := *c
	if l, ok := m.listings[c.ListingID]; ok {
		cp.ListingTitle = l.Title
		cp.SerialNumber = l.SerialNumber
		cp.Category = l.Category
		cp.OwnerDepartment = l.Department
		cp.ListingStatus = l.Status
	}
	return &cp
}

// staleRepository reports the statuses a transaction read before a concurrent
// commit changed them, while writes still hit the current state.
type staleRepository struct {
	*mockRepository
	staleListing string
	staleClaim   string
}

func (s *staleRepository) WithTx(ctx context.Context, fn func(tx claim.RepositoryAPI) error) error {
	return s.mockRepository.WithTx(ctx, func(claim.RepositoryAPI) error { return fn(s) })
}

func (s *staleRepository) GetListing(ctx context.Context, id int64) (*listing.Listing, error) {
	l, err := s.mockRepository.GetListing(ctx, id)
	if err == nil && s.staleListing != "" {
		l.Status = s.staleListing
	}
	return l, err
}

func (s *staleRepository) GetByID(ctx context.Context, id int64) (*claim.Claim, error) {
	c, err := s.mockRepository.GetByID(ctx, id)
	if err == nil && s.staleClaim != "" {
		c.Status = s.staleClaim
	}
	return c, err
}

func (s *staleRepository) storedClaimStatus(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims[id].Status
}
