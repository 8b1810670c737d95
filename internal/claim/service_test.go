package claim_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	"github.com/frahmantamala/hardware-marketplace/internal/claim"
	"github.com/frahmantamala/hardware-marketplace/internal/core/events"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, e.EventType())
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

var (
	owner    = &auth.User{ID: 1, Department: "IT Infrastructure"}
	qa       = &auth.User{ID: 2, Department: "QA"}
	dev      = &auth.User{ID: 3, Department: "Development Team"}
	security = &auth.User{ID: 4, Department: "Security Team"}
)

var _ = Describe("Claim Service", func() {
	var (
		repo      *mockRepository
		publisher *recordingPublisher
		service   *claim.Service
		ctx       = context.Background()
		l1        *listing.Listing
	)

	file := func(actor *auth.User) (*claim.Claim, error) {
		return service.FileClaim(ctx, claim.FileClaimDTO{ListingID: l1.ID, Justification: "Needed for the test lab"}, actor)
	}

	expectConflict := func(err error, sentinel *internal.AppError) {
		ExpectWithOffset(1, errors.Is(err, sentinel)).To(BeTrue(), "got %v", err)
		appErr, _ := internal.IsAppError(err)
		ExpectWithOffset(1, appErr.StatusCode).To(Equal(409))
	}

	BeforeEach(func() {
		repo = newMockRepository()
		publisher = &recordingPublisher{}
		service = claim.NewService(repo, auth.NewCapabilityChecker("security"), publisher, quietLogger)
		l1 = repo.addListing(&listing.Listing{ID: 10, SerialNumber: "SRV-HP-DL360-002", Title: "ProLiant", Category: "Server", Department: "IT Infrastructure", Status: listing.StatusAvailable})
	})

	Describe("FileClaim", func() {
		It("creates a pending_owner claim and flips the listing to claimed", func() {
			c, err := file(qa)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(claim.StatusPendingOwner))
			Expect(c.RequestingDepartment).To(Equal("QA"))
			Expect(c.RequestedBy).To(Equal(int64(2)))
			Expect(c.OwnerDepartment).To(Equal("IT Infrastructure"))
			Expect(c.ListingStatus).To(Equal(listing.StatusClaimed))
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusClaimed))
			Expect(publisher.published()).To(Equal([]string{events.EventTypeClaimFiled}))
		})

		It("rejects further claims once the listing is claimed", func() {
			_, err := file(qa)
			Expect(err).NotTo(HaveOccurred())

			_, err = file(qa)
			expectConflict(err, internal.ErrListingUnavailable)

			_, err = file(security)
			expectConflict(err, internal.ErrListingUnavailable)
			Expect(repo.activeClaims(l1.ID)).To(Equal(1))
		})

		It("rejects a second active claim from the same department", func() {
			// an inconsistent store where the listing is still available
			_, err := file(qa)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SetListingStatus(ctx, l1.ID, listing.StatusClaimed, listing.StatusAvailable)
			Expect(err).NotTo(HaveOccurred())

			_, err = file(&auth.User{ID: 9, Department: "QA"})
			expectConflict(err, internal.ErrDuplicateDeptClaim)
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusAvailable))
		})

		It("requires a listing and a justification", func() {
			_, err := service.FileClaim(ctx, claim.FileClaimDTO{ListingID: l1.ID}, qa)
			Expect(errors.Is(err, internal.ErrMissingFields)).To(BeTrue())

			_, err = service.FileClaim(ctx, claim.FileClaimDTO{Justification: "x"}, qa)
			Expect(errors.Is(err, internal.ErrMissingFields)).To(BeTrue())
		})

		It("reports unknown listings", func() {
			_, err := service.FileClaim(ctx, claim.FileClaimDTO{ListingID: 999, Justification: "x"}, qa)
			Expect(errors.Is(err, internal.ErrListingNotFound)).To(BeTrue())
		})

		It("lets exactly one of many concurrent claimants win", func() {
			const claimants = 16
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				conflicts int
			)
			start := make(chan struct{})
			for i := 0; i < claimants; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					<-start
					_, err := file(&auth.User{ID: int64(100 + i), Department: fmt.Sprintf("Dept %d", i)})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case errors.Is(err, internal.ErrListingUnavailable):
						conflicts++
					default:
						Fail(fmt.Sprintf("unexpected error: %v", err))
					}
				}(i)
			}
			close(start)
			wg.Wait()

			Expect(successes).To(Equal(1))
			Expect(conflicts).To(Equal(claimants - 1))
			Expect(repo.activeClaims(l1.ID)).To(Equal(1))
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusClaimed))
		})
	})

	Describe("approval path", func() {
		var c1 *claim.Claim

		BeforeEach(func() {
			var err error
			c1, err = file(qa)
			Expect(err).NotTo(HaveOccurred())
		})

		It("moves through owner and security approval to approved", func() {
			c, err := service.ApproveAsOwner(ctx, c1.ID, owner)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(claim.StatusPendingSecurity))
			Expect(c.OwnerApprovedBy).To(HaveValue(Equal(int64(1))))
			Expect(c.OwnerApprovedAt).NotTo(BeNil())
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusClaimed))

			c, err = service.ApproveAsSecurity(ctx, c1.ID, security)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(claim.StatusApproved))
			Expect(c.SecurityApprovedBy).To(HaveValue(Equal(int64(4))))
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusApproved))

			Expect(publisher.published()).To(Equal([]string{
				events.EventTypeClaimFiled,
				events.EventTypeClaimOwnerApproved,
				events.EventTypeClaimSecurityApproved,
			}))
		})

		It("only lets the owning department approve first", func() {
			_, err := service.ApproveAsOwner(ctx, c1.ID, dev)
			Expect(errors.Is(err, internal.ErrNotListingOwner)).To(BeTrue())

			_, err = service.ApproveAsOwner(ctx, c1.ID, &auth.User{ID: 7, Department: "it infrastructure"})
			Expect(errors.Is(err, internal.ErrNotListingOwner)).To(BeTrue())

			_, err = service.ApproveAsOwner(ctx, c1.ID, &auth.User{ID: 7, Department: " IT Infrastructure "})
			Expect(err).NotTo(HaveOccurred())
		})

		It("only lets the security team approve second", func() {
			_, err := service.ApproveAsOwner(ctx, c1.ID, owner)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ApproveAsSecurity(ctx, c1.ID, owner)
			Expect(errors.Is(err, internal.ErrNotSecurityTeam)).To(BeTrue())
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusClaimed))

			_, err = service.ApproveAsSecurity(ctx, c1.ID, &auth.User{ID: 8, Department: "Information SECURITY"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("never skips or repeats a gate", func() {
			_, err := service.ApproveAsSecurity(ctx, c1.ID, security)
			expectConflict(err, internal.ErrInvalidTransition)

			_, err = service.ApproveAsOwner(ctx, c1.ID, owner)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.ApproveAsOwner(ctx, c1.ID, owner)
			expectConflict(err, internal.ErrInvalidTransition)

			_, err = service.ApproveAsSecurity(ctx, c1.ID, security)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.ApproveAsSecurity(ctx, c1.ID, security)
			expectConflict(err, internal.ErrInvalidTransition)
			_, err = service.Deny(ctx, c1.ID, claim.DenyClaimDTO{Reason: "late"}, security)
			expectConflict(err, internal.ErrInvalidTransition)
		})

		It("checks the claim status before the caller's rights", func() {
			_, err := service.ApproveAsSecurity(ctx, c1.ID, dev)
			expectConflict(err, internal.ErrInvalidTransition)
		})

		It("reports unknown claims", func() {
			_, err := service.ApproveAsOwner(ctx, 404, owner)
			Expect(errors.Is(err, internal.ErrClaimNotFound)).To(BeTrue())
		})

		It("lets the owner mark approved hardware as shipped", func() {
			_, err := service.MarkShipped(ctx, c1.ID, owner)
			expectConflict(err, internal.ErrInvalidTransition)

			_, err = service.ApproveAsOwner(ctx, c1.ID, owner)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.ApproveAsSecurity(ctx, c1.ID, security)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.MarkShipped(ctx, c1.ID, qa)
			Expect(errors.Is(err, internal.ErrNotListingOwner)).To(BeTrue())

			c, err := service.MarkShipped(ctx, c1.ID, owner)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(claim.StatusApproved))
			Expect(c.ListingStatus).To(Equal(listing.StatusShipped))

			_, err = service.MarkShipped(ctx, c1.ID, owner)
			Expect(errors.Is(err, internal.ErrListingNotShippable)).To(BeTrue())
			Expect(publisher.published()).To(ContainElement(events.EventTypeListingShipped))
		})
	})

	Describe("denial", func() {
		var c1 *claim.Claim

		BeforeEach(func() {
			var err error
			c1, err = file(qa)
			Expect(err).NotTo(HaveOccurred())
		})

		It("frees the listing so a new claim can succeed", func() {
			c, err := service.Deny(ctx, c1.ID, claim.DenyClaimDTO{Reason: "Reserved for DR site"}, owner)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(claim.StatusDenied))
			Expect(c.DenialReason).To(Equal("Reserved for DR site"))
			Expect(c.DeniedBy).To(HaveValue(Equal(int64(1))))
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusAvailable))
			Expect(repo.activeClaims(l1.ID)).To(BeZero())

			c2, err := file(qa)
			Expect(err).NotTo(HaveOccurred())
			Expect(c2.ID).NotTo(Equal(c1.ID))
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusClaimed))
		})

		It("lets the security team deny at the second gate", func() {
			_, err := service.ApproveAsOwner(ctx, c1.ID, owner)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Deny(ctx, c1.ID, claim.DenyClaimDTO{Reason: "no"}, owner)
			Expect(errors.Is(err, internal.ErrNotSecurityTeam)).To(BeTrue())

			_, err = service.Deny(ctx, c1.ID, claim.DenyClaimDTO{Reason: "Contains licensed firmware"}, security)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusAvailable))
		})

		It("requires a reason", func() {
			_, err := service.Deny(ctx, c1.ID, claim.DenyClaimDTO{Reason: " "}, owner)
			Expect(errors.Is(err, internal.ErrMissingFields)).To(BeTrue())
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusClaimed))
		})

		It("forbids other departments at the owner gate", func() {
			_, err := service.Deny(ctx, c1.ID, claim.DenyClaimDTO{Reason: "no"}, dev)
			Expect(errors.Is(err, internal.ErrNotListingOwner)).To(BeTrue())
		})
	})

	Describe("Cancel", func() {
		var c1 *claim.Claim

		BeforeEach(func() {
			var err error
			c1, err = file(qa)
			Expect(err).NotTo(HaveOccurred())
		})

		It("withdraws a pending_owner claim for its department", func() {
			_, err := service.Cancel(ctx, c1.ID, dev)
			Expect(errors.Is(err, internal.ErrNotClaimant)).To(BeTrue())

			c, err := service.Cancel(ctx, c1.ID, qa)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(claim.StatusDenied))
			Expect(c.DenialReason).To(Equal(claim.WithdrawnReason))
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusAvailable))
			Expect(publisher.published()).To(ContainElement(events.EventTypeClaimCancelled))
		})

		It("is not possible after the owner approved", func() {
			_, err := service.ApproveAsOwner(ctx, c1.ID, owner)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Cancel(ctx, c1.ID, qa)
			expectConflict(err, internal.ErrInvalidTransition)
		})
	})

	It("resolves an approve/deny race with exactly one winner", func() {
		c1, err := file(qa)
		Expect(err).NotTo(HaveOccurred())

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			_, errs[0] = service.ApproveAsOwner(ctx, c1.ID, owner)
		}()
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			_, errs[1] = service.Deny(ctx, c1.ID, claim.DenyClaimDTO{Reason: "changed my mind"}, owner)
		}()
		wg.Wait()

		failures := 0
		for _, e := range errs {
			if e != nil {
				Expect(errors.Is(e, internal.ErrInvalidTransition)).To(BeTrue())
				failures++
			}
		}
		Expect(failures).To(Equal(1))
	})

	Describe("when a concurrent commit lands after the read", func() {
		It("rejects a claim whose listing was taken in the meantime", func() {
			first, err := file(dev)
			Expect(err).NotTo(HaveOccurred())

			stale := &staleRepository{mockRepository: repo, staleListing: listing.StatusAvailable}
			racing := claim.NewService(stale, auth.NewCapabilityChecker("security"), publisher, quietLogger)

			_, err = racing.FileClaim(ctx, claim.FileClaimDTO{ListingID: l1.ID, Justification: "Needed for the test lab"}, qa)
			expectConflict(err, internal.ErrListingUnavailable)
			Expect(repo.activeClaims(l1.ID)).To(Equal(1))
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusClaimed))

			kept, err := service.GetClaim(ctx, first.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.RequestingDepartment).To(Equal(dev.Department))
		})

		It("rejects an approval of a claim that was denied in the meantime", func() {
			c, err := file(qa)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Deny(ctx, c.ID, claim.DenyClaimDTO{Reason: "Reserved"}, owner)
			Expect(err).NotTo(HaveOccurred())

			stale := &staleRepository{mockRepository: repo, staleClaim: claim.StatusPendingOwner}
			racing := claim.NewService(stale, auth.NewCapabilityChecker("security"), publisher, quietLogger)

			_, err = racing.ApproveAsOwner(ctx, c.ID, owner)
			expectConflict(err, internal.ErrInvalidTransition)
			Expect(stale.storedClaimStatus(c.ID)).To(Equal(claim.StatusDenied))
			Expect(repo.listingStatus(l1.ID)).To(Equal(listing.StatusAvailable))
			Expect(repo.activeClaims(l1.ID)).To(BeZero())
		})
	})

	It("lists claims filed by a requester", func() {
		_, err := file(qa)
		Expect(err).NotTo(HaveOccurred())

		mine, err := service.ListClaims(ctx, claim.Filter{RequestedBy: qa.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(mine).To(HaveLen(1))
		Expect(mine[0].ListingTitle).To(Equal("ProLiant"))

		none, err := service.ListClaims(ctx, claim.Filter{RequestedBy: dev.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(none).NotTo(BeNil())
		Expect(none).To(BeEmpty())
	})
})

var _ = Describe("state machine", func() {
	DescribeTable("CanTransition",
		func(from, to string, allowed bool) {
			Expect(claim.CanTransition(from, to)).To(Equal(allowed))
		},
		Entry(nil, claim.StatusPendingOwner, claim.StatusPendingSecurity, true),
		Entry(nil, claim.StatusPendingOwner, claim.StatusDenied, true),
		Entry(nil, claim.StatusPendingOwner, claim.StatusApproved, false),
		Entry(nil, claim.StatusPendingSecurity, claim.StatusApproved, true),
		Entry(nil, claim.StatusPendingSecurity, claim.StatusDenied, true),
		Entry(nil, claim.StatusPendingSecurity, claim.StatusPendingOwner, false),
		Entry(nil, claim.StatusApproved, claim.StatusDenied, false),
		Entry(nil, claim.StatusDenied, claim.StatusPendingOwner, false),
	)
})
