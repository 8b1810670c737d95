package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	"github.com/frahmantamala/hardware-marketplace/internal/claim"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	"github.com/frahmantamala/hardware-marketplace/internal/user"
	"github.com/frahmantamala/hardware-marketplace/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

const seedPassword = "password"

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the reference departments' users, a few listings from the reference catalog and one pending claim.`,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing listings and claims before seeding")
}

var seedUsers = []user.User{
	{Email: "john.doe@company.com", Name: "John Doe", Department: "IT Infrastructure"},
	{Email: "jane.smith@company.com", Name: "Jane Smith", Department: "Data Center Operations"},
	{Email: "bob.johnson@company.com", Name: "Bob Johnson", Department: "Development Team"},
	{Email: "alice.williams@company.com", Name: "Alice Williams", Department: "Security Team"},
}

type seedListing struct {
	ownerEmail string
	dto        listing.CreateListingDTO
	ttl        time.Duration
}

// only drive-free devices from the reference catalog pass the compliance gate
var seedListings = []seedListing{
	{
		ownerEmail: "jane.smith@company.com",
		ttl:        21 * 24 * time.Hour,
		dto: listing.CreateListingDTO{
			SerialNumber: "SRV-HP-DL360-002",
			Title:        "HP ProLiant DL360 Gen10",
			Category:     "Server",
			Description:  "Reliable 1U workhorse, drives removed per security policy",
			Location:     "Building B, Floor 2, Rack 5",
			Condition:    "Good",
		},
	},
	{
		ownerEmail: "john.doe@company.com",
		ttl:        45 * 24 * time.Hour,
		dto: listing.CreateListingDTO{
			SerialNumber: "NET-CISCO-3850-001",
			Title:        "Cisco Catalyst 3850-48P Switch",
			Category:     "Networking",
			Description:  "48-port PoE+ access switch with 10G uplinks",
			Location:     "Building A, Floor 1, Network Closet",
			Condition:    "Excellent",
		},
	},
	{
		ownerEmail: "jane.smith@company.com",
		ttl:        14 * 24 * time.Hour,
		dto: listing.CreateListingDTO{
			SerialNumber: "NET-JUNIPER-EX4300-001",
			Title:        "Juniper EX4300-48T Switch",
			Category:     "Networking",
			Description:  "Layer 3 access switch, minimal usage hours",
			Location:     "Building C, Data Center",
			Condition:    "Good",
		},
	},
	{
		ownerEmail: "john.doe@company.com",
		ttl:        20 * 24 * time.Hour,
		dto: listing.CreateListingDTO{
			SerialNumber: "STG-DISK-SHELF-001",
			Title:        "NetApp DS4246 Disk Shelf",
			Category:     "Storage",
			Description:  "Disk shelf only, no drives included",
			Location:     "Building B, Floor 2, Rack 8",
			Condition:    "Good",
		},
	},
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	lg := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	gdb, err := initGorm(db)
	if err != nil {
		return err
	}

	svc := buildServices(cfg, gdb, db, lg)
	svc.Start()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc.Close(closeCtx)
	}()

	if clearData {
		if err := gdb.WithContext(ctx).Exec("TRUNCATE TABLE claims, listings RESTART IDENTITY CASCADE").Error; err != nil {
			return fmt.Errorf("failed to clear marketplace data: %w", err)
		}
		lg.Info("cleared listings and claims")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), cfg.Security.BCryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	actors := make(map[string]*auth.User, len(seedUsers))
	for _, u := range seedUsers {
		u := u
		u.PasswordHash = string(hash)
		u.IsActive = true
		saved, err := svc.User.Provision(ctx, &u)
		if err != nil {
			return err
		}
		actors[saved.Email] = &auth.User{ID: saved.ID, Email: saved.Email, Name: saved.Name, Department: saved.Department, IsActive: true}
		lg.Info("seeded user", "email", saved.Email, "department", saved.Department)
	}

	now := time.Now().UTC()
	var first *listing.Listing
	for _, s := range seedListings {
		dto := s.dto
		dto.ExpirationDate = now.Add(s.ttl).Format("2006-01-02")

		created, err := svc.Listing.CreateListing(ctx, dto, actors[s.ownerEmail])
		if errors.Is(err, internal.ErrDuplicateSerial) {
			lg.Info("listing already seeded", "serial_number", dto.SerialNumber)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed listing %s: %w", dto.SerialNumber, err)
		}
		if first == nil {
			first = created
		}
		lg.Info("seeded listing", "listing_id", created.ID, "serial_number", created.SerialNumber)
	}

	if first == nil {
		return nil
	}
	c, err := svc.Claim.FileClaim(ctx, claim.FileClaimDTO{
		ListingID:     first.ID,
		Justification: "Need for automated testing infrastructure expansion",
	}, actors["bob.johnson@company.com"])
	if err != nil {
		return fmt.Errorf("failed to seed claim: %w", err)
	}
	lg.Info("seeded claim", "claim_id", c.ID, "listing_id", c.ListingID, "department", c.RequestingDepartment)

	fmt.Printf("Seed complete. Every user logs in with password %q.\n", seedPassword)
	return nil
}
