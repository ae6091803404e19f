package database

import (
	"context"
	"fmt"

	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SeedMenuItem struct {
	SKU   string
	Name  string
	Price float64
}

type SeedWaiter struct {
	Name string
	PIN  string
}

// SeedOptions describes one demo tenant.
type SeedOptions struct {
	TenantSlug    string
	TenantName    string
	AdminEmail    string
	AdminPassword string
	Tables        []string
	Waiters       []SeedWaiter
	Menu          []SeedMenuItem
	HashCost      int
	// PINKey must match the server's PIN_LOOKUP_KEY for waiter logins to
	// skip the roster scan.
	PINKey []byte
}

func DefaultSeed() SeedOptions {
	return SeedOptions{
		TenantSlug:    "bistro-x",
		TenantName:    "Bistro X",
		AdminEmail:    "admin@bistro-x.test",
		AdminPassword: "changeme123",
		Tables:        []string{"12"},
		Waiters:       []SeedWaiter{{Name: "Ana", PIN: "4821"}},
		Menu:          []SeedMenuItem{{SKU: "A", Name: "Espresso", Price: 5.00}},
		HashCost:      bcrypt.DefaultCost,
	}
}

type SeedResult struct {
	Tenant  models.Tenant
	Admin   models.User
	Tables  []models.Table
	Waiters []models.Waiter
}

// Seed creates the tenant and everything listed under it. It fails if the
// tenant slug is already taken.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) (SeedResult, error) {
	var res SeedResult

	res.Tenant = models.Tenant{Slug: opts.TenantSlug, Name: opts.TenantName, Active: true}
	if err := db.WithContext(ctx).Create(&res.Tenant).Error; err != nil {
		return res, fmt.Errorf("create tenant %s -> %w", opts.TenantSlug, err)
	}

	for _, m := range opts.Menu {
		item := models.MenuItem{TenantID: res.Tenant.ID, SKU: m.SKU, Name: m.Name, Price: m.Price, Available: true}
		if err := db.WithContext(ctx).Create(&item).Error; err != nil {
			return res, fmt.Errorf("create menu item %s -> %w", m.SKU, err)
		}
	}

	tables := services.NewTableRegistry(db)
	for _, label := range opts.Tables {
		t, err := tables.Create(ctx, res.Tenant.ID, label)
		if err != nil {
			return res, err
		}
		res.Tables = append(res.Tables, t)
	}

	directory := services.NewWaiterDirectory(db, services.NewTenantResolver(db))
	directory.PINKey = opts.PINKey
	staff := services.NewStaffAccounts(db)
	if opts.HashCost != 0 {
		directory.HashCost = opts.HashCost
		staff.HashCost = opts.HashCost
	}

	for _, w := range opts.Waiters {
		waiter, err := directory.Create(ctx, res.Tenant.ID, w.Name, w.PIN)
		if err != nil {
			return res, fmt.Errorf("create waiter %s -> %w", w.Name, err)
		}
		res.Waiters = append(res.Waiters, waiter)
	}

	if opts.AdminEmail != "" {
		admin, err := staff.Register(ctx, res.Tenant.ID, "Administrator", opts.AdminEmail, opts.AdminPassword, models.RoleAdmin)
		if err != nil {
			return res, fmt.Errorf("create admin -> %w", err)
		}
		res.Admin = admin
	}
	return res, nil
}
