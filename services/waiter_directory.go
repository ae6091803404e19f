package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"

	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

// WaiterIdentity is all a successful login reveals about a waiter.
type WaiterIdentity struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	TenantID uint   `json:"-"`
}

// WaiterDirectory authenticates waiters by PIN within one tenant and keeps
// the roster. PINs are stored as bcrypt hashes only.
//
// With PINKey set, each waiter also carries an HMAC tag of (tenant, PIN) so
// a login only runs bcrypt against the waiters whose tag matches, plus any
// not tagged yet. Without PINKey every active waiter of the tenant is
// compared. Changing PINKey strands existing tags until PINs are reset.
type WaiterDirectory struct {
	DB       *gorm.DB
	Tenants  TenantResolver
	HashCost int
	PINKey   []byte
}

func NewWaiterDirectory(db *gorm.DB, tenants TenantResolver) *WaiterDirectory {
	return &WaiterDirectory{DB: db, Tenants: tenants, HashCost: bcrypt.DefaultCost}
}

// Login returns ErrLoginFailed for every failure: malformed PIN, unknown or
// inactive tenant, unknown PIN, deactivated waiter.
func (d *WaiterDirectory) Login(ctx context.Context, pin, tenantSlug string) (WaiterIdentity, error) {
	if !ValidPIN(pin) {
		return WaiterIdentity{}, ErrLoginFailed
	}

	tenant, err := d.Tenants.ResolveSlug(ctx, tenantSlug)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrTenantInactive) {
			return WaiterIdentity{}, ErrLoginFailed
		}
		return WaiterIdentity{}, fmt.Errorf("d.Tenants.ResolveSlug -> %w", err)
	}

	matches, err := d.matchPIN(ctx, d.DB, tenant.ID, pin, 0)
	if err != nil {
		return WaiterIdentity{}, err
	}
	switch len(matches) {
	case 0:
		return WaiterIdentity{}, ErrLoginFailed
	case 1:
	default:
		// possible after a reactivation; refuse rather than guess
		utils.ErrorLogger.Printf("Tenant %s has %d active waiters sharing one PIN", tenant.Slug, len(matches))
		return WaiterIdentity{}, ErrLoginFailed
	}
	waiter := matches[0]

	if tag := d.pinTag(tenant.ID, pin); tag != "" && waiter.PINTag != tag {
		if err := d.DB.WithContext(ctx).Model(&models.Waiter{}).
			Where("id = ?", waiter.ID).Update("pin_tag", tag).Error; err != nil {
			utils.ErrorLogger.Printf("Failed to tag PIN of waiter %d: %v", waiter.ID, err)
		}
	}

	utils.InfoLogger.Printf("Waiter %d logged in at tenant %s", waiter.ID, tenant.Slug)
	return identity(waiter), nil
}

// Authenticate re-checks a session's waiter on every request: it must still
// exist, belong to the tenant and be active.
func (d *WaiterDirectory) Authenticate(ctx context.Context, tenantID, waiterID uint) (WaiterIdentity, error) {
	var waiter models.Waiter
	err := d.DB.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND active = ?", waiterID, tenantID, true).
		First(&waiter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return WaiterIdentity{}, ErrLoginFailed
	}
	if err != nil {
		return WaiterIdentity{}, fmt.Errorf("d.DB.First -> %w", err)
	}
	return identity(waiter), nil
}

func (d *WaiterDirectory) Create(ctx context.Context, tenantID uint, name, pin string) (models.Waiter, error) {
	if !ValidPIN(pin) {
		return models.Waiter{}, ErrInvalidPIN
	}

	var created models.Waiter
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hash, err := d.hashUnique(ctx, tx, tenantID, pin, 0)
		if err != nil {
			return err
		}
		created = models.Waiter{
			TenantID: tenantID,
			Name:     name,
			PINHash:  hash,
			PINTag:   d.pinTag(tenantID, pin),
			Active:   true,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return models.Waiter{}, err
	}
	return created, nil
}

func (d *WaiterDirectory) ChangePIN(ctx context.Context, tenantID, waiterID uint, pin string) error {
	if !ValidPIN(pin) {
		return ErrInvalidPIN
	}

	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := d.get(ctx, tx, tenantID, waiterID); err != nil {
			return err
		}
		hash, err := d.hashUnique(ctx, tx, tenantID, pin, waiterID)
		if err != nil {
			return err
		}
		return tx.Model(&models.Waiter{}).Where("id = ?", waiterID).
			Updates(map[string]interface{}{"pin_hash": hash, "pin_tag": d.pinTag(tenantID, pin)}).Error
	})
}

// SetActive activates or deactivates a waiter. Deactivation releases the
// waiter's tables so their orders surface to nobody until reassigned.
// Reactivation does not re-check PIN uniqueness (the PIN is only known as a
// hash); Login refuses a PIN shared by two active waiters.
func (d *WaiterDirectory) SetActive(ctx context.Context, tenantID, waiterID uint, active bool) (models.Waiter, error) {
	var waiter models.Waiter
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := d.get(ctx, tx, tenantID, waiterID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Waiter{}).Where("id = ?", waiterID).Update("active", active).Error; err != nil {
			return err
		}
		if !active {
			if err := tx.Model(&models.Table{}).
				Where("tenant_id = ? AND waiter_id = ?", tenantID, waiterID).
				Updates(map[string]interface{}{"waiter_id": nil, "claimed_at": nil}).Error; err != nil {
				return err
			}
		}
		w.Active = active
		waiter = w
		return nil
	})
	if err != nil {
		return models.Waiter{}, err
	}
	return waiter, nil
}

func (d *WaiterDirectory) List(ctx context.Context, tenantID uint) ([]models.Waiter, error) {
	var waiters []models.Waiter
	if err := d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name asc").Find(&waiters).Error; err != nil {
		return nil, fmt.Errorf("d.DB.Find -> %w", err)
	}
	return waiters, nil
}

func (d *WaiterDirectory) get(ctx context.Context, tx *gorm.DB, tenantID, waiterID uint) (models.Waiter, error) {
	var w models.Waiter
	err := tx.WithContext(ctx).Where("id = ? AND tenant_id = ?", waiterID, tenantID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Waiter{}, ErrNotFound
	}
	return w, err
}

// hashUnique hashes pin after checking no other active waiter of the tenant
// already uses it; two waiters sharing a PIN could not be told apart.
func (d *WaiterDirectory) hashUnique(ctx context.Context, tx *gorm.DB, tenantID uint, pin string, exceptID uint) (string, error) {
	clash, err := d.matchPIN(ctx, tx, tenantID, pin, exceptID)
	if err != nil {
		return "", err
	}
	if len(clash) > 0 {
		return "", ErrPINInUse
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), d.HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// matchPIN finds the active waiters of tenantID whose PIN is pin, skipping
// exceptID. Every candidate hash is compared so ambiguity is detected.
func (d *WaiterDirectory) matchPIN(ctx context.Context, tx *gorm.DB, tenantID uint, pin string, exceptID uint) ([]models.Waiter, error) {
	var roster []models.Waiter
	q := tx.WithContext(ctx).Where("tenant_id = ? AND active = ?", tenantID, true).Order("id asc")
	if tag := d.pinTag(tenantID, pin); tag != "" {
		q = q.Where("(pin_tag = ? OR pin_tag = ? OR pin_tag IS NULL)", tag, "")
	}
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Find(&roster).Error; err != nil {
		return nil, fmt.Errorf("roster lookup -> %w", err)
	}

	var matches []models.Waiter
	for _, w := range roster {
		if bcrypt.CompareHashAndPassword([]byte(w.PINHash), []byte(pin)) == nil {
			matches = append(matches, w)
		}
	}
	return matches, nil
}

// pinTag is empty when no PINKey is configured.
func (d *WaiterDirectory) pinTag(tenantID uint, pin string) string {
	if len(d.PINKey) == 0 {
		return ""
	}
	mac := hmac.New(sha256.New, d.PINKey)
	fmt.Fprintf(mac, "%d:%s", tenantID, pin)
	return hex.EncodeToString(mac.Sum(nil))
}

func identity(w models.Waiter) WaiterIdentity {
	return WaiterIdentity{ID: w.ID, Name: w.Name, TenantID: w.TenantID}
}
