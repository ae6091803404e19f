package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/tableorder/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StaffAccounts manages the tenant users who run the roster and tables.
type StaffAccounts struct {
	DB       *gorm.DB
	HashCost int
}

func NewStaffAccounts(db *gorm.DB) *StaffAccounts {
	return &StaffAccounts{DB: db, HashCost: bcrypt.DefaultCost}
}

func (s *StaffAccounts) Register(ctx context.Context, tenantID uint, name, email, password, role string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("tenant_id = ? AND email = ?", tenantID, email).
		Count(&count).Error; err != nil {
		return models.User{}, fmt.Errorf("s.DB.Count -> %w", err)
	}
	if count > 0 {
		return models.User{}, ErrEmailInUse
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		return models.User{}, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	user := models.User{
		TenantID: tenantID,
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("s.DB.Create -> %w", err)
	}
	return user, nil
}

// Login returns ErrLoginFailed for an unknown email and a wrong password
// alike.
func (s *StaffAccounts) Login(ctx context.Context, tenantID uint, email, password string) (models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("tenant_id = ? AND email = ?", tenantID, strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrLoginFailed
	}
	if err != nil {
		return models.User{}, fmt.Errorf("s.DB.First -> %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return models.User{}, ErrLoginFailed
	}
	return user, nil
}

func (s *StaffAccounts) Get(ctx context.Context, tenantID, userID uint) (models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("id = ? AND tenant_id = ?", userID, tenantID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("s.DB.First -> %w", err)
	}
	return user, nil
}

func (s *StaffAccounts) List(ctx context.Context, tenantID uint) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("id asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("s.DB.Find -> %w", err)
	}
	return users, nil
}
