package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vasthra-labs/vasthra-backend/pkg/db/models"
	pkgerrors "github.com/vasthra-labs/vasthra-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes account management for the signed-in user.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, input UpdateProfileInput) error

	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	AddAddress(ctx context.Context, input AddressInput) (*models.Address, error)
	UpdateAddress(ctx context.Context, addressID uuid.UUID, input AddressInput) error
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error

	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error)
	AddPaymentMethod(ctx context.Context, input PaymentMethodInput) (*models.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, userID, methodID uuid.UUID) error

	GetNotificationPreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreferences, error)
	UpdateNotificationPreferences(ctx context.Context, input NotificationPreferencesInput) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds the account service with the required dependencies.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *service) UpdateProfile(ctx context.Context, input UpdateProfileInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if _, err := s.loadUser(ctx, input.UserID); err != nil {
		return err
	}
	updates := map[string]any{
		"name":  strings.TrimSpace(input.Name),
		"phone": input.Phone,
	}
	if err := s.repo.UpdateUser(ctx, input.UserID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return nil
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	addresses, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return addresses, nil
}

func (s *service) AddAddress(ctx context.Context, input AddressInput) (*models.Address, error) {
	if err := validateAddress(input); err != nil {
		return nil, err
	}

	address := &models.Address{
		ID:        uuid.New(),
		UserID:    input.UserID,
		Type:      input.Type,
		Name:      input.Name,
		Address:   input.Address,
		City:      input.City,
		State:     input.State,
		Pincode:   input.Pincode,
		Phone:     input.Phone,
		IsDefault: input.IsDefault,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		// only one default address per user
		if input.IsDefault {
			if err := repo.ClearDefaultAddress(ctx, input.UserID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
			}
		}
		if err := repo.CreateAddress(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *service) UpdateAddress(ctx context.Context, addressID uuid.UUID, input AddressInput) error {
	if err := validateAddress(input); err != nil {
		return err
	}
	if addressID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindAddress(ctx, input.UserID, addressID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
		if input.IsDefault {
			if err := repo.ClearDefaultAddress(ctx, input.UserID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
			}
		}
		updates := map[string]any{
			"type":       input.Type,
			"name":       input.Name,
			"address":    input.Address,
			"city":       input.City,
			"state":      input.State,
			"pincode":    input.Pincode,
			"phone":      input.Phone,
			"is_default": input.IsDefault,
		}
		if err := repo.UpdateAddress(ctx, input.UserID, addressID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
		}
		return nil
	})
}

func (s *service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := s.repo.DeleteAddress(ctx, userID, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

func (s *service) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	methods, err := s.repo.ListPaymentMethods(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment methods")
	}
	return methods, nil
}

func (s *service) AddPaymentMethod(ctx context.Context, input PaymentMethodInput) (*models.PaymentMethod, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.Type) == "" || strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Number) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type, name and number are required")
	}

	method := &models.PaymentMethod{
		ID:        uuid.New(),
		UserID:    input.UserID,
		Type:      input.Type,
		Name:      input.Name,
		Number:    input.Number,
		Expiry:    input.Expiry,
		IsDefault: input.IsDefault,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.IsDefault {
			if err := repo.ClearDefaultPaymentMethod(ctx, input.UserID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default payment method")
			}
		}
		if err := repo.CreatePaymentMethod(ctx, method); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment method")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return method, nil
}

func (s *service) DeletePaymentMethod(ctx context.Context, userID, methodID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := s.repo.DeletePaymentMethod(ctx, userID, methodID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete payment method")
	}
	return nil
}

// GetNotificationPreferences returns the stored row, creating the defaults
// on first read.
func (s *service) GetNotificationPreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreferences, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	prefs, err := s.repo.FindNotificationPreferences(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification preferences")
	}
	if prefs != nil {
		return prefs, nil
	}

	prefs = &models.NotificationPreferences{
		ID:           uuid.New(),
		UserID:       userID,
		OrderUpdates: true,
		Promotions:   false,
		NewArrivals:  true,
		BlogPosts:    true,
	}
	if err := s.repo.CreateNotificationPreferences(ctx, prefs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification preferences")
	}
	return prefs, nil
}

func (s *service) UpdateNotificationPreferences(ctx context.Context, input NotificationPreferencesInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	// ensure the row exists before the partial update
	if _, err := s.GetNotificationPreferences(ctx, input.UserID); err != nil {
		return err
	}
	updates := map[string]any{
		"order_updates": input.OrderUpdates,
		"promotions":    input.Promotions,
		"new_arrivals":  input.NewArrivals,
		"blog_posts":    input.BlogPosts,
	}
	if err := s.repo.UpdateNotificationPreferences(ctx, input.UserID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update notification preferences")
	}
	return nil
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func validateAddress(input AddressInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	for _, field := range []string{input.Name, input.Address, input.City, input.State, input.Pincode, input.Phone} {
		if strings.TrimSpace(field) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "all address fields are required")
		}
	}
	return nil
}
