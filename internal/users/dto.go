package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
)

// Profile is the account view returned to the signed-in user.
type Profile struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Phone     *string        `json:"phone,omitempty"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	UserID uuid.UUID
	Name   string
	Phone  *string
}

// AddressInput carries one saved address.
type AddressInput struct {
	UserID    uuid.UUID
	Type      string
	Name      string
	Address   string
	City      string
	State     string
	Pincode   string
	Phone     string
	IsDefault bool
}

// PaymentMethodInput carries one saved payment label. The number is a
// display alias, not a chargeable instrument.
type PaymentMethodInput struct {
	UserID    uuid.UUID
	Type      string
	Name      string
	Number    string
	Expiry    *string
	IsDefault bool
}

// NotificationPreferencesInput carries the four channel toggles.
type NotificationPreferencesInput struct {
	UserID       uuid.UUID
	OrderUpdates bool
	Promotions   bool
	NewArrivals  bool
	BlogPosts    bool
}
