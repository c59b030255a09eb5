package users

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vasthra-labs/vasthra-backend/pkg/db/models"
	"github.com/vasthra-labs/vasthra-backend/pkg/enums"
	pkgerrors "github.com/vasthra-labs/vasthra-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	tables := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'CUSTOMER',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS addresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  name TEXT NOT NULL,
  address TEXT NOT NULL,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  pincode TEXT NOT NULL,
  phone TEXT NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS payment_methods (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  name TEXT NOT NULL,
  number TEXT NOT NULL,
  expiry TEXT,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS notification_preferences (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  order_updates INTEGER NOT NULL DEFAULT 1,
  promotions INTEGER NOT NULL DEFAULT 0,
  new_arrivals INTEGER NOT NULL DEFAULT 1,
  blog_posts INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, table := range tables {
		require.NoError(t, db.Exec(table).Error)
	}
	return db
}

func newUsersService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), testTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		ID:    uuid.New(),
		Email: fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Name:  "Meera Iyer",
		Role:  enums.UserRoleCustomer,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestGetProfile(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUsersService(t, db)
	user := seedUser(t, db)

	profile, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, profile.Email)
	assert.Equal(t, "Meera Iyer", profile.Name)

	_, err = svc.GetProfile(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateProfileTrimsName(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUsersService(t, db)
	user := seedUser(t, db)

	phone := "+919876543210"
	require.NoError(t, svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID: user.ID,
		Name:   "  Meera R Iyer  ",
		Phone:  &phone,
	}))

	profile, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meera R Iyer", profile.Name)
	require.NotNil(t, profile.Phone)
	assert.Equal(t, phone, *profile.Phone)

	err = svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: user.ID, Name: "   "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func addressInput(userID uuid.UUID, isDefault bool) AddressInput {
	return AddressInput{
		UserID:    userID,
		Type:      "HOME",
		Name:      "Meera Iyer",
		Address:   "14 Gandhi Street",
		City:      "Chennai",
		State:     "Tamil Nadu",
		Pincode:   "600004",
		Phone:     "+919876543210",
		IsDefault: isDefault,
	}
}

func TestAddAddressKeepsSingleDefault(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUsersService(t, db)
	user := seedUser(t, db)

	first, err := svc.AddAddress(context.Background(), addressInput(user.ID, true))
	require.NoError(t, err)
	second, err := svc.AddAddress(context.Background(), addressInput(user.ID, true))
	require.NoError(t, err)

	addresses, err := svc.ListAddresses(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)

	defaults := 0
	for _, addr := range addresses {
		if addr.IsDefault {
			defaults++
			assert.Equal(t, second.ID, addr.ID)
		}
	}
	assert.Equal(t, 1, defaults)
	_ = first
}

func TestUpdateAddressEnforcesOwnership(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUsersService(t, db)
	owner := seedUser(t, db)
	stranger := seedUser(t, db)

	address, err := svc.AddAddress(context.Background(), addressInput(owner.ID, false))
	require.NoError(t, err)

	err = svc.UpdateAddress(context.Background(), address.ID, addressInput(stranger.ID, false))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	input := addressInput(owner.ID, false)
	input.City = "Madurai"
	require.NoError(t, svc.UpdateAddress(context.Background(), address.ID, input))

	addresses, err := svc.ListAddresses(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, "Madurai", addresses[0].City)
}

func TestAddPaymentMethodKeepsSingleDefault(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUsersService(t, db)
	user := seedUser(t, db)

	expiry := "08/28"
	_, err := svc.AddPaymentMethod(context.Background(), PaymentMethodInput{
		UserID: user.ID, Type: "card", Name: "Visa ending 4242", Number: "**** 4242", Expiry: &expiry, IsDefault: true,
	})
	require.NoError(t, err)
	newest, err := svc.AddPaymentMethod(context.Background(), PaymentMethodInput{
		UserID: user.ID, Type: "upi", Name: "meera@okbank", Number: "meera@okbank", IsDefault: true,
	})
	require.NoError(t, err)

	methods, err := svc.ListPaymentMethods(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, methods, 2)

	defaults := 0
	for _, method := range methods {
		if method.IsDefault {
			defaults++
			assert.Equal(t, newest.ID, method.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestNotificationPreferencesLazyDefaults(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newUsersService(t, db)
	user := seedUser(t, db)

	prefs, err := svc.GetNotificationPreferences(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, prefs.OrderUpdates)
	assert.False(t, prefs.Promotions)
	assert.True(t, prefs.NewArrivals)
	assert.True(t, prefs.BlogPosts)

	// second read returns the same row, not a duplicate
	again, err := svc.GetNotificationPreferences(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, prefs.ID, again.ID)

	require.NoError(t, svc.UpdateNotificationPreferences(context.Background(), NotificationPreferencesInput{
		UserID:       user.ID,
		OrderUpdates: true,
		Promotions:   true,
		NewArrivals:  false,
		BlogPosts:    false,
	}))

	updated, err := svc.GetNotificationPreferences(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, updated.Promotions)
	assert.False(t, updated.NewArrivals)
	assert.False(t, updated.BlogPosts)
}
