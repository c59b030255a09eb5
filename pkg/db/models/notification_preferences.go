package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPreferences holds one row per user. Rows are created lazily on
// first read with every channel enabled except promotions.
type NotificationPreferences struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	OrderUpdates bool      `gorm:"column:order_updates;not null;default:true"`
	Promotions   bool      `gorm:"column:promotions;not null;default:false"`
	NewArrivals  bool      `gorm:"column:new_arrivals;not null;default:true"`
	BlogPosts    bool      `gorm:"column:blog_posts;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
