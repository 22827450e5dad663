package gallery

import "time"

// Picture is a record of an uploaded promotional image. The binary itself
// lives in object storage; only the URL and expiry are tracked here.
type Picture struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	PictureURL string    `json:"picture_url" gorm:"column:picture_url;not null"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"column:expires_at;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Picture) TableName() string {
	return "pictures"
}
