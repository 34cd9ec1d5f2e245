package models

import "time"

// StorageEntry is one durable key of one storage namespace.
type StorageEntry struct {
	Namespace string    `gorm:"primaryKey;size:128" json:"namespace"`
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Origin    string    `gorm:"size:64" json:"origin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
