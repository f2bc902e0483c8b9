package models

import "time"

// Record is one key of the local key-value namespace. Value holds JSON text.
type Record struct {
	Key       string    `gorm:"column:record_key;primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	Version   int64     `gorm:"not null;default:1" json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name independent of gorm's pluralizer.
func (Record) TableName() string {
	return "records"
}

// StoreChange announces a durable write to other processes sharing the store.
type StoreChange struct {
	Key     string    `json:"key"`
	Version int64     `json:"version"`
	Origin  string    `json:"origin"`
	At      time.Time `json:"at"`
}

// UploadResult is returned after an asset store accepted an image.
type UploadResult struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}
