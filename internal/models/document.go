package models

import "time"

// Document is one persisted key. Value holds the raw JSON written by either context.
type Document struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}
