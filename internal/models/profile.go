package models

import "time"

// Profile is an author record. It is read-only from the repository's point of view.
type Profile struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Username  string    `gorm:"not null;index" json:"username" yaml:"username"`
	FullName  string    `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty" yaml:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
