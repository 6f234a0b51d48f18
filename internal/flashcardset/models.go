package flashcardset

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccessType string

const (
	AccessPublic  AccessType = "public"
	AccessPrivate AccessType = "private"
	AccessSetPass AccessType = "setpass"
)

func (t AccessType) Valid() bool {
	switch t {
	case AccessPublic, AccessPrivate, AccessSetPass:
		return true
	}
	return false
}

// FlashcardSet groups flashcards under one owner and one access policy.
// AccessPassword holds a bcrypt hash and is non-empty exactly when
// AccessType is setpass.
type FlashcardSet struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string     `gorm:"not null" json:"name"`
	Description    string     `json:"description,omitempty"`
	AccessType     AccessType `gorm:"not null;default:private" json:"accessType"`
	AccessPassword string     `json:"-"`
	UserID         string     `gorm:"type:uuid;index;not null" json:"userId"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (s *FlashcardSet) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
