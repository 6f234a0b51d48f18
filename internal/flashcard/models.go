package flashcard

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Flashcard belongs to a set. Deleting one only flips IsActive; inactive
// cards stay in the table but drop out of every query.
type Flashcard struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	Question       string     `gorm:"not null" json:"question"`
	Answer         string     `gorm:"not null" json:"answer"`
	Category       string     `json:"category,omitempty"`
	Difficulty     Difficulty `json:"difficulty,omitempty"`
	ReviewCount    int        `gorm:"default:0" json:"reviewCount"`
	LastReviewedAt *time.Time `json:"lastReviewedAt,omitempty"`
	IsActive       bool       `gorm:"default:true" json:"isActive"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	UserID         string     `gorm:"type:uuid;index;not null" json:"userId"`
	FlashcardSetID string     `gorm:"type:uuid;index;not null" json:"flashcardSetId"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (f *Flashcard) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
