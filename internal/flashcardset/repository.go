package flashcardset

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"funquizz/internal/database"
)

var ErrNotFound = errors.New("flashcard set not found")

type Repository struct {
	db *database.Database
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, set *FlashcardSet) error {
	return r.db.WithContext(ctx).Create(set).Error
}

func (r *Repository) FindByID(ctx context.Context, id string) (*FlashcardSet, error) {
	var set FlashcardSet
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&set).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *Repository) FindAllByUser(ctx context.Context, userID string) ([]FlashcardSet, error) {
	var sets []FlashcardSet
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sets).Error
	return sets, err
}

// Update mutates a set scoped to its owner. A non-owner's update matches
// zero rows and comes back as ErrNotFound, indistinguishable from a set
// that does not exist.
func (r *Repository) Update(ctx context.Context, id, userID string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&FlashcardSet{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a set, owner-scoped like Update.
func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&FlashcardSet{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
