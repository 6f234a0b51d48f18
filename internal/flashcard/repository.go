package flashcard

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"funquizz/internal/database"
)

var ErrNotFound = errors.New("flashcard not found")

type Repository struct {
	db *database.Database
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, card *Flashcard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *Repository) FindOne(ctx context.Context, id, userID string) (*Flashcard, error) {
	var card Flashcard
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// ListFilter narrows FindAllByUser; zero values mean no filter.
type ListFilter struct {
	Category   string
	Difficulty Difficulty
}

func (r *Repository) FindAllByUser(ctx context.Context, userID string, filter ListFilter) ([]Flashcard, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}

	var cards []Flashcard
	err := query.Order("created_at DESC").Find(&cards).Error
	return cards, err
}

func (r *Repository) FindBySet(ctx context.Context, setID string) ([]Flashcard, error) {
	var cards []Flashcard
	err := r.db.WithContext(ctx).
		Where("flashcard_set_id = ? AND is_active = ?", setID, true).
		Order("created_at DESC").
		Find(&cards).Error
	return cards, err
}

func (r *Repository) Update(ctx context.Context, id, userID string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&Flashcard{}).
		Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete deactivates the card instead of removing the row.
func (r *Repository) SoftDelete(ctx context.Context, id, userID string) error {
	return r.Update(ctx, id, userID, map[string]interface{}{"is_active": false})
}

// IncrementReview bumps the counter in SQL so concurrent reviews are not
// lost, and stamps the review time.
func (r *Repository) IncrementReview(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).Model(&Flashcard{}).
		Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		Updates(map[string]interface{}{
			"review_count":     gorm.Expr("review_count + 1"),
			"last_reviewed_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
