package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"funquizz/internal/database"
)

// ErrNotFound is returned on lookup misses so callers never depend on
// gorm's own sentinel.
var ErrNotFound = errors.New("user not found")

type Repository struct {
	db *database.Database
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *Repository) findOne(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).
		Update("password", passwordHash).Error
}

func (r *Repository) MarkVerified(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).
		Update("is_verified", true).Error
}
