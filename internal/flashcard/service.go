package flashcard

import (
	"context"
	"errors"

	"funquizz/internal/apperr"
	"funquizz/internal/flashcardset"
)

type CreateInput struct {
	Question   string
	Answer     string
	Category   string
	Difficulty Difficulty
	ImageURL   string
}

type UpdateInput struct {
	Question   *string
	Answer     *string
	Category   *string
	Difficulty *Difficulty
	ImageURL   *string
}

type Service struct {
	repo *Repository
	sets *flashcardset.Service
}

func NewService(repo *Repository, sets *flashcardset.Service) *Service {
	return &Service{repo: repo, sets: sets}
}

// Create adds a card to one of the caller's sets. The set must exist and
// belong to the caller; anything else is NotFound.
func (s *Service) Create(ctx context.Context, setID, userID string, input CreateInput) (*Flashcard, error) {
	if input.Question == "" || input.Answer == "" {
		return nil, apperr.BadRequest("Question and answer are required")
	}
	if input.Difficulty != "" && !input.Difficulty.Valid() {
		return nil, apperr.BadRequest("Invalid difficulty")
	}

	set, err := s.sets.Get(ctx, setID, userID)
	if err != nil {
		return nil, err
	}
	if set.UserID != userID {
		return nil, apperr.NotFound("Flashcard set not found")
	}

	card := &Flashcard{
		Question:       input.Question,
		Answer:         input.Answer,
		Category:       input.Category,
		Difficulty:     input.Difficulty,
		ImageURL:       input.ImageURL,
		IsActive:       true,
		UserID:         userID,
		FlashcardSetID: setID,
	}
	if err := s.repo.Create(ctx, card); err != nil {
		return nil, apperr.Internal("failed to create flashcard", err)
	}
	return card, nil
}

// ListBySet returns a set's active cards, applying the set's read policy
// to the caller first.
func (s *Service) ListBySet(ctx context.Context, setID, userID string) ([]Flashcard, error) {
	if _, err := s.sets.Get(ctx, setID, userID); err != nil {
		return nil, err
	}

	cards, err := s.repo.FindBySet(ctx, setID)
	if err != nil {
		return nil, apperr.Internal("failed to list flashcards", err)
	}
	return cards, nil
}

func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Flashcard, error) {
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return nil, apperr.BadRequest("Invalid difficulty")
	}

	cards, err := s.repo.FindAllByUser(ctx, userID, filter)
	if err != nil {
		return nil, apperr.Internal("failed to list flashcards", err)
	}
	return cards, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Flashcard, error) {
	card, err := s.repo.FindOne(ctx, id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Flashcard not found")
		}
		return nil, apperr.Internal("failed to load flashcard", err)
	}
	return card, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, input UpdateInput) (*Flashcard, error) {
	updates := map[string]interface{}{}
	if input.Question != nil {
		if *input.Question == "" {
			return nil, apperr.BadRequest("Question and answer are required")
		}
		updates["question"] = *input.Question
	}
	if input.Answer != nil {
		if *input.Answer == "" {
			return nil, apperr.BadRequest("Question and answer are required")
		}
		updates["answer"] = *input.Answer
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Difficulty != nil {
		if !input.Difficulty.Valid() {
			return nil, apperr.BadRequest("Invalid difficulty")
		}
		updates["difficulty"] = *input.Difficulty
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}

	if len(updates) == 0 {
		return nil, apperr.BadRequest("Nothing to update")
	}

	if err := s.repo.Update(ctx, id, userID, updates); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Flashcard not found")
		}
		return nil, apperr.Internal("failed to update flashcard", err)
	}

	return s.Get(ctx, id, userID)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.SoftDelete(ctx, id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Flashcard not found")
		}
		return apperr.Internal("failed to delete flashcard", err)
	}
	return nil
}

// Review records one study pass over the card.
func (s *Service) Review(ctx context.Context, id, userID string) (*Flashcard, error) {
	if err := s.repo.IncrementReview(ctx, id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Flashcard not found")
		}
		return nil, apperr.Internal("failed to review flashcard", err)
	}

	return s.Get(ctx, id, userID)
}
