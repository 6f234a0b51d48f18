package flashcardset

import (
	"context"
	"errors"

	"funquizz/internal/apperr"
)

type CreateInput struct {
	Name           string
	Description    string
	AccessType     AccessType
	AccessPassword string
}

type UpdateInput struct {
	Name           *string
	Description    *string
	AccessType     *AccessType
	AccessPassword *string
}

type Service struct {
	repo   *Repository
	access *AccessControl
}

func NewService(repo *Repository, access *AccessControl) *Service {
	return &Service{repo: repo, access: access}
}

func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*FlashcardSet, error) {
	if input.Name == "" {
		return nil, apperr.BadRequest("Set name is required")
	}

	accessType := input.AccessType
	if accessType == "" {
		accessType = AccessPrivate
	}
	if !accessType.Valid() {
		return nil, apperr.BadRequest("Invalid access type")
	}

	set := &FlashcardSet{
		Name:        input.Name,
		Description: input.Description,
		AccessType:  accessType,
		UserID:      userID,
	}

	if accessType == AccessSetPass {
		if input.AccessPassword == "" {
			return nil, apperr.BadRequest("Password is required for a password-protected set")
		}
		hash, err := HashPassword(input.AccessPassword)
		if err != nil {
			return nil, apperr.Internal("failed to hash set password", err)
		}
		set.AccessPassword = hash
	}

	if err := s.repo.Create(ctx, set); err != nil {
		return nil, apperr.Internal("failed to create flashcard set", err)
	}
	return set, nil
}

func (s *Service) ListByOwner(ctx context.Context, userID string) ([]FlashcardSet, error) {
	sets, err := s.repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list flashcard sets", err)
	}
	return sets, nil
}

// Get fetches a set and enforces the read policy for the caller. userID
// is empty for anonymous callers.
func (s *Service) Get(ctx context.Context, id, userID string) (*FlashcardSet, error) {
	set, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Flashcard set not found")
		}
		return nil, apperr.Internal("failed to load flashcard set", err)
	}

	if err := s.authorizeRead(ctx, set, userID); err != nil {
		return nil, err
	}
	return set, nil
}

// AuthorizeRead applies the access policy without refetching; the
// flashcard handlers use it before listing a set's cards.
func (s *Service) AuthorizeRead(ctx context.Context, set *FlashcardSet, userID string) error {
	return s.authorizeRead(ctx, set, userID)
}

func (s *Service) authorizeRead(ctx context.Context, set *FlashcardSet, userID string) error {
	if userID != "" && set.UserID == userID {
		return nil
	}

	switch set.AccessType {
	case AccessPublic:
		return nil
	case AccessPrivate:
		return apperr.Forbidden("You do not have access to this flashcard set")
	case AccessSetPass:
		// A setpass set with no hash is inconsistent state; hide it.
		if set.AccessPassword == "" {
			return apperr.NotFound("Flashcard set not found")
		}
		if userID == "" {
			return apperr.Forbidden("Flashcard set is locked. Unlock it with its password.")
		}
		unlocked, err := s.access.IsUnlockedForUser(ctx, set.ID, userID)
		if err != nil {
			return apperr.Internal("failed to check unlock grant", err)
		}
		if !unlocked {
			return apperr.Forbidden("Flashcard set is locked. Unlock it with its password.")
		}
		return nil
	default:
		return apperr.Forbidden("You do not have access to this flashcard set")
	}
}

func (s *Service) Update(ctx context.Context, id, userID string, input UpdateInput) (*FlashcardSet, error) {
	updates := map[string]interface{}{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperr.BadRequest("Set name is required")
		}
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if input.AccessType != nil {
		if !input.AccessType.Valid() {
			return nil, apperr.BadRequest("Invalid access type")
		}
		updates["access_type"] = *input.AccessType

		if *input.AccessType == AccessSetPass {
			if input.AccessPassword == nil || *input.AccessPassword == "" {
				return nil, apperr.BadRequest("Password is required for a password-protected set")
			}
		} else {
			// Leaving setpass clears the hash.
			updates["access_password"] = ""
		}
	} else if input.AccessPassword != nil {
		// A password change on its own only makes sense for a set that is
		// already password-protected; anything else would strand a hash on
		// a non-gated set.
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, apperr.NotFound("Flashcard set not found")
			}
			return nil, apperr.Internal("failed to load flashcard set", err)
		}
		if current.AccessType != AccessSetPass {
			return nil, apperr.BadRequest("Flashcard set is not password-protected")
		}
	}

	if input.AccessPassword != nil && *input.AccessPassword != "" {
		hash, err := HashPassword(*input.AccessPassword)
		if err != nil {
			return nil, apperr.Internal("failed to hash set password", err)
		}
		updates["access_password"] = hash
	}

	if len(updates) == 0 {
		return nil, apperr.BadRequest("Nothing to update")
	}

	if err := s.repo.Update(ctx, id, userID, updates); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Flashcard set not found")
		}
		return nil, apperr.Internal("failed to update flashcard set", err)
	}

	set, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to reload flashcard set", err)
	}
	return set, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Flashcard set not found")
		}
		return apperr.Internal("failed to delete flashcard set", err)
	}
	return nil
}

// Unlock checks the supplied password against a setpass set and, on a
// match, records a 24h unlock grant for the caller.
func (s *Service) Unlock(ctx context.Context, id, userID, password string) error {
	set, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Flashcard set not found")
		}
		return apperr.Internal("failed to load flashcard set", err)
	}

	if set.UserID == userID {
		// The owner never needs a grant.
		return nil
	}

	if set.AccessType != AccessSetPass {
		return apperr.BadRequest("Flashcard set is not password-protected")
	}
	if set.AccessPassword == "" {
		return apperr.NotFound("Flashcard set not found")
	}

	if !ComparePassword(password, set.AccessPassword) {
		return apperr.Forbidden("Incorrect set password")
	}

	if err := s.access.UnlockForUser(ctx, set.ID, userID); err != nil {
		return apperr.Internal("failed to store unlock grant", err)
	}
	return nil
}
