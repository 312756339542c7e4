package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/romboooo/distr-is/internal/cache"
	"github.com/romboooo/distr-is/internal/domain"
)

// LabelService handles label profiles
type LabelService struct {
	repo   domain.LabelRepository
	cache  *cache.Store
	logger *slog.Logger
}

// NewLabelService creates a new label service
func NewLabelService(repo domain.LabelRepository, store *cache.Store, logger *slog.Logger) *LabelService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelService{repo: repo, cache: store, logger: logger}
}

// GetLabel returns a single label profile
func (s *LabelService) GetLabel(ctx context.Context, id int64) (*domain.Label, error) {
	return cache.ReadAs(ctx, s.cache, keyLabel(id), func(ctx context.Context) (*domain.Label, error) {
		return s.repo.GetLabel(ctx, id)
	})
}

// GetLabels returns one page of label profiles
func (s *LabelService) GetLabels(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Label], error) {
	key := keyLabels(page.Number, page.Size)
	return cache.ReadAs(ctx, s.cache, key, func(ctx context.Context) (*domain.Page[domain.Label], error) {
		return s.repo.GetLabels(ctx, page)
	})
}

// GetLabelByUser returns the label profile backing a user account.
// 404 maps to (nil, nil): a fresh LABEL account has no profile yet.
func (s *LabelService) GetLabelByUser(ctx context.Context, userID int64) (*domain.Label, error) {
	return cache.ReadAs(ctx, s.cache, keyLabelByUser(userID), func(ctx context.Context) (*domain.Label, error) {
		l, err := s.repo.GetLabelByUser(ctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return l, err
	})
}

// CreateLabel creates the label profile for a user account
func (s *LabelService) CreateLabel(ctx context.Context, l domain.Label) (*domain.Label, error) {
	created, err := s.repo.CreateLabel(ctx, l)
	if err != nil {
		return nil, err
	}
	applyInvalidation(s.cache, MutationCreateLabel, Subject{UserID: created.UserID, LabelID: created.ID})
	s.logger.Info("label profile created", "id", created.ID, "user", created.UserID)
	return created, nil
}

// UpdateLabel updates a label profile
func (s *LabelService) UpdateLabel(ctx context.Context, l domain.Label) (*domain.Label, error) {
	updated, err := s.repo.UpdateLabel(ctx, l)
	if err != nil {
		return nil, err
	}
	applyInvalidation(s.cache, MutationUpdateLabel, Subject{UserID: updated.UserID, LabelID: updated.ID})
	s.logger.Info("label profile updated", "id", updated.ID)
	return updated, nil
}
