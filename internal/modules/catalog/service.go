package catalog

import (
	"context"
	"errors"

	"github.com/niranjan-aware/resonance-system/internal/domain"
	"github.com/niranjan-aware/resonance-system/internal/repository"
)

var ErrNotFound = errors.New("studio not found")

type StudioRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Studio, error)
	ListActive(ctx context.Context) ([]domain.Studio, error)
}

// Service exposes the read-only studio catalog.
type Service struct {
	studios StudioRepository
}

func NewService(studios StudioRepository) *Service {
	return &Service{studios: studios}
}

func (s *Service) ListStudios(ctx context.Context) ([]domain.Studio, error) {
	return s.studios.ListActive(ctx)
}

func (s *Service) GetStudio(ctx context.Context, id int64) (*domain.Studio, error) {
	st, err := s.studios.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !st.IsActive {
		return nil, ErrNotFound
	}
	return st, nil
}
