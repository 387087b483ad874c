package tickets

import (
	"context"

	"eventtickets/internal/domain"
	"eventtickets/internal/repository"
)

type TicketTypeUseCase interface {
	ListByEvent(ctx context.Context, eventID int64) ([]domain.TicketType, error)
	GetByID(ctx context.Context, id int64) (*domain.TicketType, error)
}

// Cache holds the per-event catalog listing. Counts served from here are
// advisory; checkout re-checks against the ledger.
type Cache interface {
	GetTicketTypes(ctx context.Context, eventID int64) ([]domain.TicketType, error)
	SetTicketTypes(ctx context.Context, eventID int64, types []domain.TicketType) error
}

type TicketService struct {
	repo  repository.TicketTypeRepository
	cache Cache
}

func NewTicketService(repo repository.TicketTypeRepository, cache Cache) *TicketService {
	return &TicketService{repo: repo, cache: cache}
}

func (s *TicketService) ListByEvent(ctx context.Context, eventID int64) ([]domain.TicketType, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTicketTypes(ctx, eventID); err == nil && cached != nil {
			return cached, nil
		}
	}

	types, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetTicketTypes(ctx, eventID, types)
	}
	return types, nil
}

func (s *TicketService) GetByID(ctx context.Context, id int64) (*domain.TicketType, error) {
	return s.repo.GetByID(ctx, id)
}

var _ TicketTypeUseCase = (*TicketService)(nil)
