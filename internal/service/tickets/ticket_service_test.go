package tickets

import (
	"context"
	"errors"
	"testing"

	"eventtickets/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTicketTypeRepository struct {
	mock.Mock
}

func (m *MockTicketTypeRepository) GetByID(ctx context.Context, id int64) (*domain.TicketType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketType), args.Error(1)
}

func (m *MockTicketTypeRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.TicketType, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.TicketType), args.Error(1)
}

func (m *MockTicketTypeRepository) Reserve(ctx context.Context, ticketTypeID int64, qty int) error {
	args := m.Called(ctx, ticketTypeID, qty)
	return args.Error(0)
}

func (m *MockTicketTypeRepository) Release(ctx context.Context, ticketTypeID int64, qty int) error {
	args := m.Called(ctx, ticketTypeID, qty)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetTicketTypes(ctx context.Context, eventID int64) ([]domain.TicketType, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.TicketType), args.Error(1)
}

func (m *MockCache) SetTicketTypes(ctx context.Context, eventID int64, types []domain.TicketType) error {
	args := m.Called(ctx, eventID, types)
	return args.Error(0)
}

func sampleTypes() []domain.TicketType {
	return []domain.TicketType{
		{ID: 10, EventID: 1, Name: "General Admission", Price: decimal.NewFromInt(50), TotalTickets: 100, AvailableTickets: 40, BookedTickets: 60},
		{ID: 11, EventID: 1, Name: "VIP", Price: decimal.NewFromInt(120), TotalTickets: 10, AvailableTickets: 1, BookedTickets: 9},
	}
}

func TestTicketService_ListByEvent_CacheMiss(t *testing.T) {
	mockRepo := &MockTicketTypeRepository{}
	mockCache := &MockCache{}
	service := NewTicketService(mockRepo, mockCache)
	ctx := context.Background()

	types := sampleTypes()
	mockCache.On("GetTicketTypes", ctx, int64(1)).Return(([]domain.TicketType)(nil), nil).Once()
	mockRepo.On("ListByEvent", ctx, int64(1)).Return(types, nil).Once()
	mockCache.On("SetTicketTypes", ctx, int64(1), types).Return(nil).Once()

	result, err := service.ListByEvent(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, types, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestTicketService_ListByEvent_CacheHit(t *testing.T) {
	mockRepo := &MockTicketTypeRepository{}
	mockCache := &MockCache{}
	service := NewTicketService(mockRepo, mockCache)
	ctx := context.Background()

	types := sampleTypes()
	mockCache.On("GetTicketTypes", ctx, int64(1)).Return(types, nil).Once()

	result, err := service.ListByEvent(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, types, result)
	mockRepo.AssertNotCalled(t, "ListByEvent")
}

func TestTicketService_ListByEvent_CacheErrorFallsThrough(t *testing.T) {
	mockRepo := &MockTicketTypeRepository{}
	mockCache := &MockCache{}
	service := NewTicketService(mockRepo, mockCache)
	ctx := context.Background()

	types := sampleTypes()
	mockCache.On("GetTicketTypes", ctx, int64(1)).Return(([]domain.TicketType)(nil), errors.New("redis down")).Once()
	mockRepo.On("ListByEvent", ctx, int64(1)).Return(types, nil).Once()
	mockCache.On("SetTicketTypes", ctx, int64(1), types).Return(nil).Once()

	result, err := service.ListByEvent(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, types, result)
}

func TestTicketService_GetByID(t *testing.T) {
	mockRepo := &MockTicketTypeRepository{}
	service := NewTicketService(mockRepo, nil)
	ctx := context.Background()

	types := sampleTypes()
	tt := &types[0]
	mockRepo.On("GetByID", ctx, int64(10)).Return(tt, nil).Once()

	result, err := service.GetByID(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, tt, result)
}
