package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/service"
)

type mockAllocator struct{ mock.Mock }

func (m *mockAllocator) Create(ctx context.Context, req service.CreateRequest) (*model.Reservation, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*model.Reservation)
	return res, args.Error(1)
}

func (m *mockAllocator) Update(ctx context.Context, res *model.Reservation, patch model.ReservationPatch) (*model.Reservation, error) {
	args := m.Called(ctx, res, patch)
	out, _ := args.Get(0).(*model.Reservation)
	return out, args.Error(1)
}

func (m *mockAllocator) CheckExisting(ctx context.Context, ownerID uint64, date time.Time, svc string) (*model.Reservation, error) {
	args := m.Called(ctx, ownerID, date, svc)
	res, _ := args.Get(0).(*model.Reservation)
	return res, args.Error(1)
}

type mockWeek struct{ mock.Mock }

func (m *mockWeek) WeekAvailability(ctx context.Context, start time.Time) (service.WeekAvailability, error) {
	args := m.Called(ctx, start)
	week, _ := args.Get(0).(service.WeekAvailability)
	return week, args.Error(1)
}

type mockReservations struct{ mock.Mock }

func (m *mockReservations) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*model.Reservation)
	return res, args.Error(1)
}

func (m *mockReservations) List(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.Reservation)
	return list, args.Error(1)
}

func (m *mockReservations) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev queue.ReservationEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type mockPurger struct{ mock.Mock }

func (m *mockPurger) Purge(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, email, name, password, role string, cost int) (uint64, error) {
	args := m.Called(ctx, email, name, password, role, cost)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

type mockMeals struct{ mock.Mock }

func (m *mockMeals) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]model.Category)
	return cats, args.Error(1)
}

func (m *mockMeals) List(ctx context.Context, categoryIDs []uint64) ([]model.Meal, error) {
	args := m.Called(ctx, categoryIDs)
	meals, _ := args.Get(0).([]model.Meal)
	return meals, args.Error(1)
}

func (m *mockMeals) GetByID(ctx context.Context, id uint64) (*model.Meal, error) {
	args := m.Called(ctx, id)
	meal, _ := args.Get(0).(*model.Meal)
	return meal, args.Error(1)
}

func (m *mockMeals) Save(ctx context.Context, meal *model.Meal) error {
	return m.Called(ctx, meal).Error(0)
}

func (m *mockMeals) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}
