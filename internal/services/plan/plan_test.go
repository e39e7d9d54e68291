package plan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/marketplace-backend/internal/apperr"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	plans, _ := args.Get(0).([]*models.Plan)
	return plans, args.Error(1)
}

func (m *RepositoryMock) ListPlansByType(ctx context.Context, accountType string) ([]*models.Plan, error) {
	args := m.Called(ctx, accountType)
	plans, _ := args.Get(0).([]*models.Plan)
	return plans, args.Error(1)
}

func (m *RepositoryMock) UpsertPlan(ctx context.Context, plan models.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newTestService(repo *RepositoryMock, cache *CacheMock) *Service {
	return New(repo, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestList_AdminSeesWholeCatalog(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)
	svc := newTestService(repo, cache)

	catalog := []*models.Plan{
		{AccountType: models.AccountTypeReseller, Tier: models.TierOne, Amount: 10, DurationDays: 30},
		{AccountType: models.AccountTypeStoreOwner, Tier: models.TierOne, Amount: 10, DurationDays: 30},
	}
	cache.On("Get", "plans:all", mock.Anything).Return(false, nil)
	repo.On("ListPlans", mock.Anything).Return(catalog, nil)
	cache.On("Set", "plans:all", mock.Anything, time.Hour).Return(nil)

	plans, err := svc.List(context.Background(), models.RoleAdmin)

	require.NoError(t, err)
	assert.Len(t, plans, 2)
	repo.AssertExpectations(t)
}

func TestList_ResellerSeesOwnTypeOnly(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)
	svc := newTestService(repo, cache)

	cache.On("Get", "plans:reseller", mock.Anything).Return(false, nil)
	repo.On("ListPlansByType", mock.Anything, models.AccountTypeReseller).
		Return([]*models.Plan{{AccountType: models.AccountTypeReseller, Tier: models.TierTwo}}, nil)
	cache.On("Set", "plans:reseller", mock.Anything, time.Hour).Return(nil)

	plans, err := svc.List(context.Background(), models.RoleReseller)

	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, models.AccountTypeReseller, plans[0].AccountType)
	repo.AssertNotCalled(t, "ListPlans", mock.Anything)
}

func TestList_StoreOwnerForbidden(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)
	svc := newTestService(repo, cache)

	_, err := svc.List(context.Background(), models.RoleStoreOwner)

	require.ErrorIs(t, err, apperr.ErrForbidden)
	repo.AssertNotCalled(t, "ListPlans", mock.Anything)
	repo.AssertNotCalled(t, "ListPlansByType", mock.Anything, mock.Anything)
}

func TestList_CacheErrorFallsThroughToRepo(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)
	svc := newTestService(repo, cache)

	cache.On("Get", "plans:all", mock.Anything).Return(false, errors.New("redis is down"))
	repo.On("ListPlans", mock.Anything).Return([]*models.Plan{{Tier: models.TierOne}}, nil)
	cache.On("Set", "plans:all", mock.Anything, time.Hour).Return(errors.New("redis is down"))

	plans, err := svc.List(context.Background(), models.RoleAdmin)

	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestUpsert_AdminOnly(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)
	svc := newTestService(repo, cache)

	_, err := svc.Upsert(context.Background(), models.RoleReseller, models.DummyUpsertPlans{
		Tiers: []models.DummyPlan{{AccountType: models.AccountTypeReseller, Tier: models.TierOne, Amount: 10, DurationDays: 30}},
	})

	require.ErrorIs(t, err, apperr.ErrForbidden)
	repo.AssertNotCalled(t, "UpsertPlan", mock.Anything, mock.Anything)
}

func TestUpsert_Success(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)
	svc := newTestService(repo, cache)

	repo.On("UpsertPlan", mock.Anything, models.Plan{
		AccountType: models.AccountTypeReseller, Tier: models.TierOne, Amount: 15, DurationDays: 30,
	}).Return(nil)
	repo.On("UpsertPlan", mock.Anything, models.Plan{
		AccountType: models.AccountTypeStoreOwner, Tier: models.TierThree, Amount: 55, DurationDays: 180,
	}).Return(nil)
	cache.On("Invalidate", "plans:all").Return(nil)
	cache.On("Invalidate", "plans:reseller").Return(nil)
	repo.On("ListPlans", mock.Anything).Return([]*models.Plan{
		{AccountType: models.AccountTypeReseller, Tier: models.TierOne, Amount: 15, DurationDays: 30},
		{AccountType: models.AccountTypeStoreOwner, Tier: models.TierThree, Amount: 55, DurationDays: 180},
	}, nil)

	plans, err := svc.Upsert(context.Background(), models.RoleAdmin, models.DummyUpsertPlans{
		Tiers: []models.DummyPlan{
			{AccountType: models.AccountTypeReseller, Tier: models.TierOne, Amount: 15, DurationDays: 30},
			{AccountType: models.AccountTypeStoreOwner, Tier: models.TierThree, Amount: 55, DurationDays: 180},
		},
	})

	require.NoError(t, err)
	assert.Len(t, plans, 2)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestUpsert_RejectsNegativeAmount(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)
	svc := newTestService(repo, cache)

	_, err := svc.Upsert(context.Background(), models.RoleAdmin, models.DummyUpsertPlans{
		Tiers: []models.DummyPlan{{AccountType: models.AccountTypeReseller, Tier: models.TierOne, Amount: -1, DurationDays: 30}},
	})

	require.ErrorIs(t, err, apperr.ErrValidation)
	repo.AssertNotCalled(t, "UpsertPlan", mock.Anything, mock.Anything)
}

func TestUpsert_RejectsZeroDuration(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)
	svc := newTestService(repo, cache)

	_, err := svc.Upsert(context.Background(), models.RoleAdmin, models.DummyUpsertPlans{
		Tiers: []models.DummyPlan{{AccountType: models.AccountTypeReseller, Tier: models.TierOne, Amount: 10, DurationDays: 0}},
	})

	require.ErrorIs(t, err, apperr.ErrValidation)
}
