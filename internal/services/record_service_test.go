package services

import (
	"context"
	"errors"
	"testing"

	"finboard/internal/core"
	applog "finboard/internal/log"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListRecords(ctx context.Context) ([]core.FinancialRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.FinancialRecord), args.Error(1)
}

func (m *mockStore) UpsertRecord(ctx context.Context, rec core.FinancialRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) UpdateRecord(ctx context.Context, rec core.FinancialRecord) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) DeleteRecord(ctx context.Context, yearMonth string) (int64, error) {
	args := m.Called(ctx, yearMonth)
	return args.Get(0).(int64), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishRecordChange(ctx context.Context, action core.ChangeAction, yearMonth string) error {
	return m.Called(ctx, action, yearMonth).Error(0)
}

func dec(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func validInput(ym string) core.RecordInput {
	return core.RecordInput{
		YearMonth:    ym,
		TotalIncome:  dec("10994.64"),
		TotalExpense: dec("3758.68"),
		TotalCapital: dec("28493.06"),
	}
}

func TestRecordService_ListPublic(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("ListRecords", ctx).Return([]core.FinancialRecord{{
		YearMonth:    "2024-11",
		TotalCapital: decimal.RequireFromString("28493.06"),
		InterestRate: decimal.NewFromInt(4),
	}}, nil)

	svc := NewRecordService(store, nil, applog.Nop())

	admin, err := svc.List(ctx)
	require.NoError(t, err)
	assert.True(t, admin[0].TotalCapital.Equal(decimal.RequireFromString("28493.06")))

	public, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.InDelta(t, 94.9768666, public[0].TotalCapital.InexactFloat64(), 1e-6)
	assert.True(t, public[0].RiskFreeIncome.Equal(public[0].TotalCapital))
}

func TestRecordService_ListError(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("ListRecords", ctx).Return(nil, errors.New("no such table: financial_data"))

	_, err := NewRecordService(store, nil, applog.Nop()).ListPublic(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")
}

func TestRecordService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults and publishes", func(t *testing.T) {
		store := &mockStore{}
		pub := &mockPublisher{}
		store.On("UpsertRecord", ctx, mock.MatchedBy(func(r core.FinancialRecord) bool {
			return r.YearMonth == "2024-08" &&
				r.InterestRate.Equal(decimal.NewFromInt(4)) &&
				r.InvestmentIncome.IsZero()
		})).Return(nil).Once()
		pub.On("PublishRecordChange", ctx, core.ActionUpsert, "2024-08").Return(nil).Once()

		_, err := NewRecordService(store, pub, applog.Nop()).Create(ctx, validInput("2024-08"))
		require.NoError(t, err)
		store.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("validation stops before the store", func(t *testing.T) {
		store := &mockStore{}
		in := validInput("2024-08")
		in.TotalCapital = nil

		_, err := NewRecordService(store, nil, applog.Nop()).Create(ctx, in)
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
		store.AssertNotCalled(t, "UpsertRecord", mock.Anything, mock.Anything)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		store := &mockStore{}
		pub := &mockPublisher{}
		store.On("UpsertRecord", ctx, mock.Anything).Return(nil)
		pub.On("PublishRecordChange", ctx, core.ActionUpsert, "2024-08").Return(errors.New("channel closed"))

		_, err := NewRecordService(store, pub, applog.Nop()).Create(ctx, validInput("2024-08"))
		assert.NoError(t, err)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		store := &mockStore{}
		pub := &mockPublisher{}
		store.On("UpsertRecord", ctx, mock.Anything).Return(errors.New("disk full"))

		_, err := NewRecordService(store, pub, applog.Nop()).Create(ctx, validInput("2024-08"))
		require.Error(t, err)
		assert.False(t, core.IsValidationError(err))
		pub.AssertNotCalled(t, "PublishRecordChange", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRecordService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("missing month", func(t *testing.T) {
		store := &mockStore{}
		store.On("UpdateRecord", ctx, mock.Anything).Return(int64(0), nil)

		_, err := NewRecordService(store, nil, applog.Nop()).Update(ctx, validInput("2099-01"))
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.True(t, IsNotFound(err))
	})

	t.Run("missing key", func(t *testing.T) {
		store := &mockStore{}
		_, err := NewRecordService(store, nil, applog.Nop()).Update(ctx, core.RecordInput{})
		require.Error(t, err)
		assert.Equal(t, "missing yearMonth", err.Error())
	})

	t.Run("existing month", func(t *testing.T) {
		store := &mockStore{}
		pub := &mockPublisher{}
		store.On("UpdateRecord", ctx, mock.Anything).Return(int64(1), nil)
		pub.On("PublishRecordChange", ctx, core.ActionUpdate, "2024-08").Return(nil).Once()

		_, err := NewRecordService(store, pub, applog.Nop()).Update(ctx, validInput("2024-08"))
		require.NoError(t, err)
		pub.AssertExpectations(t)
	})
}

func TestRecordService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		err := NewRecordService(&mockStore{}, nil, applog.Nop()).Delete(ctx, "")
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("not found", func(t *testing.T) {
		store := &mockStore{}
		store.On("DeleteRecord", ctx, "2099-01").Return(int64(0), nil)
		err := NewRecordService(store, nil, applog.Nop()).Delete(ctx, "2099-01")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("malformed key is passed through", func(t *testing.T) {
		store := &mockStore{}
		store.On("DeleteRecord", ctx, "garbage").Return(int64(0), nil)
		err := NewRecordService(store, nil, applog.Nop()).Delete(ctx, "garbage")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("deleted", func(t *testing.T) {
		store := &mockStore{}
		pub := &mockPublisher{}
		store.On("DeleteRecord", ctx, "2024-08").Return(int64(1), nil)
		pub.On("PublishRecordChange", ctx, core.ActionDelete, "2024-08").Return(nil).Once()

		require.NoError(t, NewRecordService(store, pub, applog.Nop()).Delete(ctx, "2024-08"))
		pub.AssertExpectations(t)
	})
}
