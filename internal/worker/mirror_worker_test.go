package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/bootstrap"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/sheets/memory"
	"finboard/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListRecords(ctx context.Context) ([]core.FinancialRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.FinancialRecord), args.Error(1)
}

func TestHandleChange_ReplaysSeededDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finboard.db")
	repo, err := storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	_, err = bootstrap.New(repo, storage.NewMigrator(path), nil, applog.Nop()).Init(ctx)
	require.NoError(t, err)

	mirror := memory.New()
	w := NewMirrorWorker(repo, mirror, applog.Nop())

	msg := amqp.NewRecordChangeMessage(core.ActionBootstrap, "")
	require.NoError(t, w.HandleChange(ctx, msg))
	require.NoError(t, w.HandleChange(ctx, msg), "duplicates are harmless")

	snap := mirror.Snapshot()
	require.Len(t, snap, 13)
	assert.Equal(t, "2024-08", snap[0].YearMonth)
	assert.Equal(t, "107388.01", snap[12].TotalCapital.StringFixed(2), "mirror holds the admin view")
	assert.Equal(t, 2, mirror.Replacements())
}

func TestHandleChange_Failures(t *testing.T) {
	ctx := context.Background()
	msg := amqp.NewRecordChangeMessage(core.ActionDelete, "2024-08")

	t.Run("source error", func(t *testing.T) {
		src := &mockSource{}
		src.On("ListRecords", ctx).Return(nil, errors.New("database is locked"))
		mirror := memory.New()

		err := NewMirrorWorker(src, mirror, applog.Nop()).HandleChange(ctx, msg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load records")
		assert.Zero(t, mirror.Replacements())
	})

	t.Run("mirror error", func(t *testing.T) {
		src := &mockSource{}
		src.On("ListRecords", ctx).Return([]core.FinancialRecord{}, nil)
		mirror := memory.New()
		mirror.FailWith(errors.New("403 forbidden"))

		err := NewMirrorWorker(src, mirror, applog.Nop()).HandleChange(ctx, msg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mirror after delete")
	})
}

func TestRunPeriodic(t *testing.T) {
	src := &mockSource{}
	src.On("ListRecords", mock.Anything).Return([]core.FinancialRecord{{YearMonth: "2024-08"}}, nil)
	mirror := memory.New()
	w := NewMirrorWorker(src, mirror, applog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunPeriodic(ctx, 10*time.Millisecond) }()

	assert.Eventually(t, func() bool { return mirror.Replacements() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRunPeriodic_Disabled(t *testing.T) {
	w := NewMirrorWorker(&mockSource{}, memory.New(), applog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, w.RunPeriodic(ctx, 0))
}
