package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

func TestMemoryReportRepository(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &memoryReportRepository{
		store: NewMemoryReportRepository().(*memoryReportRepository).store,
		now:   func() time.Time { return clock },
	}

	t.Run("relatório inexistente retorna nil", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "nao-existe")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	old := &domain.StoredReport{ID: "antigo", Report: &domain.AnalysisReport{}}
	require.NoError(t, repo.Save(ctx, old))

	clock = clock.AddDate(0, 0, 10)
	recent := &domain.StoredReport{ID: "recente", Report: &domain.AnalysisReport{}}
	require.NoError(t, repo.Save(ctx, recent))

	t.Run("salva e preenche created_at", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "recente")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, clock, got.CreatedAt)
		assert.NotNil(t, got.Report)
	})

	t.Run("lista do mais recente para o mais antigo sem conteúdo", func(t *testing.T) {
		list, err := repo.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "recente", list[0].ID)
		assert.Equal(t, "antigo", list[1].ID)
		assert.Nil(t, list[0].Report)
	})

	t.Run("respeita o limite", func(t *testing.T) {
		list, err := repo.List(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("reescrita mantém created_at original", func(t *testing.T) {
		clock = clock.Add(time.Hour)
		require.NoError(t, repo.Save(ctx, &domain.StoredReport{ID: "recente", SourceName: "novo"}))

		got, err := repo.GetByID(ctx, "recente")
		require.NoError(t, err)
		assert.Equal(t, "novo", got.SourceName)
		assert.Equal(t, clock.Add(-time.Hour), got.CreatedAt)
	})

	t.Run("remove relatórios antigos", func(t *testing.T) {
		removed, err := repo.DeleteOlderThan(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		got, err := repo.GetByID(ctx, "antigo")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
