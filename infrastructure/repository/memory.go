package repository

import (
	"context"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

// memoryReportRepository guarda os relatórios em memória.
// Usado quando o banco está desabilitado e pela CLI.
type memoryReportRepository struct {
	store *cache.Cache
	now   func() time.Time
}

func NewMemoryReportRepository() ReportRepository {
	return &memoryReportRepository{
		store: cache.New(cache.NoExpiration, 0),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryReportRepository) Save(_ context.Context, report *domain.StoredReport) error {
	if existing, ok := r.store.Get(report.ID); ok {
		report.CreatedAt = existing.(*domain.StoredReport).CreatedAt
	} else {
		report.CreatedAt = r.now()
	}

	stored := *report
	r.store.Set(report.ID, &stored, cache.NoExpiration)
	return nil
}

func (r *memoryReportRepository) GetByID(_ context.Context, id string) (*domain.StoredReport, error) {
	item, ok := r.store.Get(id)
	if !ok {
		return nil, nil
	}

	stored := *item.(*domain.StoredReport)
	return &stored, nil
}

func (r *memoryReportRepository) List(_ context.Context, limit int) ([]*domain.StoredReport, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	reports := make([]*domain.StoredReport, 0, r.store.ItemCount())
	for _, item := range r.store.Items() {
		summary := *item.Object.(*domain.StoredReport)
		summary.Report = nil
		reports = append(reports, &summary)
	}

	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].ID < reports[j].ID
	})

	if len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

func (r *memoryReportRepository) DeleteOlderThan(_ context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}

	cutoff := r.now().AddDate(0, 0, -days)

	var removed int64
	for id, item := range r.store.Items() {
		if item.Object.(*domain.StoredReport).CreatedAt.Before(cutoff) {
			r.store.Delete(id)
			removed++
		}
	}
	return removed, nil
}
