package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Service answers dashboard queries against the loaded table, caching derived
// series when a Redis backed Cache is configured.
type Service struct {
	table    *Table
	excluded []string
	cache    *Cache
	logger   *slog.Logger
}

// NewService wires the table with its excluded metrics and an optional cache.
func NewService(table *Table, excluded []string, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		table:    table,
		excluded: append([]string(nil), excluded...),
		cache:    cache,
		logger:   logger,
	}
}

// Table exposes the immutable source table.
func (s *Service) Table() *Table { return s.table }

// Excluded returns the overlay metrics in legend order.
func (s *Service) Excluded() []string { return append([]string(nil), s.excluded...) }

// SelectableMetrics lists the metrics a user may stack.
func (s *Service) SelectableMetrics() []string {
	return ListSelectableMetrics(s.table, s.excluded)
}

// DefaultSelection selects every selectable metric over every year.
func (s *Service) DefaultSelection() Selection {
	return Selection{Metrics: s.SelectableMetrics(), Years: FullRange()}
}

// Series resolves the chart data for sel.
func (s *Service) Series(ctx context.Context, sel Selection) (Series, error) {
	series, _, err := s.resolve(ctx, sel, "request")
	return series, err
}

// Warm makes sure sel is cached and reports whether it already was.
func (s *Service) Warm(ctx context.Context, sel Selection) (bool, error) {
	_, hit, err := s.resolve(ctx, sel, "warmup")
	return hit, err
}

// InvalidateCache drops every cached series.
func (s *Service) InvalidateCache(ctx context.Context) (int64, error) {
	return s.cache.Bump(ctx)
}

func (s *Service) resolve(ctx context.Context, sel Selection, source string) (Series, bool, error) {
	if err := sel.Validate(); err != nil {
		return Series{}, false, err
	}
	start := time.Now()
	defer func() { observeSeriesBuild(source, time.Since(start)) }()

	loader := func(context.Context) (any, error) {
		return BuildSeries(s.table, sel, s.excluded)
	}
	if !s.cache.Enabled() {
		series, err := BuildSeries(s.table, sel, s.excluded)
		return series, false, err
	}

	key, err := s.cache.BuildKey(ctx, seriesKey(s.table.ID.String(), sel.Key()))
	if err == nil {
		var series Series
		hit, fetchErr := s.cache.FetchJSON(ctx, key, &series, loader)
		if fetchErr == nil {
			if hit {
				recordCacheHit(source)
			} else {
				recordCacheMiss(source)
			}
			return series, hit, nil
		}
		if isDomainError(fetchErr) || ctx.Err() != nil {
			return Series{}, false, fetchErr
		}
		err = fetchErr
	}
	s.logger.Warn("series cache unavailable, computing directly", slog.String("selection", sel.Key()), slog.Any("error", err))
	recordCacheMiss(source)
	series, err := BuildSeries(s.table, sel, s.excluded)
	return series, false, err
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrUnknownMetric) ||
		errors.Is(err, ErrDataLoad)
}
