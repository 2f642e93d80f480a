package service

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"loan-referral/domain"
	"loan-referral/metrics"
	"loan-referral/repository"
)

// AmortizationService serves schedules through a cache. Cache failures are
// logged and never fail a computation.
type AmortizationService struct {
	engine  AmortizationEngine
	cache   repository.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewAmortizationService(
	engine AmortizationEngine,
	cache repository.CacheRepository,
	ttl time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *AmortizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &AmortizationService{engine: engine, cache: cache, ttl: ttl, logger: logger, metrics: m}
}

func (s *AmortizationService) Schedule(
	ctx context.Context,
	req domain.LoanScheduleRequest,
) (domain.LoanScheduleResult, error) {
	key := cacheKey(req, s.engine.AllowZeroRate)

	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var cached domain.LoanScheduleResult
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				s.metrics.ScheduleCacheHits.Inc()
				return cached, nil
			}
			s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
		}
	}

	result, err := s.engine.ComputeSchedule(req)
	if err != nil {
		return domain.LoanScheduleResult{}, err
	}
	s.metrics.SchedulesComputed.Inc()

	if s.cache != nil {
		if raw, err := json.Marshal(result); err != nil {
			s.logger.Warn("failed to encode schedule for cache", zap.Error(err))
		} else if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
			s.logger.Warn("failed to cache schedule", zap.String("key", key), zap.Error(err))
		}
	}
	return result, nil
}

func cacheKey(req domain.LoanScheduleRequest, zeroRate bool) string {
	key := "emi:" + req.Principal.String() + ":" + req.AnnualRatePercent.String() + ":" +
		req.TenureValue.String() + ":" + req.TenureUnit.String()
	if zeroRate {
		key += ":z"
	}
	return key
}
