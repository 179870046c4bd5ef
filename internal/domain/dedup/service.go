package dedup

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/metrics"
)

type ServiceConfig struct {
	Policy    ValidationPolicy
	Threshold float64
	// Timeout bounds a single duplicate check. Zero disables it.
	Timeout time.Duration
}

type Service struct {
	matcher *Matcher
	source  CandidateSource
	policy  ValidationPolicy
	timeout time.Duration
	now     func() time.Time
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewService(source CandidateSource, cfg ServiceConfig, logger zerolog.Logger, m *metrics.Metrics, opts ...MatcherOption) *Service {
	opts = append([]MatcherOption{WithThreshold(cfg.Threshold)}, opts...)
	s := &Service{
		matcher: NewMatcher(opts...),
		source:  source,
		policy:  cfg.Policy,
		timeout: cfg.Timeout,
		logger:  logger.With().Str("component", "dedup").Logger(),
		metrics: m,
	}
	s.now = s.matcher.now
	return s
}

// DefaultPolicy returns the configured policy applied when a request sends no
// flags.
func (s *Service) DefaultPolicy() ValidationPolicy { return s.policy }

// ValidateRequest resolves the registration variant, merges the request's
// policy flags over the default and runs the check.
func (s *Service) ValidateRequest(ctx context.Context, req *RegistrationRequest) (ValidationResult, error) {
	reg, err := req.Resolve(s.now())
	if err != nil {
		s.metrics.ObserveDedup("ERROR", 0, 0)
		return ValidationResult{}, err
	}
	return s.Validate(ctx, reg.Record(), req.EffectivePolicy(s.policy))
}

func (s *Service) Validate(ctx context.Context, rec PersonRecord, policy ValidationPolicy) (ValidationResult, error) {
	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.matcher.Validate(ctx, rec, policy, s.source)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveDedup("ERROR", 0, elapsed)
		s.logger.Warn().Err(err).Dur("latency", elapsed).Msg("duplicate check failed")
		return ValidationResult{}, err
	}

	verdict := string(result.Verdict)
	if result.Skipped {
		verdict = "SKIPPED"
	}
	s.metrics.ObserveDedup(verdict, len(result.Candidates), elapsed)

	evt := s.logger.Info()
	if result.IsDuplicate {
		evt = s.logger.Warn()
	}
	evt.Str("verdict", verdict).
		Str("skip_reason", string(result.SkipReason)).
		Str("matched_id", result.MatchedID).
		Int("candidates", len(result.Candidates)).
		Dur("latency", elapsed).
		Msg("duplicate check")
	return result, nil
}
