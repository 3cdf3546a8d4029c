package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/cache"
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/metrics"
	"github.com/pharmaguard-server/pkg/llm"
)

const (
	reasonNoCredential = "no_credential"
	reasonLLMFailure   = "llm_failure"
)

// ExplanationService produces the four-section narrative for a drug/phenotype pair.
// A remote completion is tried once when a completer is configured; every failure
// falls back to the reviewed table.
type ExplanationService struct {
	logger    *logrus.Logger
	completer domain.TextCompleter
	fallback  domain.FallbackExplanations
	cache     domain.ExplanationCache
	cacheTTL  time.Duration
}

// ExplanationOption configures an ExplanationService
type ExplanationOption func(*ExplanationService)

// WithCompleter enables remote generation
func WithCompleter(completer domain.TextCompleter) ExplanationOption {
	return func(s *ExplanationService) {
		s.completer = completer
	}
}

// WithCache stores successful remote explanations for ttl
func WithCache(c domain.ExplanationCache, ttl time.Duration) ExplanationOption {
	return func(s *ExplanationService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// NewExplanationService creates a new explanation service
func NewExplanationService(logger *logrus.Logger, fallback domain.FallbackExplanations, opts ...ExplanationOption) *ExplanationService {
	s := &ExplanationService{
		logger:   logger,
		fallback: fallback,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RemoteEnabled reports whether a completer is configured
func (s *ExplanationService) RemoteEnabled() bool {
	return s.completer != nil
}

// Generate never fails. The result is either a parsed remote reply, a cached remote
// reply or a fallback entry, never a mix.
func (s *ExplanationService) Generate(ctx context.Context, req *domain.ExplanationRequest) domain.Explanation {
	if s.completer == nil {
		s.logger.WithFields(logrus.Fields{
			"drug":      req.Drug,
			"phenotype": req.Phenotype,
			"reason":    reasonNoCredential,
		}).Debug("Remote generation not configured, using fallback explanation")
		return s.fromFallback(req)
	}

	variantContext := BuildVariantContext(req.Variants, req.Gene)
	key := cache.Key(s.completer.Model(), req.Drug, req.Phenotype, req.RiskLabel, req.Gene, variantContext)

	if sections, ok := s.cached(ctx, key); ok {
		metrics.RecordExplanation(domain.SourceCache)
		return domain.Explanation{Sections: sections, Source: domain.SourceCache}
	}

	start := time.Now()
	content, err := s.completer.Complete(ctx, systemInstruction, BuildPrompt(req, variantContext))
	metrics.RecordLLMRequest(time.Since(start))
	if err != nil {
		failure := llm.FailureReason(err)
		metrics.RecordLLMFailure(failure)
		s.logger.WithError(err).WithFields(logrus.Fields{
			"drug":      req.Drug,
			"phenotype": req.Phenotype,
			"reason":    reasonLLMFailure,
			"failure":   failure,
		}).Warn("LLM generation failed, using fallback explanation")
		return s.fromFallback(req)
	}

	sections := ParseCompletion(content)
	// A reply without any section marker is returned once but not cached
	if !sections.IsEmpty() {
		s.store(ctx, key, sections)
	}

	metrics.RecordExplanation(domain.SourceLLM)
	return domain.Explanation{Sections: sections, Source: domain.SourceLLM}
}

func (s *ExplanationService) fromFallback(req *domain.ExplanationRequest) domain.Explanation {
	metrics.RecordExplanation(domain.SourceFallback)
	return domain.Explanation{
		Sections: s.fallback.Explain(req.Drug, req.Phenotype),
		Source:   domain.SourceFallback,
	}
}

func (s *ExplanationService) cached(ctx context.Context, key string) (domain.ExplanationSections, bool) {
	if s.cache == nil {
		return domain.ExplanationSections{}, false
	}
	sections, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("Explanation cache read failed")
		return domain.ExplanationSections{}, false
	}
	return sections, found
}

func (s *ExplanationService) store(ctx context.Context, key string, sections domain.ExplanationSections) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, sections, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Explanation cache write failed")
	}
}
