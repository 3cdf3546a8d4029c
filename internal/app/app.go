// Package app wires the knowledge base, the parser and the explanation service from
// configuration. Every entry point builds its dependencies here.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/pharmaguard-server/internal/cache"
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/knowledgebase"
	"github.com/pharmaguard-server/internal/service"
	"github.com/pharmaguard-server/pkg/llm"
	"github.com/pharmaguard-server/pkg/vcf"
)

// App holds the long-lived collaborators shared by the HTTP, MCP and CLI surfaces
type App struct {
	Config        *domain.Config
	Logger        *logrus.Logger
	KnowledgeBase *knowledgebase.KnowledgeBase
	Fallback      *knowledgebase.FallbackTable
	Annotator     *service.AnnotationService
	Explainer     *service.ExplanationService

	closers []io.Closer
}

// New builds an App. Remote generation is enabled only when an API key is configured.
func New(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (*App, error) {
	kb, err := knowledgebase.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	fallback := knowledgebase.LoadFallback(cfg.Fallback.OverrideFile, logger)

	a := &App{
		Config:        cfg,
		Logger:        logger,
		KnowledgeBase: kb,
		Fallback:      fallback,
		Annotator:     service.NewAnnotationService(logger, vcf.NewParser(kb)),
	}

	var opts []service.ExplanationOption
	if cfg.LLM.Enabled() {
		opts = append(opts, service.WithCompleter(newCompleter(cfg, logger)))

		explanationCache, err := cache.New(ctx, cfg.Cache, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create explanation cache: %w", err)
		}
		if explanationCache != nil {
			opts = append(opts, service.WithCache(explanationCache, cfg.Cache.TTL))
			if closer, ok := explanationCache.(io.Closer); ok {
				a.closers = append(a.closers, closer)
			}
		}
	}
	a.Explainer = service.NewExplanationService(logger, fallback, opts...)

	logger.WithFields(logrus.Fields{
		"knowledge_base_entries": kb.Len(),
		"fallback_drugs":         len(fallback.Drugs()),
		"remote_generation":      cfg.LLM.Enabled(),
		"model":                  cfg.LLM.Model,
	}).Info("Application initialized")

	return a, nil
}

func newCompleter(cfg *domain.Config, logger *logrus.Logger) *llm.Client {
	return llm.NewClient(llm.Config{
		BaseURL:             cfg.LLM.BaseURL,
		APIKey:              cfg.LLM.APIKey,
		Model:               cfg.LLM.Model,
		Temperature:         cfg.LLM.Temperature,
		MaxTokens:           cfg.LLM.MaxTokens,
		Timeout:             cfg.LLM.Timeout,
		RateLimit:           cfg.LLM.RateLimit,
		Burst:               cfg.LLM.Burst,
		BreakerMaxRequests:  cfg.Breaker.MaxRequests,
		BreakerInterval:     cfg.Breaker.Interval,
		BreakerTimeout:      cfg.Breaker.Timeout,
		BreakerMinRequests:  cfg.Breaker.MinRequests,
		BreakerFailureRatio: cfg.Breaker.FailureRatio,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker changed state")
		},
	})
}

// Close releases cache connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
