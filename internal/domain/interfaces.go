package domain

import (
	"context"
	"time"
)

// VariantKnowledgeBase resolves normalized variant identifiers to curated annotations
type VariantKnowledgeBase interface {
	Lookup(id string) (KnowledgeBaseEntry, bool)
}

// FallbackExplanations resolves a drug/phenotype pair to a reviewed explanation
type FallbackExplanations interface {
	Explain(drug, phenotype string) ExplanationSections
}

// VariantParser turns variant-call text into annotated variants
type VariantParser interface {
	Parse(text string) ParseResult
}

// ExplanationGenerator produces the four-section narrative. It never fails.
type ExplanationGenerator interface {
	Generate(ctx context.Context, req *ExplanationRequest) Explanation
}

// TextCompleter sends one chat completion request and returns the reply text
type TextCompleter interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// ExplanationCache stores remotely generated explanations
type ExplanationCache interface {
	Get(ctx context.Context, key string) (ExplanationSections, bool, error)
	Set(ctx context.Context, key string, sections ExplanationSections, ttl time.Duration) error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetLLMConfig() *LLMConfig
	Validate() error
}
