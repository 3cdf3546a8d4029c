package service

import (
	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/metrics"
)

// AnnotationService parses variant-call text and records parse metrics
type AnnotationService struct {
	logger *logrus.Logger
	parser domain.VariantParser
}

// NewAnnotationService creates a new annotation service
func NewAnnotationService(logger *logrus.Logger, parser domain.VariantParser) *AnnotationService {
	return &AnnotationService{
		logger: logger,
		parser: parser,
	}
}

// Parse annotates text. It never fails; line diagnostics are returned in the result.
func (a *AnnotationService) Parse(text string) domain.ParseResult {
	result := a.parser.Parse(text)
	metrics.RecordParse(result)

	entry := a.logger.WithFields(logrus.Fields{
		"variants":    len(result.Variants),
		"line_errors": len(result.Errors),
		"success":     result.Success,
	})
	if result.Success {
		entry.Info("Parsed variant-call file")
	} else {
		entry.Warn("No variants recognized in variant-call file")
	}
	return result
}
