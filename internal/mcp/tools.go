package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/knowledgebase"
)

// ParseVCFParams defines parameters for the parse_vcf tool
type ParseVCFParams struct {
	VCFContent string `json:"vcf_content" jsonschema:"the full text of the variant-call file"`
}

// ExplainPhenotypeParams defines parameters for the explain_phenotype tool
type ExplainPhenotypeParams struct {
	Drug       string `json:"drug" jsonschema:"drug name, for example CODEINE"`
	Phenotype  string `json:"phenotype" jsonschema:"metabolizer phenotype code: PM, IM, NM or RM"`
	RiskLabel  string `json:"risk_label,omitempty" jsonschema:"risk label from the upstream risk assessment"`
	Gene       string `json:"gene,omitempty" jsonschema:"primary gene; defaults to the drug's known pharmacogene"`
	VCFContent string `json:"vcf_content,omitempty" jsonschema:"optional variant-call text whose variants are cited in the explanation"`
}

// handleParseVCF handles the parse_vcf tool invocation
func (s *Server) handleParseVCF(ctx context.Context, req *mcp.CallToolRequest, params ParseVCFParams) (*mcp.CallToolResult, domain.ParseResult, error) {
	s.logger.WithField("tool", toolParseVCF).Info("Tool invoked")

	result := s.app.Annotator.Parse(params.VCFContent)
	return s.createJSONResult(parseSummary(result), result), result, nil
}

// handleExplainPhenotype handles the explain_phenotype tool invocation
func (s *Server) handleExplainPhenotype(ctx context.Context, req *mcp.CallToolRequest, params ExplainPhenotypeParams) (*mcp.CallToolResult, domain.Explanation, error) {
	s.logger.WithField("tool", toolExplainPhenotype).Info("Tool invoked")

	explainReq := &domain.ExplanationRequest{
		Drug:      params.Drug,
		Phenotype: params.Phenotype,
		RiskLabel: params.RiskLabel,
		Gene:      params.Gene,
	}
	if errs := explainReq.Validate(); len(errs) > 0 {
		return s.createErrorResult("Invalid parameters", errors.Join(errs...)), domain.Explanation{}, nil
	}
	if explainReq.Gene == "" {
		explainReq.Gene, _ = knowledgebase.PrimaryGene(explainReq.Drug)
	}
	if params.VCFContent != "" {
		explainReq.Variants = s.app.Annotator.Parse(params.VCFContent).Variants
	}

	explanation := s.app.Explainer.Generate(ctx, explainReq)
	summary := fmt.Sprintf("Explanation for %s (%s) from %s", strings.ToUpper(params.Drug), strings.ToUpper(params.Phenotype), explanation.Source)
	return s.createJSONResult(summary, explanation), explanation, nil
}

func parseSummary(result domain.ParseResult) string {
	if !result.Success {
		return fmt.Sprintf("No pharmacogenomic variants recognized (%d line errors)", len(result.Errors))
	}
	return fmt.Sprintf("Annotated %d variants (%d line errors)", len(result.Variants), len(result.Errors))
}

// createJSONResult returns a one-line summary followed by the JSON payload
func (s *Server) createJSONResult(summary string, payload interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return s.createErrorResult("Failed to encode result", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: summary},
			&mcp.TextContent{Text: string(data)},
		},
	}
}

// createErrorResult creates a standardized error result for tool calls
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
