// Package mcp exposes variant annotation and phenotype explanation as MCP tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/app"
	"github.com/pharmaguard-server/internal/domain"
)

const (
	toolParseVCF         = "parse_vcf"
	toolExplainPhenotype = "explain_phenotype"
)

// Server represents the PharmaGuard MCP server
type Server struct {
	config    *domain.MCPConfig
	app       *app.App
	mcpServer *mcp.Server
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance with every tool registered
func NewServer(cfg *domain.MCPConfig, logger *logrus.Logger, application *app.App) *Server {
	serverInfo := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}

	s := &Server{
		config:    cfg,
		app:       application,
		mcpServer: mcp.NewServer(serverInfo, nil),
		logger:    logger,
	}
	s.registerTools()
	return s
}

// registerTools registers the annotation and explanation tools with the SDK
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        toolParseVCF,
		Description: "Parse variant-call (VCF) text and annotate each variant against the pharmacogenomic knowledge base. Returns the annotated variants, per-line diagnostics and a success flag.",
	}, s.handleParseVCF)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        toolExplainPhenotype,
		Description: "Explain a drug/metabolizer-phenotype pair in four sections: summary, mechanism, risk rationale and a patient-friendly note. Uses the configured language model when available, otherwise a reviewed offline table.",
	}, s.handleExplainPhenotype)

	s.logger.WithField("tool_count", 2).Info("Successfully registered all tools")
}

// Run serves the MCP protocol over stdio until ctx is cancelled or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	s.logger.WithFields(logrus.Fields{
		"name":    s.config.ServerName,
		"version": s.config.ServerVersion,
	}).Info("Starting MCP server on stdio")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
