package mcp

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/app"
	"github.com/pharmaguard-server/internal/domain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.FatalLevel)

	cfg := &domain.Config{
		LLM: domain.LLMConfig{Timeout: time.Second},
		MCP: domain.MCPConfig{ServerName: "pharmaguard", ServerVersion: "test"},
	}
	application, err := app.New(context.Background(), cfg, logger)
	require.NoError(t, err)

	return NewServer(&cfg.MCP, logger, application)
}

func textOf(t *testing.T, result *mcp.CallToolResult, i int) string {
	t.Helper()
	require.Greater(t, len(result.Content), i)
	text, ok := result.Content[i].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewServer(t *testing.T) {
	server := newTestServer(t)
	assert.NotNil(t, server.mcpServer)
	assert.NotNil(t, server.logger)
	assert.Equal(t, "pharmaguard", server.config.ServerName)
}

func TestHandleParseVCF(t *testing.T) {
	server := newTestServer(t)

	result, output, err := server.handleParseVCF(context.Background(), nil, ParseVCFParams{
		VCFContent: "chr10\t96521657\trs1799853\tC\tT\t.\tPASS\tGENE=CYP2C9;STAR=*2",
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	require.Len(t, output.Variants, 1)
	assert.Equal(t, "CYP2C9", output.Variants[0].Gene)
	assert.Equal(t, "Annotated 1 variants (0 line errors)", textOf(t, result, 0))

	var decoded domain.ParseResult
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result, 1)), &decoded))
	assert.Equal(t, output, decoded)
}

func TestHandleParseVCF_EmptyContent(t *testing.T) {
	server := newTestServer(t)

	for _, content := range []string{"", "  "} {
		result, output, err := server.handleParseVCF(context.Background(), nil, ParseVCFParams{VCFContent: content})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.True(t, output.Success)
		assert.NotNil(t, output.Variants)
		assert.Empty(t, output.Variants)
		assert.Empty(t, output.Errors)
		assert.Equal(t, "Annotated 0 variants (0 line errors)", textOf(t, result, 0))
	}
}

func TestHandleExplainPhenotype(t *testing.T) {
	server := newTestServer(t)

	result, output, err := server.handleExplainPhenotype(context.Background(), nil, ExplainPhenotypeParams{
		Drug:       "clopidogrel",
		Phenotype:  "pm",
		VCFContent: "chr10\t94781859\trs4244285\tG\tA\t.\tPASS\t.",
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, domain.SourceFallback, output.Source)
	assert.True(t, output.Sections.IsComplete())
	assert.Equal(t, "Explanation for CLOPIDOGREL (PM) from fallback", textOf(t, result, 0))
}

func TestHandleExplainPhenotype_Validation(t *testing.T) {
	server := newTestServer(t)

	result, _, err := server.handleExplainPhenotype(context.Background(), nil, ExplainPhenotypeParams{Drug: "CODEINE"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result, 0), "phenotype is required")
}
