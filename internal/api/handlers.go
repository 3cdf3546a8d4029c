package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/knowledgebase"
	"github.com/pharmaguard-server/internal/middleware"
)

// vcfFormField is the multipart field carrying an uploaded variant-call file
const vcfFormField = "vcf_file"

// validationResponse is the body of a 400 caused by invalid request fields
type validationResponse struct {
	*domain.APIError
	Errors []error `json:"errors"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                 "healthy",
		"timestamp":              time.Now().UTC(),
		"version":                s.configManager.GetConfig().MCP.ServerVersion,
		"knowledge_base_entries": s.app.KnowledgeBase.Len(),
		"remote_generation":      s.app.Explainer.RemoteEnabled(),
	})
}

// handleParse annotates an uploaded file or a raw text body
func (s *Server) handleParse(c *gin.Context) {
	limit := s.configManager.GetConfig().Parser.MaxUploadBytes
	if c.Request.ContentLength > limit {
		s.abortTooLarge(c)
		return
	}

	text, err := readVCF(c)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.abortTooLarge(c)
			return
		}
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "Could not read variant-call file", err.Error())
		return
	}

	c.JSON(http.StatusOK, s.app.Annotator.Parse(text))
}

// handleExplain generates the four-section explanation for a drug/phenotype pair
func (s *Server) handleExplain(c *gin.Context) {
	var req domain.ExplanationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "Request body must be a JSON explanation request", err.Error())
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, validationResponse{
			APIError: domain.NewAPIError(domain.ErrValidation, "Invalid explanation request", "", c.GetString(middleware.CorrelationIDKey)),
			Errors:   errs,
		})
		return
	}

	if req.Gene == "" {
		req.Gene, _ = knowledgebase.PrimaryGene(req.Drug)
	}

	c.JSON(http.StatusOK, s.app.Explainer.Generate(c.Request.Context(), &req))
}

// handleKnowledgeBase lists the curated variant annotations
func (s *Server) handleKnowledgeBase(c *gin.Context) {
	entries := s.app.KnowledgeBase.Entries()
	c.JSON(http.StatusOK, gin.H{
		"count":   len(entries),
		"entries": entries,
	})
}

// handleDrugs lists the drugs covered by the fallback table
func (s *Server) handleDrugs(c *gin.Context) {
	drugs := knowledgebase.SupportedDrugs(s.app.Fallback)
	c.JSON(http.StatusOK, gin.H{
		"count": len(drugs),
		"drugs": drugs,
	})
}

func (s *Server) abortTooLarge(c *gin.Context) {
	s.abort(c, http.StatusRequestEntityTooLarge, domain.ErrPayloadTooLarge, "Variant-call file exceeds the upload limit", "")
}

func (s *Server) abort(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, domain.NewAPIError(code, message, details, c.GetString(middleware.CorrelationIDKey)))
}

// readVCF returns the multipart vcf_file field or, for other content types, the body
func readVCF(c *gin.Context) (string, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	header, err := c.FormFile(vcfFormField)
	if err != nil {
		return "", err
	}
	return readFormFile(header)
}

func readFormFile(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
