package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/dto"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
	appErrors "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/errors"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/response"
)

type analysisService interface {
	ValidateStudent(req dto.ValidateStudentRequest) (*dto.ValidateStudentResponse, error)
	Analyze(ctx context.Context, req dto.AnalyzeRequest) (*dto.AnalyzeResponse, error)
	ClaimExtraCredit(req dto.ExtraCreditRequest) (*dto.ExtraCreditResponse, error)
}

// StudentHandler exposes the student-facing submission endpoints.
type StudentHandler struct {
	analysis analysisService
}

// NewStudentHandler constructs handler.
func NewStudentHandler(analysis analysisService) *StudentHandler {
	return &StudentHandler{analysis: analysis}
}

// Validate godoc
// @Summary Validate a student id against the roster
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.ValidateStudentRequest true "Student id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/validate [post]
func (h *StudentHandler) Validate(c *gin.Context) {
	var req dto.ValidateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.analysis.ValidateStudent(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Analyze godoc
// @Summary Score a student wellness submission
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.AnalyzeRequest true "Submission"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /analyze [post]
func (h *StudentHandler) Analyze(c *gin.Context) {
	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	req.Source = models.SourceAPI
	result, err := h.analysis.Analyze(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ExtraCredit godoc
// @Summary Claim the one-time extra-credit point
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.ExtraCreditRequest true "Claim"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /extra-credit [post]
func (h *StudentHandler) ExtraCredit(c *gin.Context) {
	var req dto.ExtraCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.analysis.ClaimExtraCredit(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
