package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/dto"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/middleware"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/service"
	appErrors "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/errors"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/response"
)

type sessionService interface {
	Login(req dto.LoginRequest) (*models.TherapistSession, *models.TherapistCredential, error)
	Logout(token string)
}

type dashboardBuilder interface {
	Build(cred *models.TherapistCredential) *dto.DashboardResponse
}

type historyExporter interface {
	ExportHistory(format string, firstResponder bool) (*service.HistoryExport, error)
}

type alertDownloader interface {
	Ciphertext(token string) ([]byte, string, error)
}

// TherapistHandler serves the therapist dashboard surface.
type TherapistHandler struct {
	auth      sessionService
	dashboard dashboardBuilder
	exports   historyExporter
	alerts    alertDownloader
	cookie    middleware.CookieOptions
}

// NewTherapistHandler constructs handler.
func NewTherapistHandler(auth sessionService, dashboard dashboardBuilder, exports historyExporter, alerts alertDownloader, cookie middleware.CookieOptions) *TherapistHandler {
	return &TherapistHandler{auth: auth, dashboard: dashboard, exports: exports, alerts: alerts, cookie: cookie}
}

// Login godoc
// @Summary Therapist sign in
// @Tags Therapists
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /therapist/login [post]
func (h *TherapistHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	session, cred, err := h.auth.Login(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetSessionCookie(c, h.cookie, session.Token)
	response.JSON(c, http.StatusOK, dto.LoginResponse{
		Token:     session.Token,
		Therapist: dto.NewTherapistProfile(cred),
	}, nil)
}

// Logout godoc
// @Summary Therapist sign out
// @Tags Therapists
// @Success 204
// @Router /therapist/logout [post]
func (h *TherapistHandler) Logout(c *gin.Context) {
	h.auth.Logout(middleware.SessionToken(c, h.cookie.Name))
	middleware.ClearSessionCookie(c, h.cookie)
	response.NoContent(c)
}

// Dashboard godoc
// @Summary Role-scoped analysis history
// @Tags Therapists
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /therapist/dashboard [get]
func (h *TherapistHandler) Dashboard(c *gin.Context) {
	board := h.dashboard.Build(middleware.TherapistFromContext(c))
	middleware.SetWaiting(c, len(board.Entries) == 0)
	response.JSON(c, http.StatusOK, board, middleware.ExtractMeta(c))
}

// ExportHistory godoc
// @Summary Download the visible history
// @Tags Therapists
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /therapist/history/export [get]
func (h *TherapistHandler) ExportHistory(c *gin.Context) {
	cred := middleware.TherapistFromContext(c)
	out, err := h.exports.ExportHistory(c.Query("format"), cred != nil && cred.FirstResponder)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

// DownloadAlert godoc
// @Summary Download a sealed alert ciphertext
// @Tags Therapists
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /therapist/alerts/download/{token} [get]
func (h *TherapistHandler) DownloadAlert(c *gin.Context) {
	data, name, err := h.alerts.Ciphertext(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/octet-stream", data)
}
