package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"supportdesk/internal/middleware"
	"supportdesk/internal/models"
	"supportdesk/internal/store"
)

type SupportController struct {
	store *store.Store
	log   *slog.Logger
}

func NewSupportController(st *store.Store, log *slog.Logger) *SupportController {
	return &SupportController{store: st, log: log}
}

type issuePayload struct {
	Issue    string `json:"issue" form:"issue"`
	Category string `json:"category" form:"category"`
}

// SubmitIssue must run behind BasicAuthMiddleware; the issue is attributed
// to the authenticated user.
func (s *SupportController) SubmitIssue(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Unauthorized.")
		return
	}

	var p issuePayload
	if err := c.ShouldBind(&p); err != nil {
		c.String(http.StatusBadRequest, "Invalid request body.")
		return
	}
	if strings.TrimSpace(p.Issue) == "" {
		c.String(http.StatusBadRequest, "Issue text is required.")
		return
	}

	issue := &models.Issue{Issue: p.Issue, Category: p.Category, UserID: userID}
	if err := s.store.CreateIssue(c.Request.Context(), issue); err != nil {
		s.log.ErrorContext(c.Request.Context(), "submit issue failed", "error", err, "user_id", userID,
			"request_id", middleware.RequestIDFromContext(c))
		c.String(http.StatusInternalServerError, "Error submitting issue. Please try again.")
		return
	}
	c.String(http.StatusOK, "Issue submitted successfully!")
}

func (s *SupportController) ListSolutions(c *gin.Context) {
	solutions, err := s.store.ListSolutions(c.Request.Context())
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "list solutions failed", "error", err,
			"request_id", middleware.RequestIDFromContext(c))
		c.String(http.StatusInternalServerError, "Error fetching solutions. Please try again.")
		return
	}
	c.JSON(http.StatusOK, solutions)
}
