package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fundscope/internal/service"
)

// ContactHandler handles contact-enrichment endpoints.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// SearchRequest is the request body for POST /api/v1/contacts/search.
type SearchRequest struct {
	Name      string   `json:"name" binding:"required"`
	Companies []string `json:"companies"`
}

// Search handles POST /api/v1/contacts/search.
func (h *ContactHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return
	}

	profile, err := h.contactService.Search(c.Request.Context(), req.Name, req.Companies)
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondOK(c, profile)
}
