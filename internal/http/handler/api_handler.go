package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexindevs/orgbase/internal/domain"
	"github.com/alexindevs/orgbase/internal/http/middleware"
	"github.com/alexindevs/orgbase/internal/service"
)

// APIHandler serves the authenticated user and organisation endpoints.
type APIHandler struct {
	Orgs *service.OrgService
}

// NewAPIHandler creates the handler set.
func NewAPIHandler(orgs *service.OrgService) *APIHandler {
	return &APIHandler{Orgs: orgs}
}

// GetUser returns a user profile the actor is allowed to see.
func (h *APIHandler) GetUser(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	view, err := h.Orgs.GetUserProfile(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			respondError(c, http.StatusNotFound, "Not found", "User not found")
		case errors.Is(err, domain.ErrForbidden):
			respondError(c, http.StatusUnauthorized, "error", "User does not have access to the requested user")
		default:
			respondError(c, http.StatusInternalServerError, "error", "Error retrieving user data")
		}
		return
	}

	respondData(c, http.StatusOK, "User data retrieved successfully", view)
}

// ListOrganisations returns every organisation the actor belongs to.
func (h *APIHandler) ListOrganisations(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	views, err := h.Orgs.ListUserOrganisations(c.Request.Context(), actorID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "error", "Error retrieving organisations")
		return
	}

	respondData(c, http.StatusOK, "Organisations retrieved successfully", gin.H{
		"organisations": views,
	})
}

// GetOrganisation returns a single organisation the actor is a member of.
func (h *APIHandler) GetOrganisation(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	view, err := h.Orgs.GetOrganisation(c.Request.Context(), actorID, c.Param("orgId"))
	if err != nil {
		respondOrgError(c, err, "Error retrieving organisation data")
		return
	}

	respondData(c, http.StatusOK, "Organisation data retrieved successfully", view)
}

// GetOrganisationUsers returns an organisation with its member profiles.
func (h *APIHandler) GetOrganisationUsers(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	view, err := h.Orgs.GetOrganisationUsers(c.Request.Context(), actorID, c.Param("orgId"))
	if err != nil {
		respondOrgError(c, err, "Error retrieving organisation users")
		return
	}

	respondData(c, http.StatusOK, "Organisation users retrieved successfully", view)
}

// CreateOrganisation creates an organisation with the actor as its sole
// member.
func (h *APIHandler) CreateOrganisation(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFieldErrors(c, bindingFieldErrors(err)...)
		return
	}

	view, err := h.Orgs.CreateOrganisation(c.Request.Context(), actorID, req.Name, req.Description)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			respondFieldErrors(c, verr.Fields...)
			return
		}
		respondError(c, http.StatusBadRequest, "Bad Request", "Client error")
		return
	}

	respondData(c, http.StatusCreated, "Organisation created successfully", view)
}

// AddUser inserts an existing user into an organisation the actor belongs to.
func (h *APIHandler) AddUser(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFieldErrors(c, bindingFieldErrors(err)...)
		return
	}

	err := h.Orgs.AddUserToOrganisation(c.Request.Context(), actorID, c.Param("orgId"), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			respondError(c, http.StatusUnauthorized, "error", "User does not have access to the requested Organisation")
		case errors.Is(err, domain.ErrNotFound):
			respondError(c, http.StatusNotFound, "Not found", "User not found")
		case errors.Is(err, domain.ErrConflict):
			respondError(c, http.StatusConflict, "error", "User is already a member of the organisation")
		default:
			respondError(c, http.StatusInternalServerError, "error", "Error adding user to organisation")
		}
		return
	}

	respondData(c, http.StatusOK, "User added to organisation successfully", nil)
}

func respondOrgError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "Not found", "Organisation not found")
	case errors.Is(err, domain.ErrForbidden):
		respondError(c, http.StatusUnauthorized, "error", "User does not have access to the requested organisation")
	default:
		respondError(c, http.StatusInternalServerError, "error", fallback)
	}
}

// actor extracts the authenticated user id. The auth middleware guarantees
// claims exist on these routes; the guard is for misconfigured routing.
func actor(c *gin.Context) (string, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "error", "Unauthorized")
		return "", false
	}
	return claims.UserID, true
}
