package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexindevs/orgbase/internal/domain"
	"github.com/alexindevs/orgbase/internal/service"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	Accounts *service.AccountService
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{Accounts: accounts}
}

// Register creates a user with their default organisation and returns a
// session token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=6"`
		Phone     string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFieldErrors(c, bindingFieldErrors(err)...)
		return
	}

	reg, err := h.Accounts.Register(c.Request.Context(), service.RegistrationInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			respondFieldErrors(c, domain.FieldError{Field: "email", Message: "Email already exists"})
			return
		}
		respondError(c, http.StatusBadRequest, "Bad request", "Registration unsuccessful")
		return
	}

	respondData(c, http.StatusCreated, "Registration successful", reg.Session)
}

// Login authenticates by email and password. Every failure mode gets the
// same generic response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFieldErrors(c, bindingFieldErrors(err)...)
		return
	}

	sess, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Bad request", "Authentication failed")
		return
	}

	respondData(c, http.StatusOK, "Login successful", sess)
}
