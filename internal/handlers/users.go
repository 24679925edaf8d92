package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"condo-portal/internal/mailer"
	"condo-portal/internal/models"
	"condo-portal/internal/repositories"
)

// UserHandler manages staff-created accounts: residents and messengers.
type UserHandler struct {
	userRepo repositories.UserRepository
	pushRepo repositories.PushRepository
	mail     mailer.Sender
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(userRepo repositories.UserRepository, pushRepo repositories.PushRepository, mail mailer.Sender) *UserHandler {
	return &UserHandler{userRepo: userRepo, pushRepo: pushRepo, mail: mail}
}

// ListStaffUsers returns the resident and messenger accounts.
func (h *UserHandler) ListStaffUsers(c *gin.Context) {
	users, err := h.userRepo.ListUsersByRoles(c.Request.Context(), models.RoleResident, models.RoleMessenger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreateStaffUser registers a resident or messenger. The account arrives
// pre-approved with a generated password and first access armed, and the
// credentials are mailed to the new user.
func (h *UserHandler) CreateStaffUser(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone"`
		Block    string `json:"block"`
		UnitID   int    `json:"unit_id"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role != models.RoleResident && req.Role != models.RoleMessenger {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be resident or messenger"})
		return
	}
	if req.Role == models.RoleResident && req.UnitID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resident requires a unit"})
		return
	}

	if _, err := h.userRepo.GetUserByUsername(c.Request.Context(), req.Username); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}
	if _, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	initialPassword := newResetToken()
	hash, err := bcrypt.GenerateFromPassword([]byte(initialPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	var unitID sql.NullInt64
	if req.UnitID != 0 {
		unitID = sql.NullInt64{Int64: int64(req.UnitID), Valid: true}
	}

	user, err := h.userRepo.CreateUser(c.Request.Context(), models.User{
		Username:     req.Username,
		PasswordHash: sql.NullString{String: string(hash), Valid: true},
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Block:        req.Block,
		UnitID:       unitID,
		Role:         req.Role,
		Approved:     true,
		FirstAccess:  true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	sent := mailer.SendCredentialsEmail(c.Request.Context(), h.mail, user.Email, user.Username, initialPassword)

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "credentials_sent": sent})
}

// DeleteStaffUser removes an account along with its push registration.
func (h *UserHandler) DeleteStaffUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	// Best effort: a dangling registration would only ever skip sends.
	if err := h.pushRepo.DeleteByUser(c.Request.Context(), id); err != nil &&
		!errors.Is(err, repositories.ErrSubscriptionNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}

	if err := h.userRepo.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
