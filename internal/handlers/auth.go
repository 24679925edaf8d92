package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"condo-portal/internal/mailer"
	"condo-portal/internal/models"
	"condo-portal/internal/observability"
	"condo-portal/internal/repositories"
	"condo-portal/internal/telemetry"
)

const resetTokenTTL = 30 * time.Minute

// AuthHandler manages login, manager registration and password recovery.
type AuthHandler struct {
	userRepo   repositories.UserRepository
	mail       mailer.Sender
	audit      *telemetry.AuditEmitter
	adminEmail string
}

// NewAuthHandler builds an AuthHandler. adminEmail receives manager
// approval requests.
func NewAuthHandler(userRepo repositories.UserRepository, mail mailer.Sender, audit *telemetry.AuditEmitter, adminEmail string) *AuthHandler {
	return &AuthHandler{
		userRepo:   userRepo,
		mail:       mail,
		audit:      audit,
		adminEmail: adminEmail,
	}
}

// Login authenticates a user by username and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	// The manager-app account must be unique. When a duplicate exists no
	// manager-app login can be trusted, so every one is refused until an
	// operator removes the extra row.
	if user.Role == models.RoleManagerApp {
		count, err := h.userRepo.CountByRole(c.Request.Context(), models.RoleManagerApp)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		if count > 1 {
			emitAudit(c, h.audit, telemetry.EventAdminConflict, "error",
				fmt.Sprintf("%d manager-app accounts present, refusing login", count))
			c.JSON(http.StatusConflict, gin.H{"error": "multiple manager-app accounts exist; contact support"})
			return
		}
	}

	if user.Role == models.RoleManager && !user.Approved {
		emitAudit(c, h.audit, telemetry.EventLoginRejected, "warn",
			fmt.Sprintf("unapproved manager %d attempted login from %s", user.ID, observability.IPFromRequest(c.Request)))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account pending approval"})
		return
	}

	if !user.PasswordHash.Valid ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(req.Password)) != nil {
		emitAudit(c, h.audit, telemetry.EventLoginRejected, "warn",
			fmt.Sprintf("bad password for user %d from %s", user.ID, observability.IPFromRequest(c.Request)))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "first_access": user.FirstAccess})
}

// RegisterManager creates an unapproved manager account and notifies the
// portal administrator.
func (h *AuthHandler) RegisterManager(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.userRepo.GetUserByUsername(c.Request.Context(), req.Username); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	if _, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	user, err := h.userRepo.CreateUser(c.Request.Context(), models.User{
		Username:     req.Username,
		PasswordHash: sql.NullString{String: string(hash), Valid: true},
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         models.RoleManager,
		Approved:     false,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	sent := mailer.SendApprovalRequestEmail(c.Request.Context(), h.mail, h.adminEmail, user.Name, user.Username, user.Email)

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "approval_requested": sent})
}

// PendingManagers lists manager accounts awaiting approval.
func (h *AuthHandler) PendingManagers(c *gin.Context) {
	users, err := h.userRepo.ListPendingManagers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pending managers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"managers": users})
}

// ApproveManager marks a manager account as approved.
func (h *AuthHandler) ApproveManager(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.userRepo.ApproveUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "approval failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"approved": true})
}

// ForgotPassword issues a reset token and mails it to the account's email.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	h.issueResetToken(c)
}

// ResendToken re-issues a reset token, invalidating the previous one.
func (h *AuthHandler) ResendToken(c *gin.Context) {
	h.issueResetToken(c)
}

func (h *AuthHandler) issueResetToken(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no account for email"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	token := newResetToken()
	if err := h.userRepo.SetResetToken(c.Request.Context(), user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	sent := mailer.SendPasswordResetEmail(c.Request.Context(), h.mail, user.Email, token)
	c.JSON(http.StatusOK, gin.H{"email_sent": sent})
}

// ValidateToken checks a reset token without consuming it.
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.GetUserForReset(c.Request.Context(), req.Email, req.Token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}

	if user.Role == models.RoleManager && !user.Approved {
		c.JSON(http.StatusForbidden, gin.H{"error": "account pending approval"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// firstAccessToken lets an account created by staff set its initial
// password without an emailed code.
const firstAccessToken = "DIRECT"

// NewPassword sets a password from a reset token, or directly on first
// access.
func (h *AuthHandler) NewPassword(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		user models.User
		err  error
	)
	direct := req.Token == firstAccessToken
	if direct {
		user, err = h.userRepo.GetFirstAccessUser(c.Request.Context(), req.Email)
	} else {
		user, err = h.userRepo.GetUserForReset(c.Request.Context(), req.Email, req.Token)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password change failed"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password change failed"})
		return
	}

	if err := h.userRepo.SetPassword(c.Request.Context(), user.Email, string(hash), !direct); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password change failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"changed": true})
}

// GetUser returns an approved user's profile.
func (h *AuthHandler) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.userRepo.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if !user.Approved {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
