package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"condo-portal/internal/models"
	"condo-portal/internal/observability"
	"condo-portal/internal/push"
	"condo-portal/internal/repositories"
	"condo-portal/internal/targeting"
	"condo-portal/internal/telemetry"
	"condo-portal/internal/unread"
)

// MessageHandler manages bulletin message endpoints.
type MessageHandler struct {
	messageRepo  repositories.MessageRepository
	templateRepo repositories.TemplateRepository
	unitRepo     repositories.UnitRepository
	groupRepo    repositories.GroupRepository
	resolver     *targeting.Resolver
	unread       *unread.Engine
	dispatcher   *push.Dispatcher
	audit        *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository, templateRepo repositories.TemplateRepository, unitRepo repositories.UnitRepository, groupRepo repositories.GroupRepository, resolver *targeting.Resolver, unreadEngine *unread.Engine, dispatcher *push.Dispatcher, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{
		messageRepo:  messageRepo,
		templateRepo: templateRepo,
		unitRepo:     unitRepo,
		groupRepo:    groupRepo,
		resolver:     resolver,
		unread:       unreadEngine,
		dispatcher:   dispatcher,
		audit:        audit,
	}
}

type destinationRequest struct {
	Kind string `json:"kind" binding:"required"`
	ID   int    `json:"id"`
}

func (d destinationRequest) toModel() (models.Destination, error) {
	switch d.Kind {
	case models.DestUnit, models.DestGroup:
		return models.Destination{Kind: d.Kind, ID: d.ID}, nil
	case models.DestManagerRole:
		// Manager-role traffic always carries the sentinel id, whatever
		// the caller supplied.
		return models.Destination{Kind: d.Kind, ID: models.ManagerRoleSentinel}, nil
	default:
		return models.Destination{}, fmt.Errorf("unknown destination kind %q", d.Kind)
	}
}

// checkDestination verifies that a unit or group destination references an
// existing row. A message to a dangling id would persist, stay visible in
// the manager views, and notify nobody.
func (h *MessageHandler) checkDestination(c *gin.Context, dest models.Destination) bool {
	var err error
	switch dest.Kind {
	case models.DestUnit:
		_, err = h.unitRepo.GetUnit(c.Request.Context(), dest.ID)
		if errors.Is(err, repositories.ErrUnitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "destination unit not found"})
			return false
		}
	case models.DestGroup:
		_, err = h.groupRepo.GetGroup(c.Request.Context(), dest.ID)
		if errors.Is(err, repositories.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "destination group not found"})
			return false
		}
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify destination"})
		return false
	}
	return true
}

type validityRequest struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

func (v validityRequest) toWindow() (models.ValidityWindow, error) {
	if !v.End.After(v.Start) {
		return models.ValidityWindow{}, errors.New("validity end must be after start")
	}
	return models.ValidityWindow{Start: v.Start, End: v.End}, nil
}

// ListMessages returns the active messages visible to the caller and resets
// the caller's unread counter. The manager-app account has no inbox.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	v := viewerFromContext(c)
	if v.ID == 0 || v.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing caller identity"})
		return
	}
	if v.Role == models.RoleManagerApp {
		c.JSON(http.StatusForbidden, gin.H{"error": "manager-app account has no message inbox"})
		return
	}

	h.purgeExpired(c.Request.Context())

	var (
		messages []models.MessageView
		err      error
	)
	switch v.Role {
	case models.RoleManager:
		messages, err = h.messageRepo.ListAllActive(c.Request.Context())
	case models.RoleMessenger:
		messages, err = h.messageRepo.ListActiveForMessenger(c.Request.Context())
	case models.RoleResident:
		messages, err = h.messageRepo.ListActiveForResident(c.Request.Context(), v.UnitID, v.Name)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "unknown role"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	// Viewing the list is what marks everything as read. A notification
	// racing this reset may land a stale badge; the next list fixes it.
	if err := h.unread.Reset(c.Request.Context(), v.ID); err != nil {
		log.Printf("unread reset failed for user %d: %v", v.ID, err)
	} else {
		observability.IncUnreadReset()
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// CreateQuickMessage posts a template-based message.
func (h *MessageHandler) CreateQuickMessage(c *gin.Context) {
	var req struct {
		Sender         string             `json:"sender" binding:"required"`
		TemplateKindID int                `json:"template_kind_id" binding:"required"`
		TemplateID     int                `json:"template_id" binding:"required"`
		Destination    destinationRequest `json:"destination" binding:"required"`
		Validity       validityRequest    `json:"validity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dest, err := req.Destination.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	window, err := req.Validity.toWindow()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.checkDestination(c, dest) {
		return
	}

	tmpl, err := h.templateRepo.GetTemplate(c.Request.Context(), req.TemplateID)
	if err != nil {
		if errors.Is(err, repositories.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quick template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load template"})
		return
	}

	id, err := h.messageRepo.CreateQuickMessage(c.Request.Context(), req.Sender, tmpl.Body, req.TemplateKindID, tmpl.ID, dest, window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create message"})
		return
	}

	emitAudit(c, h.audit, telemetry.EventMessageCreated, "info", fmt.Sprintf("quick message %d to %s %d", id, dest.Kind, dest.ID))
	h.notifyTargets(c.Request.Context(), id, dest, tmpl.Body, req.Sender)

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// CreateConventionalMessage posts a free-text message.
func (h *MessageHandler) CreateConventionalMessage(c *gin.Context) {
	var req struct {
		Sender      string             `json:"sender" binding:"required"`
		Subject     string             `json:"subject"`
		Body        string             `json:"body" binding:"required"`
		Destination destinationRequest `json:"destination" binding:"required"`
		Validity    validityRequest    `json:"validity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dest, err := req.Destination.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	window, err := req.Validity.toWindow()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.checkDestination(c, dest) {
		return
	}

	id, err := h.messageRepo.CreateConventionalMessage(c.Request.Context(), req.Sender, req.Subject, req.Body, dest, window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create message"})
		return
	}

	// Notification preview prefers the subject line when one was given.
	preview := req.Subject
	if preview == "" {
		preview = req.Body
	}

	emitAudit(c, h.audit, telemetry.EventMessageCreated, "info", fmt.Sprintf("conventional message %d to %s %d", id, dest.Kind, dest.ID))
	h.notifyTargets(c.Request.Context(), id, dest, preview, req.Sender)

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// DeleteMessage removes a message before its validity window closes.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := h.messageRepo.DeleteMessage(c.Request.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		return
	}

	emitAudit(c, h.audit, telemetry.EventMessageDeleted, "info", fmt.Sprintf("message %d deleted", id))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ActiveMessageCount returns the number of live messages, clamped for
// badge display.
func (h *MessageHandler) ActiveMessageCount(c *gin.Context) {
	h.purgeExpired(c.Request.Context())

	count, err := h.messageRepo.CountActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": unread.ClampBadge(count)})
}

// notifyTargets runs the unread increment and the push fan-out for a new
// message. Each step is independently best-effort; the message itself is
// already persisted and a partial notification failure must not undo it.
func (h *MessageHandler) notifyTargets(ctx context.Context, messageID int, dest models.Destination, preview, sender string) {
	targets, err := h.resolver.Resolve(ctx, dest)
	if err != nil {
		log.Printf("target resolution failed for message %d: %v", messageID, err)
		return
	}

	if _, err := h.unread.Increment(ctx, targeting.UserIDs(targets)); err != nil {
		log.Printf("unread increment failed for message %d: %v", messageID, err)
	}

	report := h.dispatcher.Dispatch(ctx, messageID, dest, preview, sender)
	log.Printf("push dispatch for message %d: targets=%d delivered=%d skipped=%d gone=%d failed=%d",
		messageID, report.Targets, report.Delivered, report.Skipped, report.Gone, report.Failed)
}

// purgeExpired drops messages past their grace period before serving a
// read. The periodic purge does the same; this keeps reads honest between
// ticks.
func (h *MessageHandler) purgeExpired(ctx context.Context) {
	purged, err := h.messageRepo.PurgeExpired(ctx)
	if err != nil {
		log.Printf("message purge failed: %v", err)
		return
	}
	if purged > 0 {
		observability.AddPurgedMessages(purged)
		log.Printf("purged %d expired messages", purged)
	}
}
