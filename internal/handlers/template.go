package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"condo-portal/internal/repositories"
)

// TemplateHandler manages quick-message template kinds and templates.
type TemplateHandler struct {
	templateRepo repositories.TemplateRepository
}

// NewTemplateHandler builds a TemplateHandler.
func NewTemplateHandler(templateRepo repositories.TemplateRepository) *TemplateHandler {
	return &TemplateHandler{templateRepo: templateRepo}
}

func (h *TemplateHandler) ListKinds(c *gin.Context) {
	kinds, err := h.templateRepo.ListKinds(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load template kinds"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kinds": kinds})
}

func (h *TemplateHandler) CreateKind(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind, err := h.templateRepo.CreateKind(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create template kind"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"kind": kind})
}

func (h *TemplateHandler) RenameKind(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.templateRepo.RenameKind(c.Request.Context(), id, req.Name); err != nil {
		if errors.Is(err, repositories.ErrTemplateKindNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template kind not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not rename template kind"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"renamed": true})
}

func (h *TemplateHandler) DeleteKind(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.templateRepo.DeleteKind(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTemplateKindNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "template kind not found"})
		case errors.Is(err, repositories.ErrTemplateKindInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "template kind is referenced by templates"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete template kind"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateRepo.ListTemplates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load templates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req struct {
		KindID int    `json:"kind_id" binding:"required"`
		Body   string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tmpl, err := h.templateRepo.CreateTemplate(c.Request.Context(), req.KindID, req.Body)
	if err != nil {
		if errors.Is(err, repositories.ErrTemplateKindNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template kind not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create template"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": tmpl})
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		KindID int    `json:"kind_id" binding:"required"`
		Body   string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.templateRepo.UpdateTemplate(c.Request.Context(), id, req.KindID, req.Body); err != nil {
		if errors.Is(err, repositories.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update template"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.templateRepo.DeleteTemplate(c.Request.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete template"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
