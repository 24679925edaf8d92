package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"condo-portal/internal/repositories"
)

// DirectoryHandler manages the building directory: blocks, subblocks,
// units and destination groups.
type DirectoryHandler struct {
	blockRepo repositories.BlockRepository
	unitRepo  repositories.UnitRepository
	groupRepo repositories.GroupRepository
}

// NewDirectoryHandler builds a DirectoryHandler.
func NewDirectoryHandler(blockRepo repositories.BlockRepository, unitRepo repositories.UnitRepository, groupRepo repositories.GroupRepository) *DirectoryHandler {
	return &DirectoryHandler{
		blockRepo: blockRepo,
		unitRepo:  unitRepo,
		groupRepo: groupRepo,
	}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// --- blocks ---

func (h *DirectoryHandler) ListBlocks(c *gin.Context) {
	blocks, err := h.blockRepo.ListBlocks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load blocks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}

func (h *DirectoryHandler) CreateBlock(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	block, err := h.blockRepo.CreateBlock(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create block"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"block": block})
}

func (h *DirectoryHandler) RenameBlock(c *gin.Context) {
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

	if err := h.blockRepo.RenameBlock(c.Request.Context(), id, req.Name); err != nil {
		if errors.Is(err, repositories.ErrBlockNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not rename block"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"renamed": true})
}

func (h *DirectoryHandler) DeleteBlock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.blockRepo.DeleteBlock(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrBlockNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
		case errors.Is(err, repositories.ErrBlockInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "block is referenced by subblocks or groups"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete block"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// --- subblocks ---

func (h *DirectoryHandler) ListSubblocks(c *gin.Context) {
	subblocks, err := h.blockRepo.ListSubblocks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subblocks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subblocks": subblocks})
}

func (h *DirectoryHandler) CreateSubblock(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		BlockID int    `json:"block_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subblock, err := h.blockRepo.CreateSubblock(c.Request.Context(), req.Name, req.BlockID)
	if err != nil {
		if errors.Is(err, repositories.ErrBlockNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create subblock"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subblock": subblock})
}

func (h *DirectoryHandler) UpdateSubblock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name    string `json:"name" binding:"required"`
		BlockID int    `json:"block_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.blockRepo.UpdateSubblock(c.Request.Context(), id, req.Name, req.BlockID); err != nil {
		if errors.Is(err, repositories.ErrSubblockNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subblock not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update subblock"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *DirectoryHandler) DeleteSubblock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.blockRepo.DeleteSubblock(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSubblockNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "subblock not found"})
		case errors.Is(err, repositories.ErrSubblockInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "subblock is referenced by groups"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete subblock"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// --- units ---

func (h *DirectoryHandler) ListUnits(c *gin.Context) {
	units, err := h.unitRepo.ListUnits(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load units"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

// CreateUnit registers a unit. Duplicate names are legal but usually a
// data-entry mistake, so the response carries a warning when one exists.
func (h *DirectoryHandler) CreateUnit(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.unitRepo.CountUnitsNamed(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create unit"})
		return
	}

	unit, err := h.unitRepo.CreateUnit(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create unit"})
		return
	}

	resp := gin.H{"unit": unit}
	if existing > 0 {
		log.Printf("unit name %q now used by %d units", req.Name, existing+1)
		resp["warning"] = "another unit already uses this name"
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DirectoryHandler) RenameUnit(c *gin.Context) {
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

	if err := h.unitRepo.RenameUnit(c.Request.Context(), id, req.Name); err != nil {
		if errors.Is(err, repositories.ErrUnitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not rename unit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"renamed": true})
}

func (h *DirectoryHandler) DeleteUnit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.unitRepo.DeleteUnit(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUnitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
		case errors.Is(err, repositories.ErrUnitInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "unit is referenced by groups"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete unit"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// --- groups ---

func (h *DirectoryHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupRepo.ListGroups(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load groups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// CreateGroup registers a destination group. Every referenced unit must
// exist; an unknown id rejects the whole request.
func (h *DirectoryHandler) CreateGroup(c *gin.Context) {
	var req struct {
		BlockID    int   `json:"block_id"`
		SubblockID int   `json:"subblock_id"`
		UnitIDs    []int `json:"unit_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupRepo.CreateGroup(c.Request.Context(), req.BlockID, req.SubblockID, req.UnitIDs)
	if err != nil {
		var unknown *repositories.UnknownUnitsError
		if errors.As(err, &unknown) {
			c.JSON(http.StatusBadRequest, gin.H{"error": unknown.Error(), "unknown_unit_ids": unknown.IDs})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": group})
}

func (h *DirectoryHandler) DeleteGroup(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.groupRepo.DeleteGroup(c.Request.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete group"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GroupUnits lists the units behind a group destination. An unknown group
// is a 404; an existing group with no units is an empty list.
func (h *DirectoryHandler) GroupUnits(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	group, err := h.groupRepo.GetGroup(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load group"})
		return
	}

	unitIDs := make([]int, 0, len(group.UnitIDs))
	for _, unitID := range group.UnitIDs {
		unitIDs = append(unitIDs, int(unitID))
	}
	units, err := h.unitRepo.ListUnitsByIDs(c.Request.Context(), unitIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load group units"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}
