package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gnmanager/casting/pkg/core/casting"
	"github.com/gnmanager/casting/pkg/core/services"
)

// CastingHandler serves the casting operations of every event
type CastingHandler struct {
	store   services.CastingStore
	options casting.Options
	logger  *zap.Logger
}

func NewCastingHandler(store services.CastingStore, options casting.Options, logger *zap.Logger) *CastingHandler {
	return &CastingHandler{
		store:   store,
		options: options,
		logger:  logger,
	}
}

func (h *CastingHandler) RegisterRoutes(router *gin.Engine) {
	events := router.Group("/events/:eventID")
	{
		events.GET("/casting_data", h.castingData)

		castingGroup := events.Group("/casting")
		castingGroup.POST("/assign", h.assign)
		castingGroup.POST("/unassign", h.unassign)
		castingGroup.POST("/update_score", h.updateScore)
		castingGroup.POST("/add_proposal", h.addProposal)
		castingGroup.POST("/delete_proposal", h.deleteProposal)
		castingGroup.POST("/rename_proposal", h.renameProposal)
		castingGroup.POST("/auto_assign", h.autoAssign)
		castingGroup.POST("/toggle_validation", h.toggleValidation)
		castingGroup.POST("/reset_main", h.resetMain)
		castingGroup.GET("/warnings", h.warnings)
	}
}

// eventID parses the event path parameter, answering 400 when it is not a positive integer
func (h *CastingHandler) eventID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("eventID"))
	if err != nil || id <= 0 {
		handleBadRequest(c, fmt.Errorf("invalid event id %q", c.Param("eventID")))
		return 0, false
	}
	return id, true
}

// bind decodes the JSON body into req, answering 400 on failure
func (h *CastingHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if errors.Is(err, casting.ErrInvalidProposal) {
			handleServiceError(c, h.logger, err)
			return false
		}
		handleBadRequest(c, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (h *CastingHandler) castingData(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}

	data, err := services.CastingData(c.Request.Context(), h.store, h.logger, eventID)
	recordOperation("casting_data", err)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *CastingHandler) assign(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	var req assignRequest
	if !h.bind(c, &req) {
		return
	}

	warnings, err := services.Assign(c.Request.Context(), h.store, h.logger, eventID, *req.ProposalID, req.RoleID, req.ParticipantID)
	recordOperation("assign", err)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	if warnings == nil {
		warnings = []casting.Warning{}
	}
	c.JSON(http.StatusOK, assignResponse{Success: true, Warnings: warnings})
}

func (h *CastingHandler) unassign(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	var req unassignRequest
	if !h.bind(c, &req) {
		return
	}

	err := services.UnassignParticipant(c.Request.Context(), h.store, h.logger, eventID, *req.ProposalID, req.ParticipantID)
	recordOperation("unassign", err)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (h *CastingHandler) updateScore(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	var req updateScoreRequest
	if !h.bind(c, &req) {
		return
	}

	err := services.UpdateScore(c.Request.Context(), h.store, h.logger, eventID, *req.ProposalID, req.RoleID, *req.Score)
	recordOperation("update_score", err)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (h *CastingHandler) addProposal(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	var req addProposalRequest
	if !h.bind(c, &req) {
		return
	}

	proposal, err := services.AddProposal(c.Request.Context(), h.store, h.logger, eventID, req.Name)
	recordOperation("add_proposal", err)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, proposalResponse{Success: true, ID: proposal.ID, Name: proposal.Name})
}

func (h *CastingHandler) deleteProposal(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	var req deleteProposalRequest
	if !h.bind(c, &req) {
		return
	}

	err := services.DeleteProposal(c.Request.Context(), h.store, h.logger, eventID, *req.ProposalID)
	recordOperation("delete_proposal", err)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (h *CastingHandler) renameProposal(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	var req renameProposalRequest
	if !h.bind(c, &req) {
		return
	}

	proposal, err := services.RenameProposal(c.Request.Context(), h.store, h.logger, eventID, *req.ProposalID, req.Name)
	recordOperation("rename_proposal", err)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, proposalResponse{Success: true, ID: proposal.ID, Name: proposal.Name})
}

func (h *CastingHandler) autoAssign(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}

	start := time.Now()
	result, err := services.AutoAssign(c.Request.Context(), h.store, h.options, h.logger, eventID)
	autoAssignDuration.Observe(time.Since(start).Seconds())
	recordOperation("auto_assign", err)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	autoAssignScore.Observe(float64(result.TotalScore))
	c.JSON(http.StatusOK, autoAssignResponse{Success: true, AutoAssignResult: *result})
}

func (h *CastingHandler) toggleValidation(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	var req toggleValidationRequest
	if !h.bind(c, &req) {
		return
	}

	validated, err := services.ToggleValidation(c.Request.Context(), h.store, h.logger, eventID, *req.Validated)
	recordOperation("toggle_validation", err)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toggleValidationResponse{Success: true, IsCastingValidated: validated})
}

func (h *CastingHandler) resetMain(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}

	count, err := services.ResetMain(c.Request.Context(), h.store, h.logger, eventID)
	recordOperation("reset_main", err)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resetMainResponse{Success: true, Count: count})
}

func (h *CastingHandler) warnings(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	proposalID, err := casting.ParseProposalID(c.DefaultQuery("proposal_id", "main"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	warnings, err := services.Warnings(c.Request.Context(), h.store, h.logger, eventID, proposalID)
	recordOperation("warnings", err)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, warningsResponse{Success: true, Warnings: warnings})
}
