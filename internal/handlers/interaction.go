package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/services"
)

type InteractionHandler struct {
	log                *logger.Logger
	interactionService services.InteractionService
}

func NewInteractionHandler(log *logger.Logger, interactionService services.InteractionService) *InteractionHandler {
	return &InteractionHandler{
		log:                log.With("handler", "InteractionHandler"),
		interactionService: interactionService,
	}
}

func (h *InteractionHandler) RecordInteraction(c *gin.Context) {
	var input services.RecordInteractionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	input.VideoID = c.Param("id")
	event, err := h.interactionService.RecordInteraction(c.Request.Context(), nil, &input)
	if err != nil {
		h.log.Error("RecordInteraction failed", "error", err, "video_id", input.VideoID)
		RespondAppError(c, "record_interaction_failed", err)
		return
	}
	RespondOK(c, gin.H{"event": event})
}

func (h *InteractionHandler) ListInteractions(c *gin.Context) {
	videoID := c.Param("id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	events, err := h.interactionService.ListByVideo(c.Request.Context(), nil, videoID, limit)
	if err != nil {
		h.log.Error("ListInteractions failed", "error", err, "video_id", videoID)
		RespondAppError(c, "load_interactions_failed", err)
		return
	}
	RespondOK(c, gin.H{"events": events})
}
