package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/services"
)

type VideoHandler struct {
	log              *logger.Logger
	videoService     services.VideoService
	analyticsService services.VideoAnalyticsService
}

func NewVideoHandler(log *logger.Logger, videoService services.VideoService, analyticsService services.VideoAnalyticsService) *VideoHandler {
	return &VideoHandler{
		log:              log.With("handler", "VideoHandler"),
		videoService:     videoService,
		analyticsService: analyticsService,
	}
}

func (h *VideoHandler) CreateVideo(c *gin.Context) {
	var input services.CreateVideoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	video, err := h.videoService.CreateVideo(c.Request.Context(), nil, input)
	if err != nil {
		h.log.Error("CreateVideo failed", "error", err, "video_id", input.ID)
		RespondAppError(c, "create_video_failed", err)
		return
	}
	RespondOK(c, gin.H{"video": video})
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	id := c.Param("id")
	video, err := h.videoService.GetVideoByID(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("GetVideo failed", "error", err, "video_id", id)
		RespondAppError(c, "load_video_failed", err)
		return
	}
	RespondOK(c, gin.H{"video": video})
}

func (h *VideoHandler) GetVideoAnalytics(c *gin.Context) {
	id := c.Param("id")
	analytics, err := h.analyticsService.GetVideoAnalytics(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("GetVideoAnalytics failed", "error", err, "video_id", id)
		RespondAppError(c, "load_analytics_failed", err)
		return
	}
	RespondOK(c, gin.H{"analytics": analytics})
}

func (h *VideoHandler) CategorizeVideo(c *gin.Context) {
	id := c.Param("id")
	contributions, err := h.videoService.AssignCategories(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("CategorizeVideo failed", "error", err, "video_id", id)
		RespondAppError(c, "categorize_video_failed", err)
		return
	}
	RespondOK(c, gin.H{"contributions": contributions})
}
