package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tiertok/tiertok-backend/internal/apperr"
	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/repos"
)

type CategoryHandler struct {
	log          *logger.Logger
	categoryRepo repos.CategoryPoolRepo
	videoRepo    repos.VideoRepo
}

func NewCategoryHandler(log *logger.Logger, categoryRepo repos.CategoryPoolRepo, videoRepo repos.VideoRepo) *CategoryHandler {
	return &CategoryHandler{
		log:          log.With("handler", "CategoryHandler"),
		categoryRepo: categoryRepo,
		videoRepo:    videoRepo,
	}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryRepo.GetAll(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("ListCategories failed", "error", err)
		RespondAppError(c, "load_categories_failed", err)
		return
	}
	RespondOK(c, gin.H{"categories": categories})
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_category_id", err)
		return
	}
	category, err := h.categoryRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("GetCategory failed", "error", err, "category_id", id)
		RespondAppError(c, "load_category_failed", err)
		return
	}
	if category == nil {
		RespondAppError(c, "load_category_failed", apperr.New(apperr.KindNotFound, "category pool not found"))
		return
	}
	videos, err := h.videoRepo.GetByCategoryID(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("GetCategory videos failed", "error", err, "category_id", id)
		RespondAppError(c, "load_category_failed", err)
		return
	}
	RespondOK(c, gin.H{"category": category, "videos": videos})
}
