package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tiertok/tiertok-backend/internal/apperr"
	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/repos"
	"github.com/tiertok/tiertok-backend/internal/types"
)

type UserHandler struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserHandler(log *logger.Logger, userRepo repos.UserRepo) *UserHandler {
	return &UserHandler{
		log:      log.With("handler", "UserHandler"),
		userRepo: userRepo,
	}
}

type createUserRequest struct {
	Username string `json:"username"`
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		RespondAppError(c, "invalid_username", apperr.New(apperr.KindValidation, "username is required"))
		return
	}
	now := time.Now()
	user := &types.User{
		ID:        uuid.New(),
		Username:  req.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := h.userRepo.Create(c.Request.Context(), nil, []*types.User{user}); err != nil {
		h.log.Error("CreateUser failed", "error", err, "username", req.Username)
		RespondAppError(c, "create_user_failed", err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	user, err := h.userRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("GetUser failed", "error", err, "user_id", id)
		RespondAppError(c, "load_user_failed", err)
		return
	}
	if user == nil {
		RespondAppError(c, "load_user_failed", apperr.New(apperr.KindNotFound, "user not found"))
		return
	}
	RespondOK(c, gin.H{"user": user})
}
