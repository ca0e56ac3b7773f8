package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tiertok/tiertok-backend/internal/apperr"
	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/repos"
	"github.com/tiertok/tiertok-backend/internal/services"
)

type PoolHandler struct {
	log                 *logger.Logger
	poolRepo            repos.ProfitPoolRepo
	distributionService services.DistributionService
	poolID              int64
}

func NewPoolHandler(log *logger.Logger, poolRepo repos.ProfitPoolRepo, distributionService services.DistributionService, poolID int64) *PoolHandler {
	return &PoolHandler{
		log:                 log.With("handler", "PoolHandler"),
		poolRepo:            poolRepo,
		distributionService: distributionService,
		poolID:              poolID,
	}
}

func (h *PoolHandler) GetPool(c *gin.Context) {
	pool, err := h.poolRepo.Get(c.Request.Context(), nil, h.poolID)
	if err != nil {
		h.log.Error("GetPool failed", "error", err)
		RespondAppError(c, "load_pool_failed", err)
		return
	}
	if pool == nil {
		RespondAppError(c, "load_pool_failed", apperr.New(apperr.KindNotFound, "profit pool not found"))
		return
	}
	RespondOK(c, gin.H{"pool": pool})
}

func (h *PoolHandler) Distribute(c *gin.Context) {
	snapshot, err := h.distributionService.Run(c.Request.Context())
	if err != nil {
		h.log.Error("Distribute failed", "error", err)
		RespondAppError(c, "distribution_failed", err)
		return
	}
	RespondOK(c, gin.H{"result": snapshot})
}

func (h *PoolHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	run, err := h.distributionService.GetRun(c.Request.Context(), id)
	if err != nil {
		h.log.Error("GetRun failed", "error", err, "run_id", id)
		RespondAppError(c, "load_run_failed", err)
		return
	}
	RespondOK(c, gin.H{"run": run})
}

func (h *PoolHandler) GetLatestRun(c *gin.Context) {
	run, err := h.distributionService.GetLatestRun(c.Request.Context())
	if err != nil {
		h.log.Error("GetLatestRun failed", "error", err)
		RespondAppError(c, "load_run_failed", err)
		return
	}
	RespondOK(c, gin.H{"run": run})
}
