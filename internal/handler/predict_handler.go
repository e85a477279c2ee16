package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/nextloc/nextloc-go/internal/llm"
	"github.com/nextloc/nextloc-go/internal/predictor"
	"github.com/nextloc/nextloc-go/internal/repository"
	"github.com/nextloc/nextloc-go/pkg/response"
)

// PredictHandler runs predictions and serves stored results. Completed
// predictions go through a lossy LRU cache so repeated demo clicks on the
// same trajectory do not re-invoke the reasoning capability.
type PredictHandler struct {
	pred   *predictor.Predictor
	repo   *repository.PredictionRepository
	cache  *lru.Cache[string, *predictor.Result]
	logger *log.Logger
}

// NewPredictHandler creates a new predict handler. The repository may be
// nil, in which case results are not persisted.
func NewPredictHandler(pred *predictor.Predictor, repo *repository.PredictionRepository, cacheSize int, logger *log.Logger) (*PredictHandler, error) {
	if cacheSize < 2 {
		cacheSize = 2
	}
	cache, err := lru.New[string, *predictor.Result](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create prediction cache")
	}
	return &PredictHandler{pred: pred, repo: repo, cache: cache, logger: logger}, nil
}

// PredictRequest is the POST /api/v1/predict body.
type PredictRequest struct {
	City       string `json:"city" binding:"required"`
	UserID     string `json:"user_id"`
	TrajID     string `json:"traj_id"`
	PromptType string `json:"prompt_type"`
	Model      string `json:"model"`
	Platform   string `json:"platform"`
}

func (r PredictRequest) cacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s", r.City, r.UserID, r.TrajID, r.Model, r.Platform, r.PromptType)
}

// Predict handles POST /api/v1/predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if cached, ok := h.cache.Get(req.cacheKey()); ok {
		response.Success(c, gin.H{"prediction": cached, "cached": true})
		return
	}

	start := time.Now()
	result, err := h.pred.Predict(c.Request.Context(), predictor.Request{
		City:       req.City,
		UserID:     req.UserID,
		TrajID:     req.TrajID,
		PromptType: req.PromptType,
		Model:      req.Model,
		Platform:   llm.Platform(req.Platform),
	})
	if err != nil {
		if errors.Is(err, predictor.ErrNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.logger.Error("prediction failed", "err", err)
		response.InternalError(c, "Prediction failed")
		return
	}

	h.cache.Add(req.cacheKey(), result)
	h.persist(result, time.Since(start))

	response.Success(c, gin.H{"prediction": result, "cached": false})
}

func (h *PredictHandler) persist(result *predictor.Result, elapsed time.Duration) {
	if h.repo == nil {
		return
	}
	rec := &repository.PredictionRecord{
		City:           result.City,
		UserID:         result.UserID,
		TrajID:         result.TrajID,
		PromptType:     result.PromptType,
		Model:          result.Model,
		Platform:       result.Platform,
		PredictedVenue: result.PredictedVenue,
		GroundVenue:    result.GroundTruth.VenueID,
		Reason:         result.Reason,
		ParseStage:     result.ParseStage,
		LatencyMs:      elapsed.Milliseconds(),
	}
	if err := h.repo.Insert(rec); err != nil {
		h.logger.Warn("failed to persist prediction", "err", err)
	}
}

// ListPredictions handles GET /api/v1/predictions
func (h *PredictHandler) ListPredictions(c *gin.Context) {
	if h.repo == nil {
		response.Error(c, http.StatusServiceUnavailable, "Prediction storage not configured")
		return
	}

	filter := repository.PredictionFilter{
		City:     c.Query("city"),
		UserID:   c.Query("user_id"),
		Model:    c.Query("model"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}
	records, total, err := h.repo.List(filter)
	if err != nil {
		h.logger.Error("failed to list predictions", "err", err)
		response.InternalError(c, "Failed to list predictions")
		return
	}
	response.Paged(c, records, total, filter.Page, filter.PageSize)
}

// ListModels handles GET /api/v1/models
func (h *PredictHandler) ListModels(c *gin.Context) {
	response.Success(c, gin.H{
		"platforms": llm.Catalog(),
		"prompt_types": gin.H{
			"agent_move_v6": "Full knowledge-fusion prompt",
			"llm_zero_shot": "Zero-shot baseline",
		},
	})
}
