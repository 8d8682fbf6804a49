package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eatsential/eatsential-backend/internal/logger"
	"github.com/eatsential/eatsential-backend/internal/middleware"
	"github.com/eatsential/eatsential-backend/internal/services"
	"github.com/eatsential/eatsential-backend/internal/types"
)

type RecommendationHandler struct {
	log             *logger.Logger
	recService      services.RecommendationService
	feedbackService services.FeedbackService
}

func NewRecommendationHandler(baseLog *logger.Logger, recService services.RecommendationService, feedbackService services.FeedbackService) *RecommendationHandler {
	return &RecommendationHandler{
		log:             baseLog.With("handler", "RecommendationHandler"),
		recService:      recService,
		feedbackService: feedbackService,
	}
}

// POST /api/recommend/meal
func (h *RecommendationHandler) RecommendMeal(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	var req types.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	resp, err := h.recService.GetMealRecommendations(c.Request.Context(), userID, req)
	if err != nil {
		h.log.Error("Meal recommendation failed", "user_id", userID, "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, resp)
}

// POST /api/recommend/restaurant
func (h *RecommendationHandler) RecommendRestaurant(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	var req types.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	resp, err := h.recService.GetRestaurantRecommendations(c.Request.Context(), userID, req)
	if err != nil {
		h.log.Error("Restaurant recommendation failed", "user_id", userID, "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, resp)
}

// POST /api/recommend/feedback
func (h *RecommendationHandler) SubmitFeedback(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	var req types.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	resp, err := h.feedbackService.Submit(c.Request.Context(), userID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GET /api/recommend/feedback?item_ids=a,b,c&item_type=meal
// Returns the caller's recorded feedback type per item id.
func (h *RecommendationHandler) GetFeedback(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	itemType := c.Query("item_type")
	var itemIDs []string
	for _, id := range strings.Split(c.Query("item_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			itemIDs = append(itemIDs, id)
		}
	}
	feedback, err := h.feedbackService.FeedbackForItems(c.Request.Context(), userID, itemIDs, itemType)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"feedback": feedback})
}
