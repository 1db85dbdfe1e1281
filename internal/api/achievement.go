package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/service"
	"taskdeck/pkg/auth"
	"taskdeck/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type achievementRoutes struct {
	as service.AchievementServiceI
	a  *auth.BearerAuth
}

func NewAchievementRoutes(handler *gin.RouterGroup, as service.AchievementServiceI, a *auth.BearerAuth) {
	r := &achievementRoutes{as: as, a: a}

	h := handler.Group("/achievements")
	{
		h.GET("", r.GetCatalog)

		protected := h.Group("")
		protected.Use(a.Middleware())
		{
			protected.POST("/check", r.CheckAchievements)
			protected.PUT("/:achievement_id/display", r.SetDisplayed)
		}
	}

	ua := handler.Group("/user-achievements")
	ua.Use(a.Middleware())
	{
		ua.GET("", r.GetUserAchievements)
	}
}

type achievementResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	BadgeType      string `json:"badge_type"`
	Tier           string `json:"tier"`
	CriterionKind  string `json:"criterion_kind"`
	CriterionValue int    `json:"criterion_value"`
	Points         int    `json:"points"`
}

type checkResponse struct {
	NewlyUnlocked   []achievementResponse `json:"newly_unlocked"`
	AlreadyUnlocked []int64               `json:"already_unlocked"`
}

type userAchievementResponse struct {
	achievementResponse
	UnlockedAt time.Time `json:"unlocked_at"`
	Displayed  bool      `json:"displayed"`
}

func toAchievementResponse(a *model.Achievement) achievementResponse {
	return achievementResponse{
		ID:             a.ID,
		Name:           a.Name,
		Description:    a.Description,
		Icon:           a.Icon,
		BadgeType:      a.BadgeType,
		Tier:           a.Tier,
		CriterionKind:  a.CriterionKind,
		CriterionValue: a.CriterionValue,
		Points:         a.Points,
	}
}

func (r *achievementRoutes) CheckAchievements(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := r.as.CheckAndUnlock(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to check achievements", zap.Error(err))
		if errors.Is(err, service.ErrStatsNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stats not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check achievements"})
		return
	}

	newly := make([]achievementResponse, len(result.NewlyUnlocked))
	for i, a := range result.NewlyUnlocked {
		newly[i] = toAchievementResponse(a)
	}

	already := result.AlreadyUnlocked
	if already == nil {
		already = []int64{}
	}

	c.JSON(http.StatusOK, checkResponse{
		NewlyUnlocked:   newly,
		AlreadyUnlocked: already,
	})
}

type setDisplayedRequest struct {
	Displayed *bool `json:"displayed"`
}

func (r *achievementRoutes) SetDisplayed(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	achievementID, err := strconv.ParseInt(c.Param("achievement_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid achievement_id"})
		return
	}

	var req setDisplayedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Displayed == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "displayed boolean is required"})
		return
	}

	err = r.as.SetDisplayed(c.Request.Context(), userID, achievementID, *req.Displayed)
	if err != nil {
		log.Error("failed to update display flag", zap.Error(err))
		if errors.Is(err, service.ErrAchievementNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "achievement not unlocked"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update display flag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (r *achievementRoutes) GetCatalog(c *gin.Context) {
	log := logger.Logger()

	filter := model.CatalogFilter{
		Tier:      c.Query("tier"),
		BadgeType: c.Query("badge_type"),
	}

	achievements, err := r.as.GetCatalog(c.Request.Context(), filter)
	if err != nil {
		log.Error("failed to get achievement catalog", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get achievements"})
		return
	}

	response := make([]achievementResponse, len(achievements))
	for i, a := range achievements {
		response[i] = toAchievementResponse(a)
	}

	c.JSON(http.StatusOK, response)
}

func (r *achievementRoutes) GetUserAchievements(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	filter := model.UserAchievementFilter{
		Tier: c.Query("tier"),
	}
	if displayed := c.Query("displayed"); displayed != "" {
		value, err := strconv.ParseBool(displayed)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid displayed filter"})
			return
		}
		filter.Displayed = &value
	}

	achievements, unlocks, err := r.as.GetUserAchievements(c.Request.Context(), userID, filter)
	if err != nil {
		log.Error("failed to get user achievements", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user achievements"})
		return
	}

	response := make([]userAchievementResponse, len(achievements))
	for i, a := range achievements {
		response[i] = userAchievementResponse{
			achievementResponse: toAchievementResponse(a),
			UnlockedAt:          unlocks[i].UnlockedAt,
			Displayed:           unlocks[i].Displayed,
		}
	}

	c.JSON(http.StatusOK, response)
}
