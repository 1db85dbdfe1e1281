package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/service"
	"taskdeck/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAchievementService struct {
	checkResult      *model.UnlockResult
	checkErr         error
	setDisplayedErr  error
	gotAchievementID int64
	gotDisplayed     *bool
}

func (s *stubAchievementService) CheckAndUnlock(ctx context.Context, userID int64) (*model.UnlockResult, error) {
	return s.checkResult, s.checkErr
}

func (s *stubAchievementService) GetCatalog(ctx context.Context, filter model.CatalogFilter) ([]*model.Achievement, error) {
	return []*model.Achievement{}, nil
}

func (s *stubAchievementService) GetUserAchievements(ctx context.Context, userID int64, filter model.UserAchievementFilter) ([]*model.Achievement, []*model.UserAchievement, error) {
	return []*model.Achievement{}, []*model.UserAchievement{}, nil
}

func (s *stubAchievementService) SetDisplayed(ctx context.Context, userID, achievementID int64, displayed bool) error {
	s.gotAchievementID = achievementID
	s.gotDisplayed = &displayed
	return s.setDisplayedErr
}

func setupAchievementRouter(t *testing.T, svc service.AchievementServiceI) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bearerAuth := auth.NewBearerAuth("test-secret", time.Hour)
	token, err := bearerAuth.IssueToken(42)
	assert.NoError(t, err)

	router := gin.New()
	group := router.Group("/api/v1")
	NewAchievementRoutes(group, svc, bearerAuth)

	return router, token
}

func TestCheckAchievements(t *testing.T) {
	t.Run("Missing token gets 401", func(t *testing.T) {
		router, _ := setupAchievementRouter(t, &stubAchievementService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/achievements/check", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Missing stats snapshot gets 404", func(t *testing.T) {
		router, token := setupAchievementRouter(t, &stubAchievementService{
			checkErr: service.ErrStatsNotFound,
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/achievements/check", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delta is returned with both lists present", func(t *testing.T) {
		router, token := setupAchievementRouter(t, &stubAchievementService{
			checkResult: &model.UnlockResult{
				NewlyUnlocked: []*model.Achievement{
					{ID: 1, Name: "First Steps", Tier: "bronze", Points: 10},
				},
				AlreadyUnlocked: []int64{2, 3},
			},
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/achievements/check", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body checkResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.NewlyUnlocked, 1)
		assert.Equal(t, int64(1), body.NewlyUnlocked[0].ID)
		assert.Equal(t, []int64{2, 3}, body.AlreadyUnlocked)
	})
}

func TestSetDisplayed(t *testing.T) {
	t.Run("Missing displayed field gets 400", func(t *testing.T) {
		stub := &stubAchievementService{}
		router, token := setupAchievementRouter(t, stub)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/achievements/7/display", strings.NewReader(`{}`))
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, stub.gotDisplayed)
	})

	t.Run("Non-boolean displayed gets 400", func(t *testing.T) {
		stub := &stubAchievementService{}
		router, token := setupAchievementRouter(t, stub)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/achievements/7/display", strings.NewReader(`{"displayed":"yes"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, stub.gotDisplayed)
	})

	t.Run("Foreign unlock gets 404", func(t *testing.T) {
		stub := &stubAchievementService{setDisplayedErr: service.ErrAchievementNotFound}
		router, token := setupAchievementRouter(t, stub)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/achievements/7/display", strings.NewReader(`{"displayed":false}`))
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Valid toggle reaches the service", func(t *testing.T) {
		stub := &stubAchievementService{}
		router, token := setupAchievementRouter(t, stub)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/achievements/7/display", strings.NewReader(`{"displayed":false}`))
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(7), stub.gotAchievementID)
		if assert.NotNil(t, stub.gotDisplayed) {
			assert.False(t, *stub.gotDisplayed)
		}
	})
}
