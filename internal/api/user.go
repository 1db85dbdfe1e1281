package api

import (
	"errors"
	"net/http"
	"time"

	"taskdeck/internal/service"
	"taskdeck/pkg/auth"
	"taskdeck/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us service.UserServiceI
	a  *auth.BearerAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.BearerAuth) {
	r := &userRoutes{us: us, a: a}

	h := handler.Group("/auth")
	{
		h.POST("/register", r.Register)
		h.POST("/login", r.Login)
	}

	me := handler.Group("/users")
	me.Use(a.Middleware())
	{
		me.GET("/me", r.GetMe)
	}
}

type registerRequest struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required"`
	DisplayName    string `json:"display_name"`
	TelegramChatID *int64 `json:"telegram_chat_id"`
}

type userResponse struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	DisplayName      string    `json:"display_name"`
	Points           int       `json:"points"`
	RegistrationDate time.Time `json:"registration_date"`
}

func (r *userRoutes) Register(c *gin.Context) {
	log := logger.Logger()

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := r.us.Register(c.Request.Context(), req.Username, req.Password, req.DisplayName, req.TelegramChatID)
	if err != nil {
		log.Error("failed to register user", zap.Error(err))
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, userResponse{
		ID:               user.ID,
		Username:         user.Username,
		DisplayName:      user.DisplayName,
		Points:           user.Points,
		RegistrationDate: user.RegistrationDate,
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r *userRoutes) Login(c *gin.Context) {
	log := logger.Logger()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	token, err := r.us.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		log.Error("failed to log in user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (r *userRoutes) GetMe(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := r.us.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get user", zap.Error(err))
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, userResponse{
		ID:               user.ID,
		Username:         user.Username,
		DisplayName:      user.DisplayName,
		Points:           user.Points,
		RegistrationDate: user.RegistrationDate,
	})
}
