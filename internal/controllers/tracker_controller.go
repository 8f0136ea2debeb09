package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"geo_tracker/internal/middleware"
	"geo_tracker/internal/registry"
)

// TrackerController handles explicit tracker administration and the login
// that grants query-API tokens.
type TrackerController struct {
	trackers *registry.TrackerRegistry
	jwt      *middleware.JWTAuth
}

func NewTrackerController(trackers *registry.TrackerRegistry, jwt *middleware.JWTAuth) *TrackerController {
	return &TrackerController{trackers: trackers, jwt: jwt}
}

type createTrackerInput struct {
	Code         string `json:"code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	SharedSecret string `json:"shared_secret" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

// CreateTracker registers a tracker explicitly; a taken code is a conflict.
func (tc *TrackerController) CreateTracker(c *gin.Context) {
	var input createTrackerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tracker input: " + err.Error()})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	tracker, err := tc.trackers.Create(c.Request.Context(), input.Code, input.Name, input.SharedSecret, string(hashed))
	if err != nil {
		if errors.Is(err, registry.ErrTrackerExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "tracker code already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tracker: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tracker": tracker})
}

// Login exchanges a tracker's code and password for a bearer token.
func (tc *TrackerController) Login(c *gin.Context) {
	var body struct {
		Code     string `json:"code" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tracker, err := tc.trackers.ResolveByCode(c.Request.Context(), body.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		return
	}
	if tracker == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "tracker not found or invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(tracker.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect password"})
		return
	}

	token, err := tc.jwt.GenerateToken(tracker.ID, tracker.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "tracker": tracker})
}
