package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-backend/internal/middleware"
	"crm-backend/internal/services"
)

type profilePictureRequest struct {
	ProfilePicture string `json:"profilePicture"`
}

func Signup(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.SignupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			log.Println("[AUTH] [ERROR] signup parse failed:", err)
			respondBadRequest(c, "AUTH", "Invalid request body.")
			return
		}

		ack, err := users.Signup(c.Request.Context(), input)
		if err != nil {
			respondWithError(c, "AUTH", err)
			return
		}
		c.JSON(http.StatusCreated, ack)
	}
}

func Login(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			log.Println("[AUTH] [ERROR] login parse failed:", err)
			respondBadRequest(c, "AUTH", "Invalid request body.")
			return
		}

		token, err := users.Login(c.Request.Context(), input)
		if err != nil {
			respondWithError(c, "AUTH", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
	}
}

// GetMe returns the user named by the bearer token.
func GetMe(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.UserIDKey)
		if userID == "" {
			log.Println("[AUTH] [ERROR] userId missing in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized."})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			respondWithError(c, "USER", err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func GetUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondWithError(c, "USER", err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func ListUsers(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		window, err := parsePaginationParams(c)
		if err != nil {
			respondBadRequest(c, "USER", err.Error())
			return
		}

		all, err := users.List(c.Request.Context())
		if err != nil {
			respondWithError(c, "USER", err)
			return
		}
		c.JSON(http.StatusOK, listResponse("users", all, window))
	}
}

func UploadUserProfilePicture(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req profilePictureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[UPLOAD] [ERROR] profile picture parse failed:", err)
			respondBadRequest(c, "UPLOAD", "Invalid request body.")
			return
		}

		url, err := users.SetProfilePicture(c.Request.Context(), c.Param("id"), req.ProfilePicture)
		if err != nil {
			respondWithError(c, "UPLOAD", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "profilePictureUrl": url})
	}
}
