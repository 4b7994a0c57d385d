package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-backend/internal/services"
)

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation, services.KindUnsupportedMediaType:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondWithError is the single place failures become HTTP responses.
func respondWithError(c *gin.Context, route string, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		log.Printf("[%s] [ERROR] returning error %d: %v", route, http.StatusInternalServerError, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error."})
		return
	}

	status := statusFor(svcErr.Kind)
	log.Printf("[%s] [ERROR] returning error %d: %v", route, status, err)

	body := gin.H{"success": false, "message": svcErr.Message}
	if len(svcErr.Details) > 0 {
		body["details"] = svcErr.Details
	}
	c.AbortWithStatusJSON(status, body)
}

func respondBadRequest(c *gin.Context, route, message string) {
	log.Printf("[%s] [ERROR] returning error %d: %s", route, http.StatusBadRequest, message)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// readJSON decodes the raw request body into an untyped value so callers
// can check its shape before converting it.
func readJSON(c *gin.Context) (any, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return value, nil
}
