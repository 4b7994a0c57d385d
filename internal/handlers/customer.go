package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crm-backend/internal/models"
	"crm-backend/internal/services"
)

func CreateCustomer(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CreateCustomerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			log.Println("[CUSTOMER] [ERROR] create parse failed:", err)
			respondBadRequest(c, "CUSTOMER", "Invalid request body.")
			return
		}

		customer, err := customers.Create(c.Request.Context(), input)
		if err != nil {
			respondWithError(c, "CUSTOMER", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "Customer added successfully!",
			"customer": customer,
		})
	}
}

func ListCustomers(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		window, err := parsePaginationParams(c)
		if err != nil {
			respondBadRequest(c, "CUSTOMER", err.Error())
			return
		}

		all, err := customers.List(c.Request.Context())
		if err != nil {
			respondWithError(c, "CUSTOMER", err)
			return
		}
		c.JSON(http.StatusOK, listResponse("customers", all, window))
	}
}

func SearchCustomers(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		found, err := customers.Search(c.Request.Context(), c.Query("query"))
		if err != nil {
			respondWithError(c, "CUSTOMER", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "customers": found})
	}
}

func GetCustomer(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, err := customers.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondWithError(c, "CUSTOMER", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "customer": customer})
	}
}

func UpdateCustomer(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := readJSON(c)
		if err != nil {
			log.Println("[CUSTOMER] [ERROR] update parse failed:", err)
			respondBadRequest(c, "CUSTOMER", "Invalid request body.")
			return
		}
		fields, ok := body.(map[string]any)
		if !ok {
			respondBadRequest(c, "CUSTOMER", "Request body must be a JSON object.")
			return
		}

		customer, err := customers.Update(c.Request.Context(), c.Param("id"), fields)
		if err != nil {
			respondWithError(c, "CUSTOMER", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Customer updated successfully!",
			"customer": customer,
		})
	}
}

// ReplaceCustomerTasks expects the body to be a JSON array of tasks.
func ReplaceCustomerTasks(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil || !isJSONArray(raw) {
			respondBadRequest(c, "CUSTOMER", "Tasks must be an array.")
			return
		}

		var tasks []models.Task
		if err := json.Unmarshal(raw, &tasks); err != nil {
			log.Println("[CUSTOMER] [ERROR] tasks parse failed:", err)
			respondBadRequest(c, "CUSTOMER", "Invalid task list.")
			return
		}

		customer, err := customers.ReplaceTasks(c.Request.Context(), c.Param("id"), tasks)
		if err != nil {
			respondWithError(c, "CUSTOMER", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "customer": customer})
	}
}

// ReplaceCustomerNotes accepts {"notes": "..."}, a bare JSON string, or a
// text/plain body.
func ReplaceCustomerNotes(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		notes, ok := notesFromBody(c)
		if !ok {
			respondBadRequest(c, "CUSTOMER", "Notes must be a string.")
			return
		}

		customer, err := customers.ReplaceNotes(c.Request.Context(), c.Param("id"), notes)
		if err != nil {
			respondWithError(c, "CUSTOMER", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "customer": customer})
	}
}

// ReplaceCustomerUsers expects the body to be a JSON array of user ids.
func ReplaceCustomerUsers(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := readJSON(c)
		items, ok := body.([]any)
		if err != nil || !ok {
			respondBadRequest(c, "CUSTOMER", "Assigned users must be an array.")
			return
		}

		userIDs := make([]string, 0, len(items))
		for _, item := range items {
			userID, ok := item.(string)
			if !ok {
				respondBadRequest(c, "CUSTOMER", "Assigned users must be an array of user ids.")
				return
			}
			userIDs = append(userIDs, userID)
		}

		customer, err := customers.ReplaceAssignedUsers(c.Request.Context(), c.Param("id"), userIDs)
		if err != nil {
			respondWithError(c, "CUSTOMER", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "customer": customer})
	}
}

func DeleteCustomer(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondWithError(c, "CUSTOMER", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Customer deleted successfully!"})
	}
}

func UploadCustomerProfilePicture(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req profilePictureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[UPLOAD] [ERROR] profile picture parse failed:", err)
			respondBadRequest(c, "UPLOAD", "Invalid request body.")
			return
		}

		url, err := customers.SetProfilePicture(c.Request.Context(), c.Param("id"), req.ProfilePicture)
		if err != nil {
			respondWithError(c, "UPLOAD", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "profilePictureUrl": url})
	}
}

func notesFromBody(c *gin.Context) (string, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		return "", false
	}
	if strings.HasPrefix(c.ContentType(), "text/plain") {
		return string(raw), true
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", false
	}
	switch value := body.(type) {
	case string:
		return value, true
	case map[string]any:
		notes, ok := value["notes"].(string)
		return notes, ok
	}
	return "", false
}

func isJSONArray(raw []byte) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}
