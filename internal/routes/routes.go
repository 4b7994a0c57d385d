package routes

import (
	"github.com/gin-gonic/gin"

	"crm-backend/internal/auth"
	"crm-backend/internal/handlers"
	"crm-backend/internal/middleware"
	"crm-backend/internal/services"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Users     *services.UserService
	Customers *services.CustomerService
	Issuer    *auth.Issuer
	// PublicDir is served at /public when set.
	PublicDir string
}

// SetupRouter wires every endpoint onto a new engine.
func SetupRouter(deps Deps) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS())
	if deps.PublicDir != "" {
		r.Static("/public", deps.PublicDir)
	}

	r.GET("/health", handlers.Health)

	signup := handlers.Signup(deps.Users)
	login := handlers.Login(deps.Users)
	r.POST("/signup", signup)
	r.POST("/login", login)
	r.GET("/me", middleware.UserAuth(deps.Issuer), handlers.GetMe(deps.Users))

	users := r.Group("/users")
	{
		users.POST("/signup", signup)
		users.POST("/login", login)
		users.GET("", handlers.ListUsers(deps.Users))
		users.GET("/:id", handlers.GetUser(deps.Users))
		users.POST("/:id/profile-picture", handlers.UploadUserProfilePicture(deps.Users))
	}

	customers := r.Group("/customers")
	{
		customers.POST("", handlers.CreateCustomer(deps.Customers))
		customers.GET("", handlers.ListCustomers(deps.Customers))
		customers.GET("/search", handlers.SearchCustomers(deps.Customers))
		customers.GET("/:id", handlers.GetCustomer(deps.Customers))
		customers.PUT("/:id", handlers.UpdateCustomer(deps.Customers))
		customers.PUT("/:id/tasks", handlers.ReplaceCustomerTasks(deps.Customers))
		customers.PUT("/:id/notes", handlers.ReplaceCustomerNotes(deps.Customers))
		customers.PUT("/:id/users", handlers.ReplaceCustomerUsers(deps.Customers))
		customers.DELETE("/:id", handlers.DeleteCustomer(deps.Customers))
		customers.POST("/:id/profile-picture", handlers.UploadCustomerProfilePicture(deps.Customers))
	}

	return r
}
