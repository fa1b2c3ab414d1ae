package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/internal/handlers"
	"github.com/monocle-dev/roster/internal/middleware"
	"github.com/monocle-dev/roster/internal/web"
)

func NewRouter(h *handlers.Handler, origins []string, log *slog.Logger) (*gin.Engine, error) {
	templates, err := web.Templates()

	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.SetHTMLTemplate(templates)

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.Authenticate(h.Store, h.Issuer, log))
	r.NoRoute(h.NotFoundPage)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", h.Logout)
			auth.GET("/me", middleware.RequireUser(), h.Me)
		}

		jobs := api.Group("/jobs")
		{
			jobs.GET("", h.ListJobs)
			jobs.GET("/:id", h.GetJob)
			jobs.POST("", middleware.RequireUser(), h.CreateJob)
			jobs.PUT("/:id", middleware.RequireUser(), h.UpdateJob)
			jobs.DELETE("/:id", middleware.RequireUser(), h.DeleteJob)
		}

		// Users register through /api/users as well; only role changes and
		// edits need a session.
		users := api.Group("/users")
		{
			users.GET("", h.ListUsers)
			users.GET("/:id", h.GetUser)
			users.POST("", h.CreateUser)
			users.PUT("/:id", middleware.RequireUser(), h.UpdateUser)
			users.DELETE("/:id", middleware.RequireUser(), h.DeleteUser)
		}

		departments := api.Group("/departments")
		{
			departments.GET("", h.ListDepartments)
			departments.GET("/:id", h.GetDepartment)
			departments.POST("", middleware.RequireUser(), h.CreateDepartment)
			departments.PUT("/:id", middleware.RequireUser(), h.UpdateDepartment)
			departments.DELETE("/:id", middleware.RequireUser(), h.DeleteDepartment)
		}
	}

	r.GET("/", h.JobsPage)
	r.GET("/jobs", h.JobsPage)
	r.GET("/index", h.IndexPage)
	r.GET("/departments", h.DepartmentsPage)
	r.GET("/users", h.UsersPage)

	r.GET("/login", h.LoginPage)
	r.POST("/login", h.LoginSubmit)
	r.GET("/logout", h.LogoutPage)
	r.POST("/logout", h.LogoutPage)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.RegisterSubmit)

	pages := r.Group("", middleware.RequirePageUser())
	{
		pages.GET("/jobs/new", h.NewJobPage)
		pages.POST("/jobs/new", h.CreateJobPage)
		pages.GET("/jobs/:id/edit", h.EditJobPage)
		pages.POST("/jobs/:id/edit", h.UpdateJobPage)
		pages.POST("/jobs/:id/delete", h.DeleteJobPage)

		pages.GET("/departments/new", h.NewDepartmentPage)
		pages.POST("/departments/new", h.CreateDepartmentPage)
		pages.GET("/departments/:id/edit", h.EditDepartmentPage)
		pages.POST("/departments/:id/edit", h.UpdateDepartmentPage)
		pages.POST("/departments/:id/delete", h.DeleteDepartmentPage)

		pages.GET("/users/:id/edit", h.EditUserPage)
		pages.POST("/users/:id/edit", h.UpdateUserPage)
		pages.POST("/users/:id/delete", h.DeleteUserPage)
	}

	return r, nil
}
