package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/coursehub/internal/app/controllers"
	"github.com/yigit/coursehub/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter.
type Controllers struct {
	Auth       *controllers.AuthController
	Flash      *controllers.FlashController
	Health     *controllers.HealthController
	User       *controllers.UserController
	Topic      *controllers.TopicController
	Assignment *controllers.AssignmentController
	Resource   *controllers.ResourceController
	Week       *controllers.WeekController
	Dispatch   *controllers.DispatchController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.HandleMethodNotAllowed = true
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/ping", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "pong")
	})

	// API version group
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.Identity())

	// --- Public routes ---
	v1.GET("/health", c.Health.Health)
	v1.GET("/flash", c.Flash.Pop)
	v1.POST("/auth/login", c.Auth.Login)
	v1.POST("/auth/logout", c.Auth.Logout)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.RequireLogin())
	{
		authenticated.GET("/auth/me", c.Auth.Me)
		authenticated.POST("/auth/change-password", c.Auth.ChangePassword)

		topics := authenticated.Group("/topics")
		{
			topics.GET("", c.Topic.ListTopics)
			topics.POST("", c.Topic.CreateTopic)
			topics.GET("/:key", c.Topic.GetTopic)
			topics.PUT("/:key", c.Topic.UpdateTopic)
			topics.DELETE("/:key", c.Topic.DeleteTopic)
			topics.GET("/:key/replies", c.Topic.ListReplies)
			topics.POST("/:key/replies", c.Topic.CreateReply)
			topics.GET("/:key/live", c.Topic.Live)
		}
		authenticated.DELETE("/replies/:key", c.Topic.DeleteReply)

		// Reading and commenting are open to every user; content changes are admin only.
		assignments := authenticated.Group("/assignments")
		{
			assignments.GET("", c.Assignment.ListAssignments)
			assignments.GET("/:id", c.Assignment.GetAssignment)
			assignments.GET("/:id/comments", c.Assignment.ListComments)
			assignments.POST("/:id/comments", c.Assignment.AddComment)
			assignments.DELETE("/comments/:commentId", c.Assignment.DeleteComment)

			assignmentsAdmin := assignments.Group("")
			assignmentsAdmin.Use(authMiddleware.RequireAdmin())
			{
				assignmentsAdmin.POST("", c.Assignment.CreateAssignment)
				assignmentsAdmin.PUT("/:id", c.Assignment.UpdateAssignment)
				assignmentsAdmin.DELETE("/:id", c.Assignment.DeleteAssignment)
				assignmentsAdmin.POST("/:id/files", c.Assignment.UploadFile)
			}
		}

		resources := authenticated.Group("/resources")
		{
			resources.GET("", c.Resource.ListResources)
			resources.GET("/:id", c.Resource.GetResource)
			resources.GET("/:id/comments", c.Resource.ListComments)
			resources.POST("/:id/comments", c.Resource.AddComment)
			resources.DELETE("/comments/:commentId", c.Resource.DeleteComment)

			resourcesAdmin := resources.Group("")
			resourcesAdmin.Use(authMiddleware.RequireAdmin())
			{
				resourcesAdmin.POST("", c.Resource.CreateResource)
				resourcesAdmin.PUT("/:id", c.Resource.UpdateResource)
				resourcesAdmin.DELETE("/:id", c.Resource.DeleteResource)
			}
		}

		weeks := authenticated.Group("/weeks")
		{
			weeks.GET("", c.Week.ListWeeks)
			weeks.GET("/:key", c.Week.GetWeek)
			weeks.GET("/:key/comments", c.Week.ListComments)
			weeks.POST("/:key/comments", c.Week.AddComment)
			weeks.DELETE("/comments/:commentId", c.Week.DeleteComment)

			weeksAdmin := weeks.Group("")
			weeksAdmin.Use(authMiddleware.RequireAdmin())
			{
				weeksAdmin.POST("", c.Week.CreateWeek)
				weeksAdmin.PUT("/:key", c.Week.UpdateWeek)
				weeksAdmin.DELETE("/:key", c.Week.DeleteWeek)
			}
		}

		admin := authenticated.Group("/admin/users")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.GET("", c.User.ListUsers)
			admin.POST("", c.User.CreateUser)
			admin.GET("/:id", c.User.GetUser)
			admin.PUT("/:id", c.User.UpdateUser)
			admin.DELETE("/:id", c.User.DeleteUser)
			admin.POST("/:id/password", c.User.ResetPassword)
		}
	}

	setupDispatch(router, c.Dispatch, authMiddleware)
}

// setupDispatch mounts the query-dispatch endpoints. Every method reaches the
// handler so that unsupported ones answer with the JSON 405 envelope.
func setupDispatch(router *gin.Engine, dispatch *controllers.DispatchController, authMiddleware *middleware.AuthMiddleware) {
	legacy := router.Group("/api")
	legacy.Use(authMiddleware.Identity(), authMiddleware.RequireLogin())
	{
		legacy.Any("/discussion", dispatch.Discussion)
		legacy.Any("/assignments", dispatch.Assignments)
		legacy.Any("/resources", dispatch.Resources)
		legacy.Any("/weekly", dispatch.Weekly)

		admin := legacy.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		admin.Any("", dispatch.Admin)
	}
}
