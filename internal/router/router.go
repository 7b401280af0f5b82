package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/questify/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Planner *apiHandler.PlannerHandler
	Skill   *apiHandler.SkillHandler
	Mission *apiHandler.MissionHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()
	r.RedirectTrailingSlash = false

	r.GET("/health", handlers.Health.Check)

	api := r.Group("/api/v1")

	// Auth routes
	api.POST("/auth/signup", handlers.Auth.SignUp)
	api.POST("/auth/signin", handlers.Auth.SignIn)
	api.POST("/auth/oauth/callback", handlers.Auth.OAuthCallback)
	api.POST("/auth/refresh", handlers.Auth.Refresh)
	api.POST("/auth/signout", handlers.Auth.SignOut)

	// Protected routes
	api.GET("/profile", authMiddleware(handlers.Profile.GetProfile))
	api.PATCH("/profile", authMiddleware(handlers.Profile.UpdateProfile))
	api.POST("/profile/xp", authMiddleware(handlers.Profile.GrantXP))

	api.GET("/areas", authMiddleware(handlers.Planner.ListAreas))
	api.POST("/areas", authMiddleware(handlers.Planner.CreateArea))
	api.PATCH("/areas/{id}", authMiddleware(handlers.Planner.UpdateArea))
	api.DELETE("/areas/{id}", authMiddleware(handlers.Planner.DeleteArea))
	api.GET("/areas/{id}/projects", authMiddleware(handlers.Planner.ListProjects))
	api.POST("/areas/{id}/projects", authMiddleware(handlers.Planner.CreateProject))
	api.PATCH("/projects/{id}", authMiddleware(handlers.Planner.UpdateProject))
	api.DELETE("/projects/{id}", authMiddleware(handlers.Planner.DeleteProject))

	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	api.PATCH("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	api.POST("/tasks/{id}/duplicate", authMiddleware(handlers.Task.DuplicateTask))
	api.POST("/tasks/{id}/complete", authMiddleware(handlers.Task.CompleteTask))

	api.GET("/skills", authMiddleware(handlers.Skill.GetTree))
	api.POST("/skills", authMiddleware(handlers.Skill.CreateSkill))
	api.GET("/skills/selectable", authMiddleware(handlers.Skill.GetSelectable))

	api.GET("/missions", authMiddleware(handlers.Mission.GetWeek))
	api.POST("/missions/{id}/complete", authMiddleware(handlers.Mission.Complete))

	return r
}
