package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"jobboard/internal/api/middleware"
	"jobboard/internal/auth"
	"jobboard/internal/config"
	"jobboard/internal/store"
)

// Deps 汇总路由注册所需的依赖。
type Deps struct {
	Store  *store.Store
	Hasher *auth.Hasher
	Redis  redis.UniversalClient
	Logger *slog.Logger
	API    config.APIConfig
	Auth   config.AuthConfig
}

// RegisterRoutes 注册 /v1 下的全部业务路由。
func RegisterRoutes(router *gin.Engine, deps Deps) {
	authHandler := NewAuthHandler(
		deps.Store,
		deps.Hasher,
		deps.Redis,
		deps.Logger,
		deps.Auth.LoginRateLimitPerHour,
		deps.Auth.LoginLockThreshold,
		deps.Auth.LoginLockTTL,
	)
	userHandler := NewUserHandler(deps.Store, deps.Hasher, deps.Logger)
	profileHandler := NewProfileHandler(deps.Store, deps.Logger)
	postingHandler := NewPostingHandler(deps.Store, deps.Logger)
	adminOnly := middleware.AdminSecretMiddleware(deps.API.AdminSecret)

	v1 := router.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.POST("/login", authHandler.Login)
		}

		userGroup := v1.Group("/users")
		{
			userGroup.GET("/:id", userHandler.GetUser)
			userGroup.PATCH("/:id", userHandler.UpdateUser)
			userGroup.DELETE("/:id", userHandler.DeleteUser)
		}

		employerGroup := v1.Group("/employers")
		{
			employerGroup.POST("", profileHandler.CreateEmployer)
			employerGroup.GET("/:id", profileHandler.GetEmployer)
			employerGroup.PATCH("/:id", profileHandler.UpdateEmployer)
			employerGroup.DELETE("/:id", profileHandler.DeleteEmployer)
		}

		applicantGroup := v1.Group("/applicants")
		{
			applicantGroup.POST("", profileHandler.CreateApplicant)
			applicantGroup.GET("/:id", profileHandler.GetApplicant)
			applicantGroup.PATCH("/:id", profileHandler.UpdateApplicant)
			applicantGroup.DELETE("/:id", profileHandler.DeleteApplicant)
			applicantGroup.GET("/:id/job_applications", profileHandler.ListApplicantApplications)
			applicantGroup.GET("/:id/favorites", profileHandler.ListFavorites)
			applicantGroup.POST("/:id/favorites", profileHandler.AddFavorite)
			applicantGroup.DELETE("/:id/favorites/:posting_id", profileHandler.RemoveFavorite)
		}

		categoryGroup := v1.Group("/jobcategories")
		{
			categoryGroup.GET("", postingHandler.ListCategories)
			categoryGroup.GET("/:id", postingHandler.GetCategory)
			categoryGroup.POST("", adminOnly, postingHandler.CreateCategory)
			categoryGroup.PATCH("/:id", adminOnly, postingHandler.UpdateCategory)
			categoryGroup.DELETE("/:id", adminOnly, postingHandler.DeleteCategory)
		}

		postingGroup := v1.Group("/jobpostings")
		{
			postingGroup.GET("", postingHandler.ListPostings)
			postingGroup.POST("", postingHandler.CreatePosting)
			postingGroup.GET("/:id", postingHandler.GetPosting)
			postingGroup.PATCH("/:id", postingHandler.UpdatePosting)
			postingGroup.DELETE("/:id", postingHandler.DeletePosting)
			postingGroup.POST("/:id/applicants", postingHandler.LinkApplicant)
		}

		applicationGroup := v1.Group("/jobapplications")
		{
			applicationGroup.POST("", postingHandler.CreateApplication)
			applicationGroup.GET("/:id", postingHandler.GetApplication)
			applicationGroup.PATCH("/:id", postingHandler.UpdateApplication)
			applicationGroup.DELETE("/:id", postingHandler.DeleteApplication)
		}
	}
}
