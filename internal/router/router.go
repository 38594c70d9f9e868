package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/saralgov/licence-backend/internal/config"
	"github.com/saralgov/licence-backend/internal/handler"
	"github.com/saralgov/licence-backend/internal/middleware"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/response"
	"github.com/saralgov/licence-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Exam     *handler.ExamHandler
	Question *handler.QuestionHandler
	KYC      *handler.KYCHandler
	Blog     *handler.BlogHandler
	Admin    *handler.AdminHandler
	Media    *handler.MediaHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded media files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", "./uploads")
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1")
	{
		publicAPI.GET("/blog", handlers.Blog.ListPublic)
		publicAPI.GET("/blog/:slug", handlers.Blog.GetBySlug)
		publicAPI.POST("/exam/practice", handlers.Exam.Practice)
	}

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/signup", handlers.Auth.SignUp)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
	}

	// ─── 2. Citizen Group (JWT + Single Device) ────────────────────────
	userAPI := router.Group("/api/v1/user")
	userAPI.Use(
		middleware.RequireUserJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		userAPI.GET("/me", handlers.Auth.Me)
		userAPI.PATCH("/me", handlers.Auth.UpdateProfile)
		userAPI.POST("/logout", handlers.Auth.Logout)

		userAPI.POST("/kyc", handlers.KYC.Submit)
		userAPI.GET("/kyc", handlers.KYC.MySubmission)
		userAPI.POST("/kyc/document", handlers.Media.UploadDocument)

		userAPI.POST("/exam/session", handlers.Exam.CreateSession)
		userAPI.POST("/exam/session/start", handlers.Exam.StartSession)
		userAPI.GET("/exam/session", handlers.Exam.GetSession)
		userAPI.DELETE("/exam/session", handlers.Exam.AbandonSession)
		userAPI.GET("/exam/results", handlers.Exam.ListResults)
		userAPI.GET("/exam/licence", handlers.Exam.GetLicence)
	}

	// ─── 3. WebSocket Group (Citizen WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUserWSAuth(authService))
	{
		ws.GET("/exam/stream", handlers.WS.ExamStream)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// KYC review
		adminAPI.GET("/kyc",
			middleware.RequirePermission(model.PermissionKYCReview),
			handlers.KYC.List,
		)
		adminAPI.POST("/kyc/:submission_id/review",
			middleware.RequirePermission(model.PermissionKYCReview),
			handlers.KYC.Review,
		)

		// Question bank
		adminAPI.GET("/questions",
			middleware.RequireAnyPermission(model.PermissionQuestionsRead, model.PermissionQuestionsEdit),
			handlers.Question.List,
		)
		adminAPI.GET("/questions/:question_id",
			middleware.RequireAnyPermission(model.PermissionQuestionsRead, model.PermissionQuestionsEdit),
			handlers.Question.Get,
		)
		adminAPI.POST("/questions",
			middleware.RequirePermission(model.PermissionQuestionsEdit),
			handlers.Question.Create,
		)
		adminAPI.PATCH("/questions/:question_id",
			middleware.RequirePermission(model.PermissionQuestionsEdit),
			handlers.Question.Update,
		)
		adminAPI.DELETE("/questions/:question_id",
			middleware.RequirePermission(model.PermissionQuestionsEdit),
			handlers.Question.Delete,
		)
		adminAPI.POST("/media/upload",
			middleware.RequirePermission(model.PermissionQuestionsEdit),
			handlers.Media.UploadQuestionImage,
		)

		// Results and licences
		adminAPI.GET("/results",
			middleware.RequirePermission(model.PermissionResultsRead),
			handlers.Admin.ListResults,
		)
		adminAPI.GET("/licences/pending",
			middleware.RequirePermission(model.PermissionLicenceIssue),
			handlers.Admin.ListPendingLicences,
		)
		adminAPI.POST("/licences/:licence_id/issue",
			middleware.RequirePermission(model.PermissionLicenceIssue),
			handlers.Admin.IssueLicence,
		)

		// Announcements
		adminAPI.GET("/blog",
			middleware.RequirePermission(model.PermissionBlogEdit),
			handlers.Blog.ListAll,
		)
		adminAPI.POST("/blog",
			middleware.RequirePermission(model.PermissionBlogEdit),
			handlers.Blog.Create,
		)
		adminAPI.PATCH("/blog/:post_id",
			middleware.RequirePermission(model.PermissionBlogEdit),
			handlers.Blog.Update,
		)
		adminAPI.DELETE("/blog/:post_id",
			middleware.RequirePermission(model.PermissionBlogEdit),
			handlers.Blog.Delete,
		)
	}

	return router
}
