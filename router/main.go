package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/database"
	"github.com/studentportal/portal-api/handlers"
	admin_handlers "github.com/studentportal/portal-api/handlers/admin"
	auth_handlers "github.com/studentportal/portal-api/handlers/auth"
	book_handlers "github.com/studentportal/portal-api/handlers/book"
	chat_handlers "github.com/studentportal/portal-api/handlers/chat"
	course_handlers "github.com/studentportal/portal-api/handlers/course"
	student_handlers "github.com/studentportal/portal-api/handlers/student"
	subject_handlers "github.com/studentportal/portal-api/handlers/subject"
	tutor_handlers "github.com/studentportal/portal-api/handlers/tutor"
	"github.com/studentportal/portal-api/services"
	"github.com/studentportal/portal-api/services/storage"
	"github.com/studentportal/portal-api/utils/auth"
	"github.com/studentportal/portal-api/utils/cache"
	"github.com/studentportal/portal-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "student-portal-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db := store.GetDB()

	// Redis cache backs brute force protection. The API degrades
	// gracefully when Redis is unreachable.
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Object storage for tutor study materials. Optional: uploads
	// return 503 when the Spaces credentials are not configured.
	var spacesClient *storage.SpacesClient
	if os.Getenv("SPACES_ACCESS_KEY") != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: os.Getenv("SPACES_ACCESS_KEY"),
			SecretKey: os.Getenv("SPACES_SECRET_KEY"),
			Bucket:    os.Getenv("SPACES_BUCKET"),
			Region:    os.Getenv("SPACES_REGION"),
			Endpoint:  os.Getenv("SPACES_ENDPOINT"),
			CDNURL:    os.Getenv("SPACES_CDN_URL"),
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. Material uploads will be disabled.", err)
		}
	}

	// Services
	profileService := services.NewProfileService(db)
	approvalService := services.NewApprovalService(db)
	chatService := services.NewChatService(db)
	materialService := services.NewMaterialService(db, spacesClient)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	studentHandler := student_handlers.NewStudentHandler(db, profileService)
	tutorHandler := tutor_handlers.NewTutorHandler(db, profileService, approvalService)
	materialHandler := tutor_handlers.NewMaterialHandler(profileService, materialService)
	adminHandler := admin_handlers.NewAdminHandler(db, approvalService)
	subjectHandler := subject_handlers.NewSubjectHandler(db)
	courseHandler := course_handlers.NewCourseHandler(db, profileService)
	bookHandler := book_handlers.NewBookHandler(db)
	chatHandler := chat_handlers.NewChatHandler(chatService)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.Refresh)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Get("/profile", authMiddleware.Required(), authHandler.Profile)

	// Student routes
	students := api.Group("/students", authMiddleware.Required())
	students.Post("/me", studentHandler.Create)
	students.Get("/me", studentHandler.GetMine)
	students.Put("/me", studentHandler.Update)
	students.Delete("/me", studentHandler.Delete)
	students.Get("/", middleware.RequireAdmin(), studentHandler.List)

	// Tutor routes
	tutors := api.Group("/tutors", authMiddleware.Required())
	tutors.Post("/me", tutorHandler.Create)
	tutors.Get("/me", tutorHandler.GetMine)
	tutors.Put("/me", tutorHandler.Update)
	tutors.Delete("/me", tutorHandler.Delete)
	tutors.Post("/me/subjects/:subjectId/request", tutorHandler.RequestApproval)
	tutors.Post("/me/subjects/:subjectId/materials", materialHandler.Upload)
	tutors.Delete("/me/materials/:id", materialHandler.Delete)
	tutors.Get("/", middleware.RequireAdmin(), tutorHandler.List)

	// Subject catalog routes
	subjects := api.Group("/subjects")
	subjects.Get("/", subjectHandler.List)
	subjects.Get("/:id", subjectHandler.Get)
	subjects.Get("/:subjectId/materials", authMiddleware.Required(), materialHandler.ListBySubject)
	subjects.Post("/", authMiddleware.Required(), middleware.RequireAdmin(), subjectHandler.Create)
	subjects.Patch("/:id", authMiddleware.Required(), middleware.RequireAdmin(), subjectHandler.Update)
	subjects.Delete("/:id", authMiddleware.Required(), middleware.RequireAdmin(), subjectHandler.Delete)

	// Course catalog routes
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.List)
	courses.Get("/:id", courseHandler.Get)
	courses.Post("/", authMiddleware.Required(), middleware.RequireAdmin(), courseHandler.Create)
	courses.Patch("/:id", authMiddleware.Required(), middleware.RequireAdmin(), courseHandler.Update)
	courses.Delete("/:id", authMiddleware.Required(), middleware.RequireAdmin(), courseHandler.Delete)
	courses.Post("/:id/enroll", authMiddleware.Required(), courseHandler.Enroll)
	courses.Delete("/:id/enroll", authMiddleware.Required(), courseHandler.Unenroll)

	// Book and author catalog routes
	books := api.Group("/books")
	books.Get("/", bookHandler.List)
	books.Get("/:id", bookHandler.Get)
	books.Post("/", authMiddleware.Required(), middleware.RequireAdmin(), bookHandler.Create)
	books.Put("/:id", authMiddleware.Required(), middleware.RequireAdmin(), bookHandler.Update)
	books.Delete("/:id", authMiddleware.Required(), middleware.RequireAdmin(), bookHandler.Delete)

	authors := api.Group("/authors")
	authors.Get("/", bookHandler.ListAuthors)
	authors.Post("/", authMiddleware.Required(), middleware.RequireAdmin(), bookHandler.CreateAuthor)
	authors.Delete("/:id", authMiddleware.Required(), middleware.RequireAdmin(), bookHandler.DeleteAuthor)

	// Chat routes (all protected)
	channels := api.Group("/channels", authMiddleware.Required())
	channels.Get("/", chatHandler.ListChannels)
	channels.Post("/:id/join", chatHandler.Join)
	channels.Post("/:id/leave", chatHandler.Leave)
	channels.Get("/:id/messages", chatHandler.ListMessages)
	channels.Post("/:id/messages", chatHandler.PostMessage)

	// Admin routes
	adminGroup := api.Group("/admin", authMiddleware.Required(), middleware.RequireAdmin())
	adminGroup.Get("/users", adminHandler.ListUsers)
	adminGroup.Get("/users/:id", adminHandler.GetUser)
	adminGroup.Patch("/users/:id", middleware.AdminAuditLog(db, "update", "user"), adminHandler.UpdateUser)
	adminGroup.Delete("/users/:id", middleware.AdminAuditLog(db, "delete", "user"), adminHandler.DeleteUser)
	adminGroup.Get("/approvals", adminHandler.ListPendingApprovals)
	adminGroup.Post("/tutors/:tutorId/subjects/:subjectId/approve", middleware.AdminAuditLog(db, "approve", "tutor_subject"), adminHandler.ApproveTutorSubject)
	adminGroup.Get("/audit-logs", adminHandler.ListAuditLogs)
}
