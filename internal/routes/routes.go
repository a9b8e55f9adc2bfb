package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mbeiro/StudioAppBack/internal/config"
	"github.com/mbeiro/StudioAppBack/internal/feed"
	"github.com/mbeiro/StudioAppBack/internal/handlers"
	"github.com/mbeiro/StudioAppBack/internal/middleware"
	"github.com/mbeiro/StudioAppBack/internal/repository"
	"github.com/mbeiro/StudioAppBack/internal/schedule"
	"github.com/mbeiro/StudioAppBack/internal/services"
	"go.uber.org/zap"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, logger *zap.Logger) {
	userRepo := repository.NewUserRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	classRepo := repository.NewClassRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	checkInRepo := repository.NewCheckInRepository(db)
	batchRepo := repository.NewPaymentBatchRepository(db)

	clock := schedule.SystemClock{}
	engine := schedule.NewEngine(clock, logger)

	feedHub := feed.NewHub()
	go feedHub.Run()

	classService := services.NewClassService(classRepo, userRepo, engine)
	membershipService := services.NewMembershipService(db, memberRepo, purchaseRepo, classRepo, enrollmentRepo)
	checkInService := services.NewCheckInService(
		db, memberRepo, classRepo, sessionRepo, checkInRepo, clock, feedHub, logger)
	paymentService := services.NewPaymentService(db, checkInRepo, batchRepo, logger)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	classHandler := handlers.NewClassHandler(classService)
	memberHandler := handlers.NewMemberHandler(membershipService)
	purchaseHandler := handlers.NewPurchaseHandler(membershipService)
	checkInHandler := handlers.NewCheckInHandler(checkInService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, engine, cfg.PayoutWeekday)
	feedHandler := handlers.NewFeedHandler(feedHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	classes := authProtected.Group("/classes")
	classes.Get("", classHandler.List)
	classes.Post("", middleware.AdminOnly(), classHandler.Create)
	classes.Get("/:id", classHandler.Get)
	classes.Put("/:id", middleware.AdminOnly(), classHandler.Update)
	classes.Put("/:id/active", middleware.AdminOnly(), classHandler.SetActive)
	classes.Get("/:id/sessions", classHandler.Sessions)
	classes.Get("/:id/sessions/upcoming", classHandler.UpcomingSessions)
	classes.Get("/:id/enrollments", purchaseHandler.ClassEnrollments)

	members := authProtected.Group("/members")
	members.Post("", memberHandler.Create)
	members.Get("", memberHandler.List)
	members.Get("/:id", memberHandler.Get)
	members.Put("/:id/active", middleware.AdminOnly(), memberHandler.SetActive)
	members.Get("/:id/purchases", purchaseHandler.ListByMember)

	purchases := authProtected.Group("/purchases")
	purchases.Post("/packages", purchaseHandler.SellPackage)
	purchases.Post("/drop-ins", purchaseHandler.SellDropIn)

	checkIns := authProtected.Group("/check-ins")
	checkIns.Post("", checkInHandler.Scan)

	sessions := authProtected.Group("/sessions")
	sessions.Get("/:id/roster", checkInHandler.SessionRoster)

	payments := authProtected.Group("/payments")
	payments.Get("/outstanding", paymentHandler.Outstanding)
	payments.Post("/batches", middleware.AdminOnly(), paymentHandler.FinalizeBatch)
	payments.Get("/batches", paymentHandler.ListBatches)
	payments.Get("/batches/:id", paymentHandler.GetBatch)
	payments.Get("/batches/:id/export", middleware.AdminOnly(), paymentHandler.ExportBatchCSV)

	api.Use("/v1/ws", feedHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(feedHandler.HandleWebSocket))
}
