package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"condo-portal/internal/config"
	"condo-portal/internal/db"
	"condo-portal/internal/handlers"
	"condo-portal/internal/mailer"
	"condo-portal/internal/middleware"
	"condo-portal/internal/observability"
	"condo-portal/internal/push"
	"condo-portal/internal/rabbitmq"
	"condo-portal/internal/repositories"
	"condo-portal/internal/targeting"
	"condo-portal/internal/telemetry"
	"condo-portal/internal/unread"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	userRepo := repositories.NewUserRepo(database)
	unitRepo := repositories.NewUnitRepo(database)
	blockRepo := repositories.NewBlockRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	templateRepo := repositories.NewTemplateRepo(database)
	pushRepo := repositories.NewPushRepo(database)
	vapidRepo := repositories.NewVapidRepo(database)

	keys, err := push.LoadOrGenerateKeys(context.Background(), vapidRepo)
	if err != nil {
		log.Fatalf("failed to prepare vapid keys: %v", err)
	}

	resolver := targeting.NewResolver(unitRepo, groupRepo, userRepo)
	unreadEngine := unread.NewEngine(userRepo)
	sender := push.NewWebPushSender(keys, cfg.PushSubscriber, cfg.PushTTL)
	dispatcher := push.NewDispatcher(resolver, pushRepo, unreadEngine, sender, push.StoreCleanup{Repo: pushRepo}, cfg.PushLinkURL)

	mail := mailer.New(context.Background(), cfg.MailRegion, cfg.MailFrom, cfg.MailFromName)

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, "condo.audit", "condo-portal", cfg.Environment)

	authHandler := handlers.NewAuthHandler(userRepo, mail, audit, cfg.AdminEmail)
	messageHandler := handlers.NewMessageHandler(messageRepo, templateRepo, unitRepo, groupRepo, resolver, unreadEngine, dispatcher, audit)
	badgeHandler := handlers.NewBadgeHandler(unreadEngine)
	pushHandler := handlers.NewPushHandler(pushRepo, keys)
	directoryHandler := handlers.NewDirectoryHandler(blockRepo, unitRepo, groupRepo)
	templateHandler := handlers.NewTemplateHandler(templateRepo)
	userHandler := handlers.NewUserHandler(userRepo, pushRepo, mail)

	go purgeLoop(messageRepo, audit, cfg.PurgeInterval)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(middleware.Identity())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	api.POST("/login", authHandler.Login)
	api.POST("/register-manager", authHandler.RegisterManager)
	api.GET("/pending-managers", authHandler.PendingManagers)
	api.POST("/approve-manager/:id", authHandler.ApproveManager)
	api.POST("/forgot-password", authHandler.ForgotPassword)
	api.POST("/resend-token", authHandler.ResendToken)
	api.POST("/validate-token", authHandler.ValidateToken)
	api.POST("/new-password", authHandler.NewPassword)
	api.GET("/users/:id", authHandler.GetUser)

	api.GET("/messages", messageHandler.ListMessages)
	api.POST("/messages/quick", messageHandler.CreateQuickMessage)
	api.POST("/messages/conventional", messageHandler.CreateConventionalMessage)
	api.DELETE("/messages/:id", messageHandler.DeleteMessage)
	api.GET("/active-message-count", messageHandler.ActiveMessageCount)

	api.GET("/unread-count", badgeHandler.UnreadCount)

	api.GET("/push/public-key", pushHandler.PublicKey)
	api.POST("/push/subscribe", pushHandler.Subscribe)
	api.POST("/push/unsubscribe", pushHandler.Unsubscribe)

	api.GET("/blocks", directoryHandler.ListBlocks)
	api.POST("/blocks", directoryHandler.CreateBlock)
	api.PUT("/blocks/:id", directoryHandler.RenameBlock)
	api.DELETE("/blocks/:id", directoryHandler.DeleteBlock)

	api.GET("/subblocks", directoryHandler.ListSubblocks)
	api.POST("/subblocks", directoryHandler.CreateSubblock)
	api.PUT("/subblocks/:id", directoryHandler.UpdateSubblock)
	api.DELETE("/subblocks/:id", directoryHandler.DeleteSubblock)

	api.GET("/units", directoryHandler.ListUnits)
	api.POST("/units", directoryHandler.CreateUnit)
	api.PUT("/units/:id", directoryHandler.RenameUnit)
	api.DELETE("/units/:id", directoryHandler.DeleteUnit)

	api.GET("/groups", directoryHandler.ListGroups)
	api.POST("/groups", directoryHandler.CreateGroup)
	api.DELETE("/groups/:id", directoryHandler.DeleteGroup)
	api.GET("/groups/:id/units", directoryHandler.GroupUnits)

	api.GET("/template-kinds", templateHandler.ListKinds)
	api.POST("/template-kinds", templateHandler.CreateKind)
	api.PUT("/template-kinds/:id", templateHandler.RenameKind)
	api.DELETE("/template-kinds/:id", templateHandler.DeleteKind)

	api.GET("/quick-templates", templateHandler.ListTemplates)
	api.POST("/quick-templates", templateHandler.CreateTemplate)
	api.PUT("/quick-templates/:id", templateHandler.UpdateTemplate)
	api.DELETE("/quick-templates/:id", templateHandler.DeleteTemplate)

	api.GET("/staff-users", userHandler.ListStaffUsers)
	api.POST("/staff-users", userHandler.CreateStaffUser)
	api.DELETE("/staff-users/:id", userHandler.DeleteStaffUser)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// purgeLoop drops expired messages on startup and then on every tick.
// Handlers also purge before reads; the loop keeps the table small when
// nobody is looking.
func purgeLoop(messageRepo repositories.MessageRepository, audit *telemetry.AuditEmitter, interval time.Duration) {
	purge := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		purged, err := messageRepo.PurgeExpired(ctx)
		if err != nil {
			log.Printf("periodic message purge failed: %v", err)
			return
		}
		if purged > 0 {
			observability.AddPurgedMessages(purged)
			log.Printf("periodic purge removed %d expired messages", purged)
			audit.Emit(ctx, telemetry.EventMessagesPurged, "info",
				"periodic purge removed expired messages", "", nil)
		}
	}

	purge()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		purge()
	}
}
