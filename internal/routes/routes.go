package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/controllers"
	"freight-system/internal/listeners"
	"freight-system/internal/repositories"
	"freight-system/internal/services"
	"freight-system/pkg/config"
	"freight-system/pkg/eventbus"
	"freight-system/pkg/middleware"
	"freight-system/pkg/service"
	"freight-system/pkg/stream"
)

// InitRouter собирает весь граф зависимостей и регистрирует маршруты.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	publisher stream.Publisher,
	logger *zap.Logger,
	cfg *config.Config,
) {
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	gate := authz.NewGatekeeper()
	bus := eventbus.New(logger)
	txManager := repositories.NewTxManager(dbConn)
	cache := repositories.NewRedisCacheRepository(redisClient)

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn)
	quoteRepo := repositories.NewQuoteRepository(dbConn)
	tqRepo := repositories.NewTechnicalQuoteRepository(dbConn)
	jobRepo := repositories.NewJobRepository(dbConn)
	containerRepo := repositories.NewContainerRepository(dbConn)
	auditRepo := repositories.NewAuditLogRepository(dbConn)
	notificationRepo := repositories.NewNotificationRepository(dbConn)
	seqRepo := repositories.NewSequenceRepository()
	referenceRepo := repositories.NewReferenceRepository(dbConn, cache, logger)

	authMW := middleware.NewAuthMiddleware(jwtSvc, userRepo, logger)

	// --- 2. СЕРВИСЫ ---
	auditService := services.NewAuditService(auditRepo, gate, bus, logger)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, gate, logger)
	editService := services.NewEditAccessService(
		txManager, services.NewGrantStores(tqRepo, jobRepo), gate,
		notificationService, auditService, bus, logger,
	)
	quoteService := services.NewQuoteService(quoteRepo, referenceRepo, gate, auditService, logger)
	artifactGen := services.NewMockArtifactGenerator(logger)
	delivery := services.NewMockDeliveryService(logger)
	tqService := services.NewTechnicalQuoteService(
		txManager, quoteRepo, tqRepo, referenceRepo, artifactGen, delivery,
		gate, auditService, cfg.Quote, logger,
	)
	jobService := services.NewJobService(txManager, jobRepo, tqRepo, quoteRepo, seqRepo, gate, auditService, logger)
	trackingService := services.NewTrackingService(txManager, jobRepo, containerRepo, gate, auditService, logger)
	reportService := services.NewReportService(jobRepo, containerRepo, gate, logger)
	authService := services.NewAuthService(userRepo, jwtSvc, logger)

	// --- 3. СЛУШАТЕЛИ ---
	listeners.NewAuditStreamListener(publisher, cfg.Kafka.AuditTopic, logger).Register(bus)

	// --- 4. КОНТРОЛЛЕРЫ ---
	authCtrl := controllers.NewAuthController(authService, logger)
	quoteCtrl := controllers.NewQuoteController(quoteService, logger)
	tqCtrl := controllers.NewTechnicalQuoteController(tqService, logger)
	jobCtrl := controllers.NewJobController(jobService, logger)
	editCtrl := controllers.NewEditAccessController(editService, logger)
	trackingCtrl := controllers.NewTrackingController(trackingService, logger)
	notificationCtrl := controllers.NewNotificationController(notificationService, logger)
	auditCtrl := controllers.NewAuditController(auditService, logger)
	reportCtrl := controllers.NewReportController(reportService, logger)

	// --- 5. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authCtrl)
	runQuoteRouter(secureGroup, quoteCtrl)
	runTechnicalQuoteRouter(api, secureGroup, tqCtrl)
	runJobRouter(secureGroup, jobCtrl)
	runEditAccessRouter(secureGroup, editCtrl)
	runTrackingRouter(secureGroup, trackingCtrl)
	runNotificationRouter(secureGroup, notificationCtrl)
	runAuditRouter(secureGroup, auditCtrl)
	runReportRouter(secureGroup, reportCtrl)

	logger.Info("InitRouter: Маршруты созданы")
}
