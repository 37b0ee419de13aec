package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carealert-service/internal/app/config"
	"carealert-service/internal/app/delivery/http/controllers"
	"carealert-service/internal/app/delivery/http/middlewares"
	"carealert-service/internal/app/delivery/http/routers"
	"carealert-service/internal/app/drivers/database"
	"carealert-service/internal/app/drivers/logger"
	"carealert-service/internal/app/drivers/messaging"
	"carealert-service/internal/app/drivers/storage"
	"carealert-service/internal/app/models"
	"carealert-service/internal/app/services/auth"
	"carealert-service/internal/app/services/core/alerts"
	"carealert-service/internal/app/services/core/audit"
	"carealert-service/internal/app/services/core/identity"
	"carealert-service/internal/app/services/core/session"
	"carealert-service/internal/app/services/core/users"
	"carealert-service/internal/app/services/shared/auditqueue"
	minioStorage "carealert-service/internal/app/services/shared/storage"

	redisrepo "carealert-service/internal/app/services/shared/redis"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	fallbackLog := logger.NewLogrusLogger(internalConfig)
	log := logger.NewZapLogger(driverConfig, internalConfig)
	defer log.Sync()

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		fallbackLog.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	minioClient := storage.NewMinio(driverConfig)
	chiRouter := chi.NewRouter()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bootstrapingTheApp(ctx, config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		RabbitMQ:       rabbitMQ,
		Minio:          minioClient,
		Logger:         log,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	})

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			fallbackLog.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	logrus.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer shutdownCancel()

	cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		fallbackLog.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exiting")
}

func bootstrapingTheApp(ctx context.Context, bootstrap config.Bootstrap) {
	log := bootstrap.Logger

	// Shared
	redisRepository := redisrepo.NewRedisRepository(bootstrap.Redis)
	archiveStorage := minioStorage.NewMinioStorage(bootstrap.Minio, bootstrap.DriverConfig.Minio.BucketName)
	auditQueue, err := auditqueue.NewService(bootstrap.RabbitMQ, log, bootstrap.InternalConfig.Audit.WorkerBatchSize)
	if err != nil {
		logrus.Fatalf("Failed to initialize audit queue: %v", err)
	}

	// User
	userMongoRepository := users.NewUserMongoRepository(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)

	// Session
	sessionStore := session.NewSessionStore()
	sessionService := session.NewSessionService(redisRepository, sessionStore)

	// Identity
	identityProvider := identity.NewIdentityProvider(
		userMongoRepository,
		log,
		bootstrap.InternalConfig.Identity.SignInAttemptsPerMinute,
		bootstrap.InternalConfig.Identity.SignInBurst,
	)

	sessionResolver := session.NewSessionResolver(
		identityProvider,
		userMongoRepository,
		sessionStore,
		log,
		time.Duration(bootstrap.InternalConfig.JWT.ExpTimeInHour)*time.Hour,
	)
	go sessionResolver.Run(ctx)
	go drainStates(ctx, sessionResolver.States(), log)

	// Audit
	auditLogRepository := audit.NewAuditLogMongoRepository(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)
	auditUsecase := audit.NewAuditUsecase(
		auditQueue,
		auditLogRepository,
		sessionService,
		archiveStorage,
		log,
		bootstrap.InternalConfig.Audit.ArchiveObjectPrefix,
	)
	auditWorker := audit.NewWorker(log, bootstrap.InternalConfig, auditQueue, auditLogRepository)
	auditWorker.Start(ctx)

	// Alerts
	alertRepository := alerts.NewAlertMongoRepository(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)
	alertSubscriber := alerts.NewAlertMongoSubscriber(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName, alertRepository, log)
	alertSubscriptionManager := alerts.NewAlertSubscriptionManager(alertSubscriber, log)
	alertUsecase := alerts.NewAlertUsecase(alertRepository, alertSubscriptionManager, sessionService, auditUsecase)

	// Auth
	authUsecase := auth.NewAuthUsecase(identityProvider, userMongoRepository, sessionService, auditUsecase, bootstrap.InternalConfig)

	// User profile
	userUsecase := users.NewUserUsecase(userMongoRepository, sessionService, auditUsecase)

	// Delivery
	mw := &middlewares.Middlewares{
		Log:            log,
		SessionService: sessionService,
		InternalConfig: bootstrap.InternalConfig,
	}
	authController := controllers.NewAuthController(log, authUsecase)
	dashboardController := controllers.NewDashboardController(log, userUsecase)
	alertController := controllers.NewAlertController(log, alertUsecase)

	routers.SetupRoutes(bootstrap.Router, bootstrap.InternalConfig, mw, authController, dashboardController, alertController)
}

// drainStates keeps the resolver's state stream flowing; the HTTP layer reads
// the live store, not the stream, so states only need logging here.
func drainStates(ctx context.Context, states <-chan models.SessionState, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			log.Debug("session state changed", zap.String("status", state.Status.String()))
		}
	}
}
