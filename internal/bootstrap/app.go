package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "realtime-chat/internal/handler/http"
	wsHandler "realtime-chat/internal/handler/websocket"
	"realtime-chat/internal/hub"
	"realtime-chat/internal/infra/bus"
	gormpersistence "realtime-chat/internal/infra/persistence/gorm"
	"realtime-chat/internal/infra/setup"
	redisstate "realtime-chat/internal/infra/state/redis"
	"realtime-chat/internal/middleware"
	"realtime-chat/internal/service"
	"realtime-chat/internal/tasks"
	"realtime-chat/internal/worker"
)

// Config holds everything loaded from the environment.
type Config struct {
	DBUser          string
	DBPassword      string
	DBHost          string
	DBPort          string
	DBName          string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	JWTSecret       string
	ServerPort      string
	LogLevel        string
	RateLimitMax    int
	RateLimitWindow time.Duration
	JWTExpiryHours  int
	AppEnv          string
	KeyPrefix       string
	MaxMessageLen   int
	TypingTimeout   time.Duration
}

// LoadConfig reads configuration from the environment, with a .env file as
// an optional overlay for development.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBName:        os.Getenv("DB_NAME"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		AppEnv:        os.Getenv("APP_ENV"),
		KeyPrefix:     os.Getenv("REDIS_KEY_PREFIX"),

		RateLimitMax:    100,
		RateLimitWindow: 1 * time.Second,
		JWTExpiryHours:  24,
		MaxMessageLen:   service.DefaultMaxContentLength,
		TypingTimeout:   service.DefaultTypingTimeout,
	}

	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	if v := os.Getenv("MAX_MESSAGE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxMessageLen = n
		}
	}
	if v := os.Getenv("TYPING_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TypingTimeout = time.Duration(n) * time.Second
		}
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "chat:"
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("environment variable JWT_SECRET must be set")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App wires together every component of the messaging server.
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	AsynqServer *worker.WorkerServer
	Hub         *hub.Hub
	Typing      *service.TypingService
	HttpServer  *http.Server

	redisClientOpt asynq.RedisClientOpt
	cancelTyping   context.CancelFunc
}

// NewApp builds the full dependency graph.
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	logrus.SetLevel(logLevel)
	log.Info("Configuration loaded successfully")

	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database initialized and migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	log.Info("Redis client initialized")

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Asynq client initialized")

	log.Info("Initializing repositories...")
	userRepo := gormpersistence.NewGormUserRepository(db)
	roomRepo := gormpersistence.NewGormRoomRepository(db)
	memberRepo := gormpersistence.NewGormMembershipRepository(db)
	messageRepo := gormpersistence.NewGormMessageRepository(db)
	notificationRepo := gormpersistence.NewGormNotificationRepository(db)
	presenceRepo := redisstate.NewRedisPresenceRepository(redisClient, cfg.KeyPrefix)

	log.Info("Initializing services...")
	hubInstance := hub.NewHub()
	eventBus := bus.NewAsynqPublisher(asynqClient)

	authService, err := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	notificationService := service.NewNotificationService(notificationRepo, hubInstance, service.DefaultNotificationRetention)
	messageService := service.NewMessageService(
		messageRepo, roomRepo, memberRepo, userRepo,
		notificationService, hubInstance, eventBus, cfg.MaxMessageLen,
	)
	roomService := service.NewRoomService(roomRepo, memberRepo, messageRepo, hubInstance, eventBus)
	presenceService := service.NewPresenceService(presenceRepo, hubInstance)
	typingService := service.NewTypingService(hubInstance, cfg.TypingTimeout, service.DefaultTypingSweepInterval)

	// Hub callbacks close the loop without the hub importing the services.
	hubInstance.SetOnUserOffline(presenceService.HandleDisconnect)
	dispatcher := wsHandler.NewDispatcher(roomService, messageService, presenceService, typingService)
	hubInstance.SetInboundHandler(dispatcher.Handle)

	log.Info("Initializing handlers...")
	authH := httpHandler.NewAuthHandler(authService)
	roomH := httpHandler.NewRoomHandler(roomService)
	messageH := httpHandler.NewMessageHandler(messageService)
	notificationH := httpHandler.NewNotificationHandler(notificationService)
	presenceH := httpHandler.NewPresenceHandler(presenceService)
	wsH := wsHandler.NewHandler(hubInstance, roomService, presenceService)

	workerServer := worker.NewWorkerServer(redisClientOpt, notificationService, log)

	log.Info("Setting up router...")
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow))

	api := router.Group("/api")
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authH.Register)
		authRoutes.POST("/login", authH.Login)
	}
	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.JWTSecret))
	{
		authed.POST("/rooms", roomH.CreateRoom)
		authed.GET("/rooms", roomH.ListRooms)
		authed.GET("/rooms/:room_id", roomH.GetRoom)
		authed.POST("/rooms/:room_id/join", roomH.JoinRoom)
		authed.POST("/rooms/:room_id/leave", roomH.LeaveRoom)
		authed.GET("/rooms/:room_id/members", roomH.ListMembers)
		authed.POST("/rooms/:room_id/archive", roomH.ArchiveRoom)
		authed.DELETE("/rooms/:room_id", roomH.DeleteRoom)

		authed.POST("/rooms/:room_id/messages", messageH.SendMessage)
		authed.GET("/rooms/:room_id/messages", messageH.ListMessages)
		authed.GET("/messages/:message_id", messageH.GetMessage)
		authed.PUT("/messages/:message_id", messageH.EditMessage)
		authed.DELETE("/messages/:message_id", messageH.DeleteMessage)
		authed.POST("/messages/:message_id/reactions", messageH.AddReaction)
		authed.DELETE("/messages/:message_id/reactions", messageH.RemoveReaction)
		authed.GET("/messages/search", messageH.SearchMessages)

		authed.GET("/notifications", notificationH.ListNotifications)
		authed.POST("/notifications/:notification_id/read", notificationH.MarkRead)

		authed.PUT("/presence", presenceH.UpdatePresence)
		authed.GET("/presence/:user_id", presenceH.GetPresence)
	}
	wsRoutes := router.Group("/ws").Use(middleware.Auth(cfg.JWTSecret))
	{
		wsRoutes.GET("", wsH.HandleConnection)
	}
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	log.Info("Router setup complete")

	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	return &App{
		Config:         cfg,
		Log:            log,
		DB:             db,
		RedisClient:    redisClient,
		AsynqClient:    asynqClient,
		AsynqServer:    workerServer,
		Hub:            hubInstance,
		Typing:         typingService,
		HttpServer:     httpServer,
		redisClientOpt: redisClientOpt,
	}, nil
}

// Start launches the background routines and the HTTP server.
func (a *App) Start() {
	a.Log.Info("Starting application background routines...")

	typingCtx, cancel := context.WithCancel(context.Background())
	a.cancelTyping = cancel
	go a.Typing.Run(typingCtx)

	go a.AsynqServer.Start()
	a.registerPeriodicTasks()

	go func() {
		a.Log.Infof("HTTP server listening on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

func (a *App) registerPeriodicTasks() {
	scheduler := asynq.NewScheduler(a.redisClientOpt, &asynq.SchedulerOpts{})

	payload, err := tasks.NewNotificationCleanupTask()
	if err != nil {
		a.Log.Errorf("Failed to create notification cleanup task payload: %v", err)
		return
	}
	task := asynq.NewTask(tasks.TypeNotificationCleanup, payload)

	schedule := "@every 1h"
	entryID, err := scheduler.Register(schedule, task, asynq.Queue("low"))
	if err != nil {
		a.Log.Errorf("Could not register periodic notification cleanup task: %v", err)
	} else {
		a.Log.Infof("Notification cleanup task registered with schedule '%s' (EntryID: %s)", schedule, entryID)
	}

	go func() {
		a.Log.Info("Asynq scheduler starting...")
		if err := scheduler.Run(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, asynq.ErrServerClosed) {
				a.Log.Errorf("Asynq scheduler Run() failed: %v", err)
			} else {
				a.Log.Info("Asynq scheduler stopped.")
			}
		}
	}()
}

// Shutdown stops the components in dependency order.
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	if a.cancelTyping != nil {
		a.cancelTyping()
	}
	if a.Hub != nil {
		a.Hub.CloseAll()
	}
	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}

	a.Log.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowedOrigin := os.Getenv("CORS_ALLOWED_ORIGIN")
		if allowedOrigin == "" {
			allowedOrigin = "http://localhost:3000"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggerMiddleware logs one line per handled request.
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		switch {
		case errorMessage != "":
			entry.Error(errorMessage)
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
