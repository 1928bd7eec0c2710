package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"match-rating-system/handlers"
	"match-rating-system/middleware"
	"match-rating-system/models"
	"match-rating-system/services"
	"match-rating-system/utils"
	"match-rating-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // avatars only
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitAvatarStore(); err != nil {
		log.Fatal("failed to initialize avatar store:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Player{},
		&models.Match{},
		&models.Challenge{},
		&models.RatingHistoryEntry{},
		&models.Court{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ratingCfg := services.DefaultRatingConfig()
	if path := os.Getenv("RATING_CONFIG_PATH"); path != "" {
		ratingCfg, err = services.LoadRatingConfig(path)
		if err != nil {
			log.Fatal("failed to load rating config:", err)
		}
		log.Printf("✅ Rating config loaded from %s", path)
	}
	engine := services.NewRatingEngine(ratingCfg)

	// Redis rankings are optional: without REDIS_ADDR the leaderboard
	// falls back to SQL ordering.
	var redisClient *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		log.Printf("✅ Redis rankings enabled (%s)", addr)
	} else {
		log.Println("⚠️  REDIS_ADDR not set, rankings served from SQL")
	}

	var notifier services.Notifier = services.NoopNotifier{}
	if os.Getenv("PUSH_SERVICE_URL") != "" {
		notifier = services.NewPushGatewayNotifier()
		log.Println("✅ Push notifications enabled")
	}

	playerService := services.NewPlayerService(db, engine)
	leaderboard := services.NewLeaderboardService(db, redisClient)
	matchService := services.NewMatchService(db, engine, notifier)
	matchService.Leaderboard = leaderboard
	challengeService := services.NewChallengeService(db, notifier, services.NewChatServiceMessenger())
	historyService := services.NewRatingHistoryService(db, engine)
	courtService := services.NewCourtService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if redisClient != nil {
		go workers.PollRankings(ctx, leaderboard, 5*time.Minute)
	}

	if hoursStr := os.Getenv("CHALLENGE_EXPIRY_HOURS"); hoursStr != "" {
		hours, err := strconv.Atoi(hoursStr)
		if err != nil || hours <= 0 {
			log.Fatal("CHALLENGE_EXPIRY_HOURS must be a positive integer")
		}
		challengeService.StartExpiryScheduler(time.Duration(hours) * time.Hour)
		log.Printf("✅ Challenge expiry sweeper running (max age %dh)", hours)
	}

	// ✅ Setup routes — enforced Gateway auth, user context per route group
	handlers.SetupMatchRoutes(app, matchService)
	handlers.SetupChallengeRoutes(app, challengeService)
	handlers.SetupPlayerRoutes(app, playerService, historyService, leaderboard, courtService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
