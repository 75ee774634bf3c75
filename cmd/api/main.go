package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planeats/internal/api"
	"planeats/internal/api/handlers/health"
	"planeats/internal/core/ai/cache"
	aiservice "planeats/internal/core/ai/service"
	"planeats/internal/core/dashboard"
	"planeats/internal/core/mealplan"
	"planeats/internal/core/notification"
	"planeats/internal/core/preference"
	"planeats/internal/core/recipe"
	"planeats/internal/core/shoppinglist"
	"planeats/internal/core/user"
	"planeats/internal/infrastructure/config"
	"planeats/internal/infrastructure/database"
	"planeats/internal/infrastructure/ratelimit"
	"planeats/internal/infrastructure/store/memstore"
	"planeats/internal/infrastructure/store/mongostore"
	"planeats/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// repositories 各領域的儲存實作
type repositories struct {
	users         user.Repository
	recipes       recipe.Repository
	mealPlans     mealplan.Repository
	shoppingLists shoppinglist.Repository
	preferences   preference.Repository
	notifications notification.Repository
}

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("rate_limit_backend", cfg.RateLimit.Backend),
	)

	ctx := context.Background()
	checks := make(map[string]health.Checker)

	// 資料庫
	var repos repositories
	var mongoClient *mongo.Client
	if cfg.Database.Driver == "mongo" {
		client, db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			common.LogFatal("Failed to connect to MongoDB", zap.Error(err))
		}
		mongoClient = client
		if err := database.EnsureIndexes(ctx, db); err != nil {
			common.LogFatal("Failed to ensure indexes", zap.Error(err))
		}
		repos = repositories{
			users:         mongostore.NewUserRepository(db),
			recipes:       mongostore.NewRecipeRepository(db),
			mealPlans:     mongostore.NewMealPlanRepository(db),
			shoppingLists: mongostore.NewShoppingListRepository(db),
			preferences:   mongostore.NewPreferenceRepository(db),
			notifications: mongostore.NewNotificationRepository(db),
		}
		checks["mongodb"] = func(ctx context.Context) error {
			return database.Ping(ctx, client)
		}
	} else {
		common.LogWarn("使用記憶體儲存，重啟後資料將遺失")
		repos = repositories{
			users:         memstore.NewUserRepository(),
			recipes:       memstore.NewRecipeRepository(),
			mealPlans:     memstore.NewMealPlanRepository(),
			shoppingLists: memstore.NewShoppingListRepository(),
			preferences:   memstore.NewPreferenceRepository(),
			notifications: memstore.NewNotificationRepository(),
		}
	}

	// Redis 只在快取或限流選用時連線
	var redisClient *redis.Client
	if (cfg.Cache.Enabled && cfg.Cache.Backend == "redis") || (cfg.RateLimit.Enabled && cfg.RateLimit.Backend == "redis") {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			common.LogFatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
		}
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	// AI 回應快取
	var aiCache cache.Cache
	if cfg.Cache.Enabled {
		if redisClient != nil && cfg.Cache.Backend == "redis" {
			aiCache = cache.NewRedisCache(redisClient, cfg.Cache.TTL)
		} else {
			aiCache = cache.NewManager(cfg.Cache)
		}
	}

	ai, err := aiservice.NewFromConfig(ctx, cfg.AI, aiCache)
	if err != nil {
		common.LogFatal("Failed to initialize AI service", zap.Error(err))
	}
	defer ai.Close()
	if !ai.Configured() {
		common.LogWarn("未設定任何 AI 提供者，餐計畫生成將無法使用")
	}

	// 服務
	users := user.NewService(repos.users, user.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry), cfg.Auth.BcryptCost)
	notifications := notification.NewService(repos.notifications)
	recipes := recipe.NewService(repos.recipes, users)
	mealPlans := mealplan.NewService(repos.mealPlans, repos.recipes, ai, users, notifications)
	shoppingLists := shoppinglist.NewService(repos.shoppingLists, mealPlans)
	preferences := preference.NewService(repos.preferences)
	dash := dashboard.NewService(users, mealPlans, recipes)

	var limiter ratelimit.Store
	if cfg.RateLimit.Enabled {
		if redisClient != nil && cfg.RateLimit.Backend == "redis" {
			limiter = ratelimit.NewRedisStore(redisClient, "")
		} else {
			limiter = ratelimit.NewMemoryStore(cfg.RateLimit.Capacity)
		}
	}

	// 設置路由
	router, err := api.SetupRouter(api.Deps{
		Config:        cfg,
		Users:         users,
		Recipes:       recipes,
		MealPlans:     mealPlans,
		ShoppingLists: shoppingLists,
		Preferences:   preferences,
		Notifications: notifications,
		Dashboard:     dash,
		RateLimit:     limiter,
		AIConfigured:  ai.Configured(),
		Checks:        checks,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			common.LogWarn("Failed to close Redis client", zap.Error(err))
		}
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			common.LogWarn("Failed to disconnect MongoDB", zap.Error(err))
		}
	}

	common.LogInfo("Server exited")
}
