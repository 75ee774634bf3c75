package api

import (
	"fmt"
	"time"

	"planeats/internal/api/handlers/auth"
	"planeats/internal/api/handlers/health"
	"planeats/internal/api/handlers/httpx"
	mealplanHandler "planeats/internal/api/handlers/mealplan"
	notificationHandler "planeats/internal/api/handlers/notification"
	preferenceHandler "planeats/internal/api/handlers/preference"
	recipeHandler "planeats/internal/api/handlers/recipe"
	shoppingHandler "planeats/internal/api/handlers/shoppinglist"
	usersHandler "planeats/internal/api/handlers/users"
	"planeats/internal/api/middleware"
	"planeats/internal/core/dashboard"
	"planeats/internal/core/mealplan"
	"planeats/internal/core/notification"
	"planeats/internal/core/preference"
	"planeats/internal/core/recipe"
	"planeats/internal/core/shoppinglist"
	"planeats/internal/core/user"
	"planeats/internal/infrastructure/config"
	"planeats/internal/infrastructure/ratelimit"
	"planeats/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 認證路由較嚴格的限流
	authRequests = 20
	authWindow   = 15 * time.Minute
)

// Deps 路由需要的服務
type Deps struct {
	Config        *config.Config
	Users         *user.Service
	Recipes       *recipe.Service
	MealPlans     *mealplan.Service
	ShoppingLists *shoppinglist.Service
	Preferences   *preference.Service
	Notifications *notification.Service
	Dashboard     *dashboard.Service
	RateLimit     ratelimit.Store
	AIConfigured  bool
	Checks        map[string]health.Checker
}

// SetupRouter 設置路由
func SetupRouter(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := httpx.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	router := gin.New()

	// 基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.RequestContext(cfg.Server.RequestTimeout))

	healthH := health.NewHandler(cfg.App.Version, cfg.App.Env, deps.AIConfigured, deps.Checks)
	router.GET("/health", healthH.Health)
	router.GET("/ready", healthH.Ready)
	router.GET("/live", healthH.Live)

	v1 := router.Group("/api/v1")
	if cfg.RateLimit.Enabled && deps.RateLimit != nil {
		v1.Use(middleware.RateLimit(deps.RateLimit, "api", cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	v1.GET("/health", healthH.Health)

	requireAuth := middleware.Auth(deps.Users)

	authH := auth.NewHandler(deps.Users)
	authGroup := v1.Group("/auth")
	if cfg.RateLimit.Enabled && deps.RateLimit != nil {
		authGroup.Use(middleware.RateLimit(deps.RateLimit, "auth", authRequests, authWindow))
	}
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/logout", requireAuth, authH.Logout)
		authGroup.GET("/me", requireAuth, authH.Me)
		authGroup.PUT("/profile", requireAuth, authH.UpdateProfile)
		authGroup.PUT("/change-password", requireAuth, authH.ChangePassword)
		authGroup.DELETE("/account", requireAuth, authH.DeleteAccount)
		authGroup.POST("/verify-token", requireAuth, authH.VerifyToken)
	}

	usersH := usersHandler.NewHandler(deps.Users, deps.Dashboard)
	usersGroup := v1.Group("/users", requireAuth)
	{
		usersGroup.GET("/profile", usersH.Profile)
		usersGroup.PUT("/profile", usersH.UpdateProfile)
		usersGroup.GET("/dashboard", usersH.Dashboard)
	}

	recipeH := recipeHandler.NewHandler(deps.Recipes)
	recipes := v1.Group("/recipes")
	{
		recipes.GET("", recipeH.List)
		recipes.GET("/meta/categories", recipeH.Categories)
		recipes.GET("/my/created", requireAuth, recipeH.MyRecipes)
		recipes.GET("/my/favorites", requireAuth, recipeH.MyFavorites)
		recipes.GET("/:id", middleware.OptionalAuth(deps.Users), recipeH.Get)
		recipes.POST("", requireAuth, recipeH.Create)
		recipes.PUT("/:id", requireAuth, recipeH.Update)
		recipes.DELETE("/:id", requireAuth, recipeH.Delete)
		recipes.POST("/:id/reviews", requireAuth, recipeH.Review)
		recipes.POST("/:id/favorite", requireAuth, recipeH.ToggleFavorite)
	}

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	mealPlanH := mealplanHandler.NewHandler(deps.MealPlans)
	plans := v1.Group("/mealplans", requireAuth)
	{
		plans.GET("", mealPlanH.List)
		plans.POST("", mealPlanH.Create)
		plans.POST("/generate", dedup.Middleware(), mealPlanH.Generate)
		plans.GET("/:id", mealPlanH.Get)
		plans.PUT("/:id", mealPlanH.Update)
		plans.DELETE("/:id", mealPlanH.Delete)
		plans.PUT("/:id/meals", mealPlanH.UpdateMeal)
		plans.POST("/:id/shopping-list", mealPlanH.RegenerateShoppingList)
		plans.GET("/:id/days/:day/nutrition", mealPlanH.DayNutrition)
	}

	shoppingH := shoppingHandler.NewHandler(deps.ShoppingLists)
	lists := v1.Group("/shopping-lists", requireAuth)
	{
		lists.GET("", shoppingH.List)
		lists.POST("", shoppingH.Create)
		lists.POST("/from-mealplan/:id", shoppingH.FromMealPlan)
		lists.GET("/:id", shoppingH.Get)
		lists.PUT("/:id", shoppingH.Update)
		lists.DELETE("/:id", shoppingH.Delete)
		lists.POST("/:id/items", shoppingH.AddItem)
		lists.PUT("/:id/items/:itemId", shoppingH.MarkItem)
		lists.DELETE("/:id/items/:itemId", shoppingH.RemoveItem)
	}

	prefH := preferenceHandler.NewHandler(deps.Preferences)
	prefs := v1.Group("/preferences", requireAuth)
	{
		prefs.GET("", prefH.Get)
		prefs.PUT("", prefH.Update)
		prefs.POST("/reset", prefH.Reset)
	}

	notifH := notificationHandler.NewHandler(deps.Notifications)
	notifs := v1.Group("/notifications", requireAuth)
	{
		notifs.GET("", notifH.List)
		notifs.PUT("/read", notifH.MarkRead)
		notifs.DELETE("", notifH.DeleteOld)
		notifs.DELETE("/:id", notifH.Delete)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("ai_configured", deps.AIConfigured),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)
	return router, nil
}
