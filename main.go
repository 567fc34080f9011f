package main

import (
	"fmt"
	"log"
	"os"
	"time"

	apirest "github.com/e9games/creaturebot/api/rest"
	"github.com/e9games/creaturebot/cache"
	"github.com/e9games/creaturebot/config"
	dbadapter "github.com/e9games/creaturebot/db"
	"github.com/e9games/creaturebot/game/adventure"
	"github.com/e9games/creaturebot/game/boss"
	"github.com/e9games/creaturebot/game/catching"
	"github.com/e9games/creaturebot/game/challenge"
	"github.com/e9games/creaturebot/game/gym"
	"github.com/e9games/creaturebot/game/inventory"
	"github.com/e9games/creaturebot/game/limiter"
	mw "github.com/e9games/creaturebot/middleware"
	"github.com/e9games/creaturebot/model"
	"github.com/e9games/creaturebot/scheduler"
	"github.com/e9games/creaturebot/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Cache ----
	c, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- Store & Services ----
	st := store.New(db, logger)
	invSvc := inventory.New(st, logger)
	limSvc := limiter.New(st, c, cfg.Game, logger)
	catchSvc := catching.New(st, invSvc, limSvc, sched, cfg.Game, logger, nil)
	chalSvc := challenge.New(st, invSvc, limSvc, sched, cfg.Game, logger, nil)
	advSvc := adventure.New(st, invSvc, limSvc, cfg.Game, logger, nil)
	bossSvc := boss.New(st, c, invSvc, limSvc, cfg.Game, logger, nil)
	gymSvc := gym.New(st, invSvc, limSvc, cfg.Game, logger, nil)

	// ---- Periodic Scheduler Tasks ----
	sched.AddTicker("challenge_cleanup", time.Minute, chalSvc.CleanupSweep)
	sched.AddTicker("pending_sweep", time.Minute, catchSvc.SweepExpiredPending)
	sched.AddTicker("gym_expiry", time.Minute, gymSvc.SweepExpired)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	catchH := apirest.NewCatchHandler(catchSvc)
	invH := apirest.NewInventoryHandler(invSvc)
	chalH := apirest.NewChallengeHandler(chalSvc)
	advH := apirest.NewAdventureHandler(advSvc)
	bossH := apirest.NewBossHandler(bossSvc)
	gymH := apirest.NewGymHandler(gymSvc)
	adminH := apirest.NewAdminHandler(st, sched, cfg.Security, logger)

	api := r.Group("/api")
	api.Use(mw.Auth(cfg.Security.JWTSecret))
	{
		usersG := api.Group("/users")
		usersG.POST("/:id/catch", catchH.Attempt)
		usersG.GET("/:id/catch/pending", catchH.Pending)
		usersG.POST("/:id/catch/replace", catchH.Replace)
		usersG.DELETE("/:id/catch/pending", catchH.Release)
		usersG.GET("/:id/inventory", invH.Get)
		usersG.POST("/:id/lock", invH.Lock)
		usersG.DELETE("/:id/lock", invH.Unlock)
		usersG.POST("/:id/adventure", advH.Go)
		usersG.POST("/:id/items/use", advH.UseItem)
		usersG.GET("/:id/challenge", chalH.Pending)
		usersG.POST("/:id/challenge/accept", chalH.Accept)
		usersG.POST("/:id/challenge/decline", chalH.Decline)
		usersG.POST("/:id/botbattle", chalH.BotBattle)

		chalG := api.Group("/challenges")
		chalG.POST("", chalH.Create)
		chalG.POST("/:id/creature", chalH.SelectCreature)
		chalG.POST("/:id/resolve", chalH.Resolve)

		bossG := api.Group("/boss")
		bossG.GET("", bossH.Status)
		bossG.POST("/spawn", bossH.Spawn)
		bossG.POST("/attack", bossH.Attack)

		gymG := api.Group("/gym")
		gymG.GET("", gymH.Status)
		gymG.POST("/start", gymH.Start)
		gymG.POST("/attack", gymH.Attack)

		adminG := api.Group("/admin")
		adminG.Use(mw.AdminOnly(cfg.Server.AdminKey, cfg.Security.AdminAllowIPs))
		adminG.POST("/users/:id/reset-inventory", adminH.ResetInventory)
		adminG.POST("/users/:id/reset-all", adminH.ResetAll)
		adminG.POST("/users/:id/reset-quotas", adminH.ResetQuotas)
		adminG.POST("/users/:id/reset-catch", adminH.ResetCatch)
		adminG.POST("/users/:id/reset-badges", adminH.ResetBadges)
		adminG.POST("/badges/grant", adminH.GrantBadges)
		adminG.DELETE("/challenges", adminH.ClearChallenges)
		adminG.POST("/token", adminH.MintToken)
		adminG.GET("/scheduler", adminH.SchedulerTasks)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
