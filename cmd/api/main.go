package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"innkeeper/internal/config"
	"innkeeper/internal/database"
	"innkeeper/internal/locker"
	"innkeeper/internal/logging"
	"innkeeper/internal/metrics"
	"innkeeper/internal/modules/assignment"
	"innkeeper/internal/modules/availability"
	"innkeeper/internal/modules/booking"
	"innkeeper/internal/modules/notification"
	"innkeeper/internal/modules/payment"
	"innkeeper/internal/modules/pricing"
	jwtsvc "innkeeper/internal/pkg/jwt"
	"innkeeper/internal/repository"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		log.Fatal(err)
	}
	if closer != nil {
		defer closer.Close()
	}

	metrics.Register()

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	if err := repository.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	locks := locker.New(redisClient, cfg.Redis.LockTTL())

	bookingRepo := repository.NewBookingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)

	j := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	hub := notification.NewHub(nil)
	defer hub.Close()

	availabilitySvc := availability.NewService(roomRepo, bookingRepo, maintenanceRepo)
	pricingSvc := pricing.NewService(cfg.Pricing)
	paymentSvc := payment.NewService(paymentRepo, bookingRepo, locks, cfg.Policy, logger, nil)
	bookingSvc := booking.NewService(bookingRepo, roomRepo, availabilitySvc, pricingSvc, paymentSvc, hub, cfg.Policy, logger, nil)
	assignmentSvc := assignment.NewService(bookingRepo, roomRepo, availabilitySvc, locks, logger)

	bookingHandler := booking.NewHandler(bookingSvc, assignmentSvc, availabilitySvc)
	paymentHandler := payment.NewHandler(paymentSvc)
	wsHandler := notification.NewWSHandler(hub, j, logger)

	if cfg.App.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// the gateway posts here without a staff token
		paymentHandler.RegisterWebhookRoutes(v1)
		wsHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(authMiddleware(j))
		{
			bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	logger.Info().Str("addr", addr).Msg("starting api server")
	if err := r.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func authMiddleware(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing or invalid Authorization header",
				},
			})
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil || !jwtsvc.KnownRole(claims.Role) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid token",
				},
			})
			return
		}

		c.Set("staff_id", claims.StaffID)
		c.Set("role", claims.Role)

		c.Next()
	}
}
