package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/priyasp2804/Textile-Defect-Detection/config"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/container"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/infrastructure/gcs"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/infrastructure/mongodb"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/infrastructure/roboflow"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/interface/middleware"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/router"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/helpers"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/response"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// MongoDB
	mongoClient, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	db := mongoClient.Database(cfg.DBName)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	// Redis (report list cache; optional at runtime, nil-guarded in services)
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	// GCS uploader for annotated images; absent bucket disables external hosting
	if cfg.GCSBucket != "" {
		uploader, err := gcs.NewUploader(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS uploader: %v", err)
		}
		defer func() { _ = uploader.Close() }()
		container.SetUploader(uploader)
	} else {
		logger.Warn("GCS_BUCKET not set; annotated images will not be hosted externally")
	}

	// RabbitMQ report event publisher (optional)
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQReportQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; report events disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	// Inference collaborator
	rf := roboflow.NewClient(
		cfg.RoboflowAPIKey,
		cfg.RoboflowProject,
		cfg.RoboflowVersion,
		cfg.RoboflowConfidence,
		cfg.AnnotatedDir,
		cfg.RoboflowTimeout,
		logger,
	)

	// JWT
	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL())

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMongo(db)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)
	container.SetInference(rf)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	// Liveness endpoints
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Textile Quality Checker Backend is running"})
	})
	r.GET("/ping", func(c *gin.Context) {
		names, err := db.ListCollectionNames(c.Request.Context(), bson.D{})
		if err != nil {
			resp := response.Error[any](c, http.StatusServiceUnavailable, "database unreachable", err.Error())
			c.JSON(resp.Status, resp)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db_collections": names})
	})

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}
