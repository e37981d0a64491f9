package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/priyasp2804/Textile-Defect-Detection/config"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/inference"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/infrastructure/gcs"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/helpers"
)

// app-level container to share constructed components across packages.
// Router can auto-wire modules from these singletons; everything is set once
// during startup and read-only afterwards.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoDB     *mongo.Database
	redisClient *redis.Client
	uploader    *gcs.Uploader

	jwtManager *helpers.JWTManager
	rabbitPub  *helpers.RabbitPublisher
	infClient  inference.Client
)

func SetConfig(c *config.Config)     { cfg = c }
func GetConfig() *config.Config      { return cfg }
func SetLogger(l *logrus.Logger)     { logger = l }
func GetLogger() *logrus.Logger      { return logger }
func SetMongo(db *mongo.Database)    { mongoDB = db }
func GetMongo() *mongo.Database      { return mongoDB }
func SetRedis(r *redis.Client)       { redisClient = r }
func GetRedis() *redis.Client        { return redisClient }
func SetUploader(u *gcs.Uploader)    { uploader = u }
func GetUploader() *gcs.Uploader     { return uploader }
func SetJWT(m *helpers.JWTManager)   { jwtManager = m }
func SetInference(c inference.Client) { infClient = c }
func GetInference() inference.Client  { return infClient }

func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
