package router

import (
	"github.com/priyasp2804/Textile-Defect-Detection/internal/application"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/container"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/infrastructure/mongodb"
	handlers "github.com/priyasp2804/Textile-Defect-Detection/internal/interface/http"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/router/modules"
)

// InitModules builds every feature module from the container singletons and
// registers it with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	db := container.GetMongo()

	userRepo := mongodb.NewUserRepository(db)
	reportRepo := mongodb.NewReportRepository(db)

	userSvc := application.NewUserService(userRepo, container.GetJWT(), logger)
	inspectionSvc := application.NewInspectionService(
		container.GetInference(),
		cfg.TmpDir,
		cfg.MaxConcurrentInference,
		logger,
	)

	// The concrete uploader/publisher may be absent; the service treats a nil
	// interface as "collaborator unavailable".
	var uploader application.ImageUploader
	if u := container.GetUploader(); u != nil {
		uploader = u
	}
	var publisher application.EventPublisher
	if p := container.GetRabbitPub(); p != nil {
		publisher = p
	}
	var cache application.ReportListCache
	if rdb := container.GetRedis(); rdb != nil {
		cache = application.NewRedisReportListCache(rdb)
	}
	reportSvc := application.NewReportService(reportRepo, inspectionSvc, uploader, publisher, cache, logger)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(userSvc, logger), container.GetJWT()))
	r.Add(modules.NewInspectionModule(handlers.NewInspectionHandler(inspectionSvc, logger)))
	r.Add(modules.NewReportModule(handlers.NewReportHandler(reportSvc, logger), container.GetJWT()))
}
