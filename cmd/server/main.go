package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/ogurasousui/hiring-ingest/internal/adapters/blob"
	"github.com/ogurasousui/hiring-ingest/internal/adapters/http/handler"
	"github.com/ogurasousui/hiring-ingest/internal/adapters/queue"
	pgrepo "github.com/ogurasousui/hiring-ingest/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hiring-ingest/internal/core/ingest"
	"github.com/ogurasousui/hiring-ingest/internal/core/report"
	"github.com/ogurasousui/hiring-ingest/internal/platform/config"
	pg "github.com/ogurasousui/hiring-ingest/internal/platform/db/postgres"
	"github.com/ogurasousui/hiring-ingest/internal/platform/logging"
	"github.com/ogurasousui/hiring-ingest/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging)

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	tx := pg.NewTransactionManager(dbPool)
	departmentRepo := pgrepo.NewDepartmentRepository(dbPool)
	jobRepo := pgrepo.NewJobRepository(dbPool)
	employeeRepo := pgrepo.NewEmployeeRepository(dbPool)
	reportRepo := pgrepo.NewReportRepository(dbPool)

	blobSource := blob.NewGetterSource(cfg.Blob.BaseURL)

	ingestSvc := ingest.NewService(blobSource, departmentRepo, jobRepo, employeeRepo, tx, ingest.Options{
		Files: ingest.SourceFiles{
			Departments: cfg.Blob.DepartmentsFile,
			Jobs:        cfg.Blob.JobsFile,
			Employees:   cfg.Blob.EmployeesFile,
		},
		SubBatchSize: cfg.Ingest.SubBatchSize,
		Logger:       logger.WithField("component", "ingest"),
	})
	reportSvc := report.NewService(reportRepo, tx, cfg.Ingest.ReportYear)

	broker := queue.NewRedisQueue(redisClient, cfg.Redis.QueuePrefix, cfg.Redis.ResultTTL,
		logger.WithField("component", "queue"))

	h := handler.New(ingestSvc, reportSvc, broker, logger.WithField("component", "http"))
	srv := server.New(cfg.Server.ListenAddr, h.Router())

	logger.Infof("HTTP server listening on %s", cfg.Server.ListenAddr)

	if err := srv.Run(ctx); err != nil {
		logger.Fatalf("server stopped with error: %v", err)
	}
}
