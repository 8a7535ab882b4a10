package main

import (
	"context"
	"log"

	"cloud.google.com/go/bigquery"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cre-analyst/deal-memo-agent/internal/agent"
	"github.com/cre-analyst/deal-memo-agent/internal/config"
	"github.com/cre-analyst/deal-memo-agent/internal/logger"
	"github.com/cre-analyst/deal-memo-agent/internal/server"
	"github.com/cre-analyst/deal-memo-agent/internal/tools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.LogLevel)
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()

	bqClient, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		zlog.Fatal("Failed to create BigQuery client", zap.Error(err))
	}
	defer bqClient.Close()

	mapsClient := tools.NewMapsClient(cfg, zlog)
	warehouseClient := tools.NewWarehouseClient(bqClient, cfg.ComparablesTableID, zlog)
	toolset := agent.NewToolset(mapsClient, warehouseClient, zlog)

	// A model client that cannot be initialized means the service must not
	// come up at all.
	memoAgent, err := agent.New(ctx, cfg, toolset, zlog)
	if err != nil {
		zlog.Fatal("Vertex AI initialization failed", zap.Error(err))
	}

	router := gin.Default()
	server.NewHandler(memoAgent, zlog).Routes(router)

	zlog.Info("deal memo agent starting",
		zap.String("port", cfg.Port),
		zap.String("model", cfg.ModelName))

	if err := router.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("Server failed to start", zap.Error(err))
	}
}
