package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/rizqiaditya/stories/config"
	"github.com/rizqiaditya/stories/controllers"
	"github.com/rizqiaditya/stories/models"
	"github.com/rizqiaditya/stories/routes"
	"github.com/rizqiaditya/stories/services"
	"github.com/rizqiaditya/stories/storage"
	"github.com/rizqiaditya/stories/utils"
)

// @title        Stories API
// @version      1.0
// @description  Ephemeral photo stories with captions, location, expiry and archive.
// @BasePath     /
func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(&models.Story{}, &models.StoryComment{}, &models.StoryView{})

	files := storage.NewLocalStore(cfg.UploadDir, cfg.UploadPublicBase, "stories", int64(cfg.UploadMaxSizeMB)<<20)
	svc := services.NewStoryService(db, time.Duration(cfg.StoryTTLHours)*time.Hour, files)

	rc := utils.NewRedisClient(cfg)
	cache := utils.NewCache(rc, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	stories := controllers.NewStoryController(svc, files, cache)
	r := routes.SetupRouter(cfg, svc, stories)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archiver := services.NewArchiver(svc, time.Duration(cfg.ArchiveIntervalSec)*time.Second)
	archiver.OnArchived = func(int64) { stories.InvalidateCache() }
	go archiver.Run(ctx)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	serveErr := utils.GraceServer(ctx, ":"+cfg.AppPort, r)
	stop()

	var err error
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		err = multierr.Append(err, sqlDB.Close())
	}
	if rc != nil {
		err = multierr.Append(err, rc.Close())
	}
	if err != nil {
		utils.Sugar.Warnf("shutdown: %v", err)
	}
	if serveErr != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", serveErr)
	}
	utils.Sugar.Info("server stopped")
}
