package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"suraksha/internal/device"
	"suraksha/internal/emergency"
	handlers "suraksha/internal/handler"
	"suraksha/internal/listeners"
	"suraksha/internal/models"
	"suraksha/internal/store"
	"suraksha/pkg/backup"
	"suraksha/pkg/cache"
	"suraksha/pkg/config"
	"suraksha/pkg/logger"
	"suraksha/pkg/middleware"
	"suraksha/pkg/notification"
	"suraksha/pkg/scheduler"
	"suraksha/pkg/sse"
	stores "suraksha/pkg/storage"

	"suraksha/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}
	cfg := config.GlobalConfig

	logger.Init(cfg.Log)
	defer logger.Sync()

	gin.SetMode(ginMode(cfg.Mode))

	db, err := util.OpenDatabase(&gorm.Config{}, cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Fatal("database open failed", zap.Error(err))
	}

	st := store.New(db, stores.NewStore())
	if err := st.AutoMigrate(); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	c, err := cache.NewCache(cache.Config{
		Type: cfg.CacheType,
		Redis: cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			PoolSize: 10,
			Timeout:  3 * time.Second,
		},
		Local: cache.LocalConfig{
			DefaultExpiration: 5 * time.Minute,
			CleanupInterval:   10 * time.Minute,
		},
	})
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}
	defer c.Close()

	locations := device.NewLocationGateway()
	media := device.NewMediaGateway()
	sched := scheduler.New()
	hub := sse.NewHub()

	var smsClient notification.SMSClient = notification.LogSMSClient{}
	if cfg.SMSEnabled {
		// Real carrier client plugs in here; until then alerts go to the log.
		logger.Warn("SMS_ENABLED set but no carrier client built in, using log sink")
	}
	sms := notification.NewSMS(notification.SMSConfig{
		AccessKey:    cfg.SMSAccessKey,
		TemplateCode: cfg.SMSTemplateCode,
	}, smsClient)
	push := notification.NewPush(notification.PushConfig{}, notification.LogPushClient{})
	listeners.InitSessionListeners(sms, push)

	orch := emergency.New(st, locations, media, sched, hub, emergency.Options{
		HoldDuration:    cfg.HoldDuration,
		AudioClipLength: cfg.AudioClipLength,
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLog())
	handlers.New(st, orch, hub, c, locations, media, cfg).Register(r)

	// Nightly sweep: sessions left active past the cutoff get resolved so
	// they do not sit open forever after a dead client.
	cr := scheduler.NewCron(time.Local)
	_, err = cr.Add("0 3 * * *", scheduler.FuncJob(func(ctx context.Context) {
		stale, err := st.StaleActiveSessions(ctx, cfg.StaleSessionAge)
		if err != nil {
			logger.Error("stale session sweep failed", zap.Error(err))
			return
		}
		for _, s := range stale {
			if err := orch.Resolve(ctx, s.ID, models.SessionResolved); err != nil {
				logger.Error("stale session resolve failed", zap.String("session", s.ID), zap.Error(err))
			}
		}
		if len(stale) > 0 {
			logger.Info("stale sessions swept", zap.Int("count", len(stale)))
		}
	}))
	if err != nil {
		logger.Fatal("cron registration failed", zap.Error(err))
	}

	// Scheduled database snapshots; an emergency record has to survive the
	// host it was written on.
	_, err = cr.Add(cfg.BackupSchedule, scheduler.FuncJob(func(ctx context.Context) {
		dst, err := backup.Snapshot(cfg.DBDriver, cfg.DSN, cfg.BackupPath)
		if err != nil {
			logger.Warn("database backup failed", zap.Error(err))
			return
		}
		logger.Info("database backup written", zap.String("path", dst))
		if removed, err := backup.Prune(cfg.BackupPath, cfg.BackupKeep); err != nil {
			logger.Warn("backup prune failed", zap.Error(err))
		} else if removed > 0 {
			logger.Info("old backups pruned", zap.Int("removed", removed))
		}
	}))
	if err != nil {
		logger.Fatal("cron registration failed", zap.Error(err))
	}
	cr.Start()

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	cr.Stop()
	orch.Shutdown()
	sched.Stop()
}

func ginMode(mode string) string {
	switch mode {
	case gin.ReleaseMode, gin.TestMode:
		return mode
	default:
		return gin.DebugMode
	}
}
