package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-order-service/internal/core/auth"
	"go-gin-order-service/internal/core/cache"
	"go-gin-order-service/internal/core/config"
	"go-gin-order-service/internal/core/database"
	"go-gin-order-service/internal/service"
	"go-gin-order-service/pkg/mailer"
)

// Bootstrap opens the database, the optional redis cache and the mailer
// described by cfg, seeds the defaults and returns the wired App. The returned
// closer releases everything it opened.
func Bootstrap(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	db, err := OpenDB(cfg, l)
	if err != nil {
		return nil, closeAll, err
	}
	closers = append(closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, closeAll, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	// redis 可选：未配置或连不上都只告警，功能回落到数据库
	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.Ping(pingCtx)
		cancel()
		if err != nil {
			l.Warn("redis unavailable, caching disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
			c = nil
		} else {
			closers = append(closers, func() { _ = c.Close() })
			l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	m, closeMail, err := mailer.New(mailer.Options{
		Driver:        cfg.Mail.Driver,
		Sender:        cfg.Mail.Sender,
		MailgunDomain: cfg.Mail.MailgunDomain,
		MailgunAPIKey: cfg.Mail.MailgunAPIKey,
		RabbitURL:     cfg.Mail.RabbitURL,
		RabbitQueue:   cfg.Mail.RabbitQueue,
	}, l)
	if err != nil {
		return nil, closeAll, fmt.Errorf("mailer: %w", err)
	}
	closers = append(closers, closeMail)

	a := New(Deps{
		DB:    db,
		Cache: c,
		Tokens: &auth.TokenService{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    cfg.JWT.TTL(),
		},
		Mailer:        m,
		SweepInterval: cfg.Revocation.SweepInterval(),
		Log:           l,
	})

	if err := a.Seeder.EnsureDefaults(ctx, service.AdminAccount{
		Username: cfg.Seed.AdminUsername,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}); err != nil {
		return nil, closeAll, fmt.Errorf("seed defaults: %w", err)
	}
	return a, closeAll, nil
}

func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return db, nil
}
