package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	echoapi "github.com/trezcool/levelup/apps/api/echo"
	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/levels"
	"github.com/trezcool/levelup/core/xp"
	appfs "github.com/trezcool/levelup/fs"
	emailsvc "github.com/trezcool/levelup/services/email"
	logsvc "github.com/trezcool/levelup/services/logger"
	notifysvc "github.com/trezcool/levelup/services/notify"
	"github.com/trezcool/levelup/storage/cache/rediscache"
	"github.com/trezcool/levelup/storage/database"
	boiledrepos "github.com/trezcool/levelup/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/levelup/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := newLogger("API", conf)
	dbLogger := newLogger("DB", conf)
	defer func() { _ = logger.Sync() }()

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up redis (levels cache & events)
	var levelsCache levels.Cache
	var publisher xp.Notifier
	if conf.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Address,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		if err = rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
		}
		levelsCache = rediscache.NewLevelsCache(rdb, conf.Redis.CacheTTL)
		publisher = notifysvc.NewRedisNotifier(rdb, conf.Redis.Channel)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	levels.InitValidators(validate, translator)

	levelsSvc := levels.NewService(boiledrepos.NewLevelsRepository(db), levelsCache, validate, logger)
	xpSvc := xp.NewService(
		sqlxrepos.NewStateRepository(database.OpenX(db)),
		levelsSvc,
		notifysvc.NewMultiNotifier(publisher, notifysvc.NewMailNotifier(mailSvc)),
		logger,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			LevelsSvc:  levelsSvc,
			XPSvc:      xpSvc,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newLogger(name string, conf *core.Config) *logsvc.RollbarLogger {
	zl, err := logsvc.NewZapLogger(name, conf)
	if err != nil {
		log.Fatalf("building %s logger: %v", name, err)
	}
	logger := logsvc.NewRollbarLogger(zl, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
