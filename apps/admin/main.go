package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/levels"
	"github.com/trezcool/levelup/core/xp"
	logsvc "github.com/trezcool/levelup/services/logger"
	"github.com/trezcool/levelup/storage/cache/rediscache"
	"github.com/trezcool/levelup/storage/database"
	boiledrepos "github.com/trezcool/levelup/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/levelup/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger("ADMIN", conf)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = database.Ping(context.Background(), db, 3); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}

	// the API caches levels in redis: keep it in sync
	var levelsCache levels.Cache
	if conf.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Address,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		levelsCache = rediscache.NewLevelsCache(rdb, conf.Redis.CacheTTL)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	levels.InitValidators(validate, translator)

	levelsSvc := levels.NewService(boiledrepos.NewLevelsRepository(db), levelsCache, validate, logger)
	xpSvc := xp.NewService(sqlxrepos.NewStateRepository(database.OpenX(db)), levelsSvc, nil, logger)

	// start CLI
	cli := newCommandLine(db, levelsSvc, xpSvc, translator)
	err = cli.run(context.Background(), os.Args)

	_ = db.Close()
	_ = logger.Sync()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
