// Command strata serves the graph and path indexes of a blob store engine
// over HTTP. It is configured by environment variables, run it with the
// parameter help to list them.
package main

import (
	"crypto/ecdsa"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime/debug"
	"sync"

	"github.com/natefinch/lumberjack"
	"github.com/pkg/profile"

	"strata.lol/config"
	"strata.lol/context"
	"strata.lol/engine"
	"strata.lol/httpauth"
	"strata.lol/interrupt"
	"strata.lol/lol"
	"strata.lol/openapi"
	"strata.lol/servemux"
	"strata.lol/store"
)

const Version = "v0.1.0"

func main() {
	var err er
	var cfg *config.C
	if cfg, err = config.New(); chk.T(err) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err)
		}
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(1)
	}
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println(Version)
		os.Exit(0)
	}
	if config.GetEnv() {
		config.PrintEnv(cfg, os.Stdout)
		os.Exit(0)
	}
	if config.HelpRequested() {
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}
	if cfg.LogFile != "" {
		lol.SetWriter(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileMb,
			MaxBackups: 3,
			Compress:   true,
		}))
	}
	log.I.Ln("log level", cfg.LogLevel)
	lol.SetLogLevel(cfg.LogLevel)
	if cfg.Pprof {
		defer profile.Start(profile.MemProfile, profile.ProfilePath(cfg.Profile)).Stop()
		go func() {
			chk.E(http.ListenAndServe("127.0.0.1:6060", nil))
		}()
	}
	debug.SetMemoryLimit(int64(cfg.MemLimit))
	var wg sync.WaitGroup
	c, cancel := context.Cancel(context.Bg())
	var db store.I
	if db, err = engine.Open(c, &wg, engine.Params{
		Engine:      cfg.Engine,
		DataDir:     cfg.DataDir,
		InMemory:    cfg.InMemory,
		CacheMb:     cfg.BlockCacheMb,
		Compression: cfg.Compression,
		LogLevel:    cfg.DbLogLevel,
	}); chk.E(err) {
		os.Exit(1)
	}
	var adminKey *ecdsa.PublicKey
	if cfg.AdminKey != "" {
		if adminKey, err = httpauth.ParsePublic(cfg.AdminKey); chk.E(err) {
			os.Exit(1)
		}
	} else {
		log.W.Ln("no ADMIN_KEY configured, admin operations are disabled")
	}
	sm := servemux.New()
	sm.Limit(cfg.RateLimit, cfg.RateBurst)
	openapi.New(&openapi.Operations{
		DB:         db,
		ArenaLimit: cfg.ArenaLimit,
		Retries:    cfg.Retries,
		AdminKey:   adminKey,
		Shutdown:   cancel,
	}, cfg.AppName, Version, "graph and path indexes over a transactional blob store", "", sm)
	go MonitorResources(c)
	interrupt.AddHandler(cancel)
	if err = Serve(c, cfg.Listen, cfg.Port, cfg.MaxConns, sm); chk.E(err) {
		log.E.F("server terminated: %v", err)
	}
	cancel()
	wg.Wait()
	chk.E(db.Close())
}
