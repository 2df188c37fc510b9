// Command worldserver is the Zone/World Server binary (§1, §6 "Minimal
// CLI"): it reads config.yaml from the working directory, brings up the
// World Core task, the embedded Script Host, the asset/DB adapters, and
// accepts Zone/Chat/CustomIpc TCP connections until told to stop.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/kvatch/worldserver/internal/actor"
	"github.com/kvatch/worldserver/internal/asset"
	"github.com/kvatch/worldserver/internal/config"
	"github.com/kvatch/worldserver/internal/data"
	"github.com/kvatch/worldserver/internal/healthcheck"
	"github.com/kvatch/worldserver/internal/persist"
	"github.com/kvatch/worldserver/internal/scripting"
	"github.com/kvatch/worldserver/internal/world"
	"github.com/kvatch/worldserver/internal/zoneconn"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config.yaml"
	if p := os.Getenv("WORLDSERVER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting world server",
		zap.Uint16("server_id", cfg.World.ServerID),
		zap.String("name", cfg.World.Name),
		zap.String("bind_address", cfg.Network.BindAddress),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database (§4.6 WorldDatabase).
	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate character store: %w", err)
	}

	var wdb persist.WorldDatabase = persist.NewPlayerDataRepo(db)

	// Asset resolver (§4.6 AssetResource): unpacked overlay takes
	// priority over the packed archive stand-in; an optional spy mirror
	// records every successful read for asset extraction.
	var packed asset.Resource = asset.NewDirResource(cfg.Filesystem.PackedPath)
	var unpacked asset.Resource = asset.NewDirResource(cfg.Filesystem.UnpackedPath)
	res := asset.NewChainResolver(unpacked, packed)
	var assetRes asset.Resource = res
	if cfg.Filesystem.SpyPath != "" {
		assetRes = asset.NewSpyResource(res, cfg.Filesystem.SpyPath)
	}

	// Script Host (§4.5): event scripts for every HandlerType, plus the
	// shared command/GM-command/effect VM and Global.lua fallback.
	scripts, err := scripting.NewEngine(cfg.Scripting.ScriptsPath, assetRes, log)
	if err != nil {
		return fmt.Errorf("init script host: %w", err)
	}
	defer scripts.Close()
	for _, ht := range []actor.HandlerType{
		actor.HandlerQuest, actor.HandlerOpening, actor.HandlerAetheryte,
		actor.HandlerCustomTalk, actor.HandlerInstanceDirector,
		actor.HandlerGimmickRect, actor.HandlerWarp, actor.HandlerDefaultTalk,
	} {
		if err := scripts.Events.LoadDir(ht); err != nil {
			return fmt.Errorf("load %v event scripts: %w", ht, err)
		}
	}
	log.Info("script host ready", zap.String("scripts_path", cfg.Scripting.ScriptsPath))

	// Static zone/content tables, served through the same asset overlay as
	// everything else.
	tables, err := data.LoadTables(assetRes)
	if err != nil {
		return fmt.Errorf("load data tables: %w", err)
	}
	log.Info("data tables ready", zap.Int("zones", tables.ZoneCount()), zap.Int("contents", tables.ContentCount()))

	// World Core (§4.4, §5 role 3): single task owning every Instance.
	w := world.NewWorld(cfg.World, cfg.Filesystem, log, cfg.Network.InQueueSize*4)
	w.SetTables(tables)

	// Director dispatcher: drains the world's DirectorEvents and performs
	// the script calls on its own goroutine, so Lua never runs inside the
	// world tick.
	directorEvents := make(chan world.DirectorEvent, 64)
	w.SetDirectorSink(directorEvents)

	// HTTP healthcheck (§6 "a single HTTP GET /healthcheck endpoint").
	mux := http.NewServeMux()
	healthcheck.New().Register(mux)
	healthSrv := &http.Server{Addr: cfg.Network.HealthAddress, Handler: mux}

	ln, err := net.Listen("tcp", cfg.Network.BindAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Network.BindAddress, err)
	}
	defer ln.Close()
	log.Info("listening", zap.String("address", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)

	// World task (§5 role 3).
	g.Go(func() error { return w.Run(gctx) })

	// Director script dispatcher.
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-directorEvents:
				switch ev.Kind {
				case world.DirectorSetup:
					scripts.Events.CallDirectorSetup(ev.Handler)
				case world.DirectorUpdate:
					scripts.Events.CallDirectorUpdate(ev.Handler, ev.Elapsed)
				}
			}
		}
	})

	// Healthcheck HTTP server.
	g.Go(func() error {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("healthcheck server: %w", err)
		}
		return nil
	})

	// Acceptor (§5 role 1): accepts TCP, spawns an Initial Setup task per
	// connection (§5 role 2, implemented by zoneconn.Accept).
	g.Go(func() error { return acceptLoop(gctx, ln, w, wdb, scripts, cfg, log) })

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case sig := <-shutdownCh:
			log.Info("received shutdown signal", zap.String("signal", sig.String()))
			cancel()
			ln.Close()
			_ = healthSrv.Close()
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("world server stopped")
	return nil
}

// acceptLoop runs the Acceptor role (§5): it accepts TCP connections and
// hands each to the Initial Setup task, which discriminates connection
// type and spawns a Zone/Chat Connection Actor goroutine.
func acceptLoop(ctx context.Context, ln net.Listener, w *world.World, db persist.WorldDatabase, scripts *scripting.Engine, cfg *config.Config, log *zap.Logger) error {
	var nextID actor.ClientId

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			log.Warn("accept error", zap.Error(err))
			continue
		}

		nextID++
		id := nextID

		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error("zone connection panic", zap.Any("recover", r))
					conn.Close()
				}
			}()

			c, err := zoneconn.Accept(conn, id, w, db, scripts, cfg.Network, cfg.World.ServerID, cfg.World.LoginBanner, log)
			if err != nil {
				log.Debug("initial setup failed", zap.Uint64("client_id", uint64(id)), zap.Error(err))
				conn.Close()
				return
			}
			c.Run(ctx)
		}()
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
