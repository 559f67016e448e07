package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/natis1/luna/internal/config"
	"github.com/natis1/luna/internal/data"
	"github.com/natis1/luna/internal/event"
	gamenet "github.com/natis1/luna/internal/net"
	"github.com/natis1/luna/internal/persist"
	"github.com/natis1/luna/internal/plugin"
	"github.com/natis1/luna/internal/service"
	"github.com/natis1/luna/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	launch := time.Now()

	// 1. Load config
	cfgPath := "config/luna.toml"
	if p := os.Getenv("LUNA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	log.Info("starting server", zap.String("name", cfg.Server.Name))

	// 3. Connect to PostgreSQL and run migrations
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	store := persist.NewPostgresStore(db)

	// 4. Launch tasks: load every definition table in parallel, fail fast.
	var (
		itemTable      *data.ItemTable
		npcTable       *data.NpcTable
		objectTable    *data.ObjectTable
		equipmentTable *data.EquipmentTable
		filter         *data.AddressFilter
	)
	tasks := []service.BootstrapTask{
		{Name: "item definitions", Run: func(ctx context.Context) error {
			var err error
			itemTable, err = data.LoadItemTable(filepath.Join(cfg.Paths.Data, "items.yaml"))
			return err
		}},
		{Name: "npc definitions", Run: func(ctx context.Context) error {
			var err error
			npcTable, err = data.LoadNpcTable(filepath.Join(cfg.Paths.Data, "npcs.yaml"))
			return err
		}},
		{Name: "object definitions", Run: func(ctx context.Context) error {
			var err error
			objectTable, err = data.LoadObjectTable(filepath.Join(cfg.Paths.Data, "objects.yaml"))
			return err
		}},
		{Name: "equipment definitions", Run: func(ctx context.Context) error {
			var err error
			equipmentTable, err = data.LoadEquipmentTable(filepath.Join(cfg.Paths.Data, "equipment.yaml"))
			return err
		}},
		{Name: "address filter", Run: func(ctx context.Context) error {
			var err error
			filter, err = data.LoadAddressFilter(cfg.Paths.Filter)
			return err
		}},
	}
	if err := service.RunBootstrap(ctx, log, tasks); err != nil {
		return err
	}
	log.Info("definitions loaded",
		zap.Int("items", itemTable.Count()),
		zap.Int("npcs", npcTable.Count()),
		zap.Int("objects", objectTable.Count()),
		zap.Int("equipment", equipmentTable.Count()))

	// 5. World and plugins
	w := world.NewWorld(log)

	engine, err := plugin.NewEngine(cfg.Paths.Scripts, log)
	if err != nil {
		return fmt.Errorf("plugin engine: %w", err)
	}
	defer engine.Close()
	w.AddListener(engine)
	log.Info("plugins loaded", zap.Int("scripts", engine.Count()))

	// 6. Services
	logins := service.NewLoginService(store, log, cfg.Game.LoginWorkers)
	logouts := service.NewLogoutService(store, log, cfg.Game.LogoutWorkers)
	saves := service.NewPersistenceService(store, log, cfg.Game.SaveWorkers)
	startPos := world.Position{X: cfg.Server.StartingX, Y: cfg.Server.StartingY, Z: cfg.Server.StartingZ}
	game := service.NewGameService(w, logins, logouts, saves, filter, cfg.Game, startPos, log)
	event.Subscribe(game.Bus(), engine.OnChat)

	supervisor := service.NewSupervisor(log, logins, logouts, saves, game)
	if err := supervisor.StartAll(ctx); err != nil {
		return err
	}

	// 7. Network
	server, err := gamenet.NewServer(cfg.Server.BindAddress, logins, filter, log)
	if err != nil {
		return fmt.Errorf("bind %s: %w", cfg.Server.BindAddress, err)
	}
	go server.AcceptLoop()

	log.Info("server is now online",
		zap.Stringer("addr", server.Addr()),
		zap.Duration("elapsed", time.Since(launch).Round(time.Millisecond)))

	// 8. Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", zap.String("signal", sig.String()))

	server.Shutdown()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer stopCancel()
	return supervisor.StopAll(stopCtx)
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
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
