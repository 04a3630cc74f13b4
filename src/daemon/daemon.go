package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nocturne/src/config"
	"nocturne/src/database"
	"nocturne/src/persona"
	"nocturne/src/session"
)

// Run starts the daemon with the JSON-RPC server and blocks until a
// shutdown signal arrives.
func Run(personaName string) error {
	pidPath := pidFilePath()
	if err := writePidFile(pidPath); err != nil {
		return err
	}
	defer os.Remove(pidPath)

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if personaName == "" {
		personaName = settings.Persona.Default
	}

	cfg, err := persona.LoadConfig(personaName)
	if err != nil {
		return err
	}
	engine := persona.NewEngine(cfg)

	store, err := openStore(settings)
	if err != nil {
		return err
	}
	registry := session.NewRegistry(store, cfg.Metadata.ID, session.Thresholds{
		EstablishedAfter: cfg.Progression.EstablishedAfter,
		IntimateAfter:    cfg.Progression.IntimateAfter,
	})

	var history *database.HistoryDB
	if settings.History.Enabled {
		history, err = database.NewHistoryDB(settings.History.Path)
		if err != nil {
			logger.Warn("history database unavailable", zap.Error(err))
			history = nil
		}
	}

	server := NewServer(engine, registry, history, settings.Daemon.Socket, logger)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("daemon started",
		zap.Int("pid", os.Getpid()),
		zap.String("persona", cfg.Metadata.ID),
		zap.String("socket", settings.Daemon.Socket))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan
		switch sig {
		case syscall.SIGHUP:
			logger.Info("received SIGHUP, reloading settings")
			if reloaded, err := config.LoadSettings(); err == nil {
				settings = reloaded
				logger.Info("settings reloaded")
			} else {
				logger.Warn("failed to reload settings", zap.Error(err))
			}
		default:
			logger.Info("shutting down", zap.String("signal", sig.String()))
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Stop(ctx)
		}
	}
}

func openStore(settings *config.Settings) (session.Store, error) {
	if !settings.Redis.Enabled {
		return session.NewMemoryStore(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return session.NewRedisStore(ctx, session.RedisOptions{
		Addr:   settings.Redis.Addr,
		DB:     settings.Redis.DB,
		Prefix: settings.Redis.Prefix,
		TTL:    time.Duration(settings.Redis.TTLMinutes) * time.Minute,
	})
}

// IsRunning checks whether a daemon process already holds the PID file.
func IsRunning() (bool, int) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return false, 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		// Stale PID file from a process that no longer exists.
		os.Remove(pidFilePath())
		return false, 0
	}

	return true, pid
}

// Stop signals a running daemon to shut down, force-killing it if it
// does not exit within the grace period.
func Stop(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	time.Sleep(2 * time.Second)

	if err := process.Signal(syscall.Signal(0)); err == nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process: %w", err)
		}
	}

	os.Remove(pidFilePath())
	return nil
}

func pidFilePath() string {
	return filepath.Join(config.DataDir(), "daemon.pid")
}

func writePidFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}
