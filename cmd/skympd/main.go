// Package main is the entry point for the skymp scripting daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tidwall/gjson"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/SatinCake/skymp/internal/config"
	"github.com/SatinCake/skymp/internal/events"
	"github.com/SatinCake/skymp/internal/hook"
	"github.com/SatinCake/skymp/internal/plugin"
	"github.com/SatinCake/skymp/internal/plugin/watcher"
	"github.com/SatinCake/skymp/internal/scripting"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "skymp.toml", "path to the config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("skympd %s (%s)\n", version, commit)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	if err := serve(cfg, logger); err != nil {
		logger.Error("daemon failed", zap.Error(err))
		return 1
	}
	return 0
}

func serve(cfg config.Config, logger *zap.Logger) error {
	state, err := scripting.NewState()
	if err != nil {
		return fmt.Errorf("creating lua state: %w", err)
	}
	defer state.Close()

	exec := scripting.NewExecutor(state.LuaState(), cfg.QueueSize)
	defer exec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The script goroutine. Everything Lua runs here.
	scriptDone := make(chan struct{})
	go func() {
		defer close(scriptDone)
		exec.Run(ctx)
	}()

	// Script-side faults surface in the log, never at the hook callers.
	go func() {
		for err := range exec.Faults() {
			logger.Error("script fault", zap.Error(err))
		}
	}()

	api := events.NewAPI(exec)
	manager := plugin.NewManager(state, exec, api, cfg.PluginDir, plugin.WithLogger(logger))

	if err := manager.Bootstrap(); err != nil {
		return fmt.Errorf("installing events api: %w", err)
	}
	if err := manager.LoadAll(); err != nil {
		return fmt.Errorf("loading plugins: %w", err)
	}
	logger.Info("plugins ready", zap.Strings("loaded", manager.Loaded()))

	if cfg.WatchPlugins {
		w, err := watcher.New(cfg.PluginDir, func() {
			if err := manager.ReloadAll(); err != nil {
				logger.Error("plugin reload failed", zap.Error(err))
			}
		}, watcher.WithLogger(logger))
		if err != nil {
			logger.Warn("plugin watcher unavailable", zap.Error(err))
		} else if err := w.Start(); err != nil {
			logger.Warn("plugin watcher unavailable", zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	if cfg.ScenarioFile != "" {
		if err := replayScenario(cfg.ScenarioFile, api, exec, logger); err != nil {
			logger.Warn("scenario replay failed", zap.Error(err))
		}
	}

	logger.Info("skympd running", zap.String("version", version))
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// replayScenario feeds a JSON file of host traffic through the events
// surface, one document per line. Lines carrying a "hook" field replay a
// hook firing from this (worker) goroutine; the rest are broadcast as
// notifications.
func replayScenario(path string, api *events.API, exec *scripting.Executor, logger *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if gjson.Get(line, "hook").Exists() {
			replayHook(line, api, logger)
			continue
		}

		name, args, err := events.ParseScenarioLine(line)
		if err != nil {
			logger.Warn("bad scenario entry", zap.Error(err))
			continue
		}

		err = exec.Execute(func(L *lua.LState) error {
			bridge := scripting.NewBridge(L)
			luaArgs := make([]lua.LValue, len(args))
			for i, arg := range args {
				luaArgs[i] = bridge.ToLuaValue(arg)
			}
			return api.SendEvent(L, name, luaArgs...)
		})
		if err != nil {
			logger.Warn("scenario event failed",
				zap.String("event", name),
				zap.Error(err))
		}
	}
	return nil
}

// replayHook fires one enter/leave cycle as the host would.
func replayHook(line string, api *events.API, logger *zap.Logger) {
	owner := hook.Owner(gjson.Get(line, "owner").Uint())
	if owner == 0 {
		owner = 1
	}
	selfID := uint32(gjson.Get(line, "selfId").Uint())
	name := gjson.Get(line, "event").String()

	switch hookName := gjson.Get(line, "hook").String(); hookName {
	case events.HookSendAnimationEvent:
		succeeded := true
		if v := gjson.Get(line, "succeeded"); v.Exists() {
			succeeded = v.Bool()
		}
		final := api.SendAnimationEventEnter(owner, selfID, name)
		api.SendAnimationEventLeave(owner, succeeded)
		logger.Debug("animation event replayed",
			zap.String("sent", name),
			zap.String("final", final))

	case events.HookSendPapyrusEvent:
		api.SendPapyrusEventEnter(owner, selfID, name)

	default:
		logger.Warn("unknown hook in scenario", zap.String("hook", hookName))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
