package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/starlore/starlore/internal/client"
	"github.com/starlore/starlore/internal/config"
	"github.com/starlore/starlore/internal/protocol"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: client <username>")
		os.Exit(1)
	}
	username := os.Args[1]

	if err := run(username); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(username string) error {
	cfgPath := "config/client.yaml"
	if p := os.Getenv("STARLORE_CLIENT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadClient(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
	slog.Info("connecting", "address", addr, "username", username)

	g, err := client.Connect(cfg, addr, username)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer g.Close()

	slog.Info("joined", "id", g.LocalID)

	go renderLoop(g)

	return commandLoop(g)
}

// commandLoop is the headless line-oriented input surface: w/a/s/d move,
// space attacks, shift rolls, "say <message>" chats, "quit" exits. This is
// a CLI-appropriate stand-in for the keyboard events spec.md §6.2 expects a
// graphical client to translate into PlayerKeypress packets.
func commandLoop(g *client.Game) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "say ") {
			if err := g.SendMessage(strings.TrimPrefix(line, "say ")); err != nil {
				slog.Warn("send message failed", "error", err)
			}
			continue
		}

		key, ok := keyFor(line)
		if !ok {
			if line == "quit" {
				return nil
			}
			slog.Warn("unknown command", "input", line)
			continue
		}
		if err := g.SendKey(key, protocol.ActionPress); err != nil {
			slog.Warn("send key failed", "error", err)
		}
	}
	return scanner.Err()
}

func keyFor(cmd string) (protocol.Key, bool) {
	switch cmd {
	case "w":
		return protocol.KeyW, true
	case "a":
		return protocol.KeyA, true
	case "s":
		return protocol.KeyS, true
	case "d":
		return protocol.KeyD, true
	case "space":
		return protocol.KeySpace, true
	case "shift":
		return protocol.KeyLeftShift, true
	default:
		return 0, false
	}
}

// renderLoop advances every remote player's interpolation clock at a fixed
// rate and prints a compact status line — a headless substitute for an
// actual frame-rendering loop.
func renderLoop(g *client.Game) {
	const frameInterval = 50 * time.Millisecond
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for range ticker.C {
		g.Advance(frameInterval.Seconds())
		local := g.Predictor.State()
		fmt.Printf("\rpos=(%.0f,%.0f) state=%v pending=%d", local.Position.X, local.Position.Y, local.State, g.Predictor.Pending())
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
