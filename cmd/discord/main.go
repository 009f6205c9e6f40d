// cmd/discord/main.go
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Redini/DiscordBot/internal/config"
	"github.com/Redini/DiscordBot/internal/discord"
	"github.com/Redini/DiscordBot/internal/music/resolver"
	v "github.com/Redini/DiscordBot/internal/version"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		log.Fatalf("[ERR] Failed to create log directory: %v", err)
	}
	logFile := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     28, // days
	}
	defer logFile.Close()
	log.SetOutput(io.MultiWriter(os.Stderr, logFile))

	log.Printf("[INFO] Starting %v v%v...", v.AppName, v.AppVersion)

	downloadDir, err := filepath.Abs(cfg.DownloadDir)
	if err != nil {
		log.Fatalf("[ERR] Invalid download directory: %v", err)
	}
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		log.Fatalf("[ERR] Failed to create download directory: %v", err)
	}

	pool := resolver.NewPool(resolver.NewYTDLP(downloadDir, cfg.YouTubeProxy, cfg.Volume), cfg.ResolverWorkers)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := discord.StartBot(ctx, cfg, pool); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
		// let the bot leave voice channels and stop its players
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	}

	log.Println("[INFO] Discord bot exited cleanly")
}
