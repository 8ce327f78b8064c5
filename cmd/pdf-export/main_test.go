package main

import (
	"syscall"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"pdfexport/internal/config"
)

func TestStartServer_GracefulShutdownOnSignal(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = ":0"

	idleConnsClosed := make(chan struct{})
	go startServer(app, cfg, idleConnsClosed)

	time.Sleep(100 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("failed to send SIGTERM: %v", err)
	}

	select {
	case <-idleConnsClosed:
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for graceful shutdown")
	}
}

func TestBuildPipeline(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()
	if pipe := buildPipeline(cfg); pipe == nil {
		t.Fatalf("expected pipeline")
	}
}
