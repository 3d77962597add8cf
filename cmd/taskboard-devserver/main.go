// Command taskboard-devserver runs the in-memory task API used by the tests,
// so the client can be tried without the real backend. State is lost on exit.
package main

import (
	"os"

	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/testserver"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	cfg := logger.DefaultConfig()
	cfg.FilePath = ""
	cfg.Console = true
	if err := logger.Init(cfg); err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Close() }()

	backend := testserver.NewBackend()
	if email := os.Getenv("SEED_EMAIL"); email != "" {
		password := os.Getenv("SEED_PASSWORD")
		if password == "" {
			password = testserver.DefaultPassword
		}
		if _, err := backend.AddUser("Demo", email, password); err != nil {
			logger.Error("Failed to seed account", logger.F("error", err))
			return
		}
		logger.Info("Seeded account", logger.F("email", email))
	}

	logger.Info("Taskboard dev server starting", logger.F("port", port))
	if err := backend.Start(":" + port); err != nil {
		logger.Error("Server failed", logger.F("error", err))
	}
}
