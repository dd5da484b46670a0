package main

import (
	"github.com/sirupsen/logrus"

	_ "todo/docs"
	"todo/internal/config"
	"todo/internal/server"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

// @title           Todo API
// @version         1.0
// @description     REST API for a per-user to-do list with JWT authentication.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	log := setupLogger(cfg.Env)

	s, err := server.Init(cfg, log)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}

func setupLogger(env string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	switch env {
	case envLocal:
		log.SetLevel(logrus.DebugLevel)
	case envProd:
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}
