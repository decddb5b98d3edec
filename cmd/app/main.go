package main

import (
	"portal/config"
	"portal/di"
	"portal/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	server := di.InitializeService()
	server.Serve()
}
