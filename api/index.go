// Package handler adapts the portal router to a serverless entry point.
package handler

import (
	"net/http"

	"portal/config"
	"portal/di"
	"portal/shared/logger"
)

func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	server := di.InitializeService()
	server.ServeHTTP(w, r)
}
