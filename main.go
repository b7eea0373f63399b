package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/valyala/fasthttp"

	"pajak-engine/internal/config"
	"pajak-engine/internal/engine"
	"pajak-engine/internal/export"
	"pajak-engine/internal/handler"
	"pajak-engine/internal/i18n"
	"pajak-engine/internal/logger"
	"pajak-engine/internal/metrics"
	"pajak-engine/internal/receipt"
	"pajak-engine/internal/treatyregistry"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	m := metrics.New(cfg.Metrics.Namespace)
	treaties := treatyregistry.New(cfg.Treaty, logg.With("component", "treatyregistry"))
	eng := engine.New(treaties, m, logg.With("component", "engine"))
	store := receipt.NewStore(cfg.Receipts.DefaultLocale, cfg.Receipts.TemplateVersion)
	h := handler.New(eng, store, export.New(i18n.Default), m, logg.With("component", "handler"))

	server := &fasthttp.Server{
		Handler:            h.Handle,
		Name:               "pajak-engine",
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		MaxRequestBodySize: cfg.Server.MaxRequestBytes,
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logg.Infow("shutting down")
		if err := server.Shutdown(); err != nil {
			logg.Errorw("shutdown failed", "error", err)
		}
	}()

	logg.Infow("pajak engine starting",
		"address", cfg.Server.Address,
		"treaty_registry", cfg.Treaty.RegistryURL != "",
	)
	if err := server.ListenAndServe(cfg.Server.Address); err != nil {
		logg.Fatalw("server failed", "error", err)
	}
}
