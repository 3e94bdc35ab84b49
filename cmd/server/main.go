package main

import (
	"context"
	"flag"
	"time"

	"github.com/ButyrinIA/feedrank/internal/config"
	"github.com/ButyrinIA/feedrank/internal/logger"
	"github.com/ButyrinIA/feedrank/internal/server"
	"github.com/ButyrinIA/feedrank/internal/storage"
	"github.com/ButyrinIA/feedrank/internal/storage/cache"
	"github.com/ButyrinIA/feedrank/internal/storage/memory"
	"github.com/ButyrinIA/feedrank/internal/storage/mongodb"
	"github.com/ButyrinIA/feedrank/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	storageType := flag.String("storage", "", "тип хранилища: memory, postgres или mongo (перекрывает конфигурацию)")
	flag.Parse()

	log := logger.L()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}
	if *storageType != "" {
		cfg.Storage.Type = *storageType
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Некорректная конфигурация: %v", err)
		}
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	var store storage.Storage
	switch cfg.Storage.Type {
	case "postgres":
		log.Info("Инициализация хранилища PostgreSQL")
		store, err = postgres.New(cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("Не удалось инициализировать PostgreSQL: %v", err)
		}
	case "mongo":
		log.Info("Инициализация хранилища MongoDB")
		store, err = mongodb.New(cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			log.Fatalf("Не удалось инициализировать MongoDB: %v", err)
		}
	case "memory":
		log.Info("Инициализация хранилища Memory")
		store = memory.New()
	default:
		log.Fatalf("Неизвестный тип хранилища: %s", cfg.Storage.Type)
	}

	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			log.Warnf("Redis недоступен, счетчики считаются в хранилище: %v", err)
		} else {
			log.Info("Счетчики ленты кэшируются в Redis")
			store = cache.New(store, rdb, cfg.Redis.CountTTL)
		}
	}

	log.Info("Запуск сервера")
	if err := serve(server.New(cfg, store), store); err != nil {
		log.Fatalf("Сервер остановлен с ошибкой: %v", err)
	}
}

type runner interface {
	Run() error
}

// serve закрывает хранилище при любом исходе Run; log.Fatalf не выполняет defer
func serve(srv runner, store storage.Storage) error {
	runErr := srv.Run()
	if err := store.Close(); err != nil {
		logger.L().Warnf("Ошибка при закрытии хранилища: %v", err)
	}
	return runErr
}
