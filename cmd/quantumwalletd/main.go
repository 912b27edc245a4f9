package main

import (
	"log"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/sirupsen/logrus"

	"github.com/quantumshield/quantumwallet/api"
	"github.com/quantumshield/quantumwallet/config"
	"github.com/quantumshield/quantumwallet/internal/wallet"
	"github.com/quantumshield/quantumwallet/storage"
)

func main() {
	cfg, err := config.ReadConfig("config")
	if err != nil {
		log.Fatalf("fail to read config, err: %v", err)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	redisStorage, err := storage.NewRedisStorage(cfg)
	if err != nil {
		log.Fatalf("fail to connect to redis, err: %v", err)
	}
	defer func() {
		if err := redisStorage.Close(); err != nil {
			logrus.WithError(err).Error("fail to close redis storage")
		}
	}()

	blockStorage, err := storage.NewBlockStorage(cfg)
	if err != nil {
		log.Fatalf("fail to initialize block storage, err: %v", err)
	}

	sdClient, err := statsd.New(cfg.Datadog.Host + ":" + cfg.Datadog.Port)
	if err != nil {
		log.Fatalf("fail to create statsd client, err: %v", err)
	}

	manager := wallet.NewManager(wallet.NewSecp256k1Provider())

	server := api.NewServer(cfg, redisStorage, blockStorage, sdClient, manager)
	if err := server.StartServer(); err != nil {
		log.Fatalf("fail to start server, err: %v", err)
	}
}
