package main

import (
	"gitlab.com/qianyu.zhou/addressbook-service/internal/config"
	"gitlab.com/qianyu.zhou/addressbook-service/internal/manager"
	"gitlab.com/qianyu.zhou/addressbook-service/internal/service"
	"gitlab.com/qianyu.zhou/addressbook-service/internal/store"
	"gitlab.com/qianyu.zhou/addressbook-service/pkg/logger"
)

// Usage example on the command line:
// > PORT=8080 DBHOST=localhost:3306 DBUSER=dirk DBPWD=secret GIN_MODE=release go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.Init(cfg.ServiceName, cfg.Environment)
	defer log.Sync()

	sqlDB, err := store.Open(cfg.DSN())
	if err != nil {
		log.Fatalw("cannot open database", "error", err)
	}
	contactStore, err := store.New(sqlDB)
	if err != nil {
		log.Fatalw("cannot initialize store", "error", err)
	}
	defer contactStore.Close()

	mgr := manager.New(contactStore, log)
	handler := service.New(mgr, log)
	router := handler.SetupHttpRouter(cfg.GinLogging)

	log.Infow("starting addressbook service", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
