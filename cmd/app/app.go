package main

import (
	"os"

	"github.com/DRSN-tech/onlinestore/internal/app"
	config "github.com/DRSN-tech/onlinestore/internal/cfg"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
)

// @title						Online Store API
// @version					1.0
// @description				Каталог товаров, корзина и аутентификация пользователей.
// @BasePath					/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	bootLog := logger.NewSlogLogger()

	cfg, err := config.Load(bootLog)
	if err != nil {
		bootLog.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Format, cfg.Log.Level)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
