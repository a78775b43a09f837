package main

import (
	"os"

	"pesagate/api/internal/app"
	"pesagate/api/internal/config"
	"pesagate/api/internal/infra/postgres"
	"pesagate/api/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load(os.Getenv("ENVPATH"))
	if err != nil {
		panic("Can't load .env file: " + err.Error())
	}

	config := config.ReadConfig()
	config.DB = postgres.Init(config)

	unixLogger := logger.Init(config)

	app := &app.App{
		Config: config,
		Db:     config.DB,
		Log:    unixLogger,
	}

	app.Start()
}
