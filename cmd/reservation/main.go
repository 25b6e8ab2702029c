package main

import (
	stdLog "log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/Astemirdum/equipment-reservation/reservation/app"
	"github.com/Astemirdum/equipment-reservation/reservation/config"
)

//go:generate swag init -g main.go -d ./,../../reservation/internal/handler -o ../../swagger --outputTypes go --parseDependency --parseInternal

//	@title			Equipment reservation API
//	@version		1.0
//	@description	Booking of shared school equipment with automatic conflict detection.
//	@BasePath		/api/v1

// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("no .env file, using process environment")
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	if err := app.Run(cfg); err != nil {
		stdLog.Fatal(err)
	}
}
