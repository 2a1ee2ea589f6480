// migrate aplica o revierte el esquema embebido de facturas contra la base configurada.
//
// Uso: go run ./cmd/migrate [up|down]
// Por defecto aplica "up". La conexión se toma de DATABASE_URL o de DB_HOST, DB_PORT, etc.
package main

import (
	"os"

	"github.com/jhoicas/Facturas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Facturas-api/pkg/config"
	"github.com/jhoicas/Facturas-api/pkg/logger"
)

func main() {
	direction := postgres.MigrateUp
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if err := postgres.RunMigrations(cfg.DB.ConnectionString(), direction); err != nil {
		log.Fatal().Err(err).Str("direction", direction).Msg("migraciones")
	}
	log.Info().Str("direction", direction).Msg("migraciones completadas")
}
