package main

import (
	"flag"

	"github.com/danmuck/d7alp/internal/config"
	"github.com/danmuck/d7alp/internal/observability"
	"github.com/danmuck/d7alp/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "service config path (defaults built in when empty)")
	flag.Parse()

	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := config.DefaultServiceConfig()
	if *configPath != "" {
		loaded, err := config.LoadServiceConfig(*configPath)
		if err != nil {
			observability.InitLogger("alpd", false)
			log.Fatal().Err(err).Msg("failed to load alpd config")
		}
		cfg = loaded
	}
	observability.InitLogger(cfg.Name, cfg.LogJSON)
	if *configPath != "" {
		log.Info().Str("path", *configPath).Msg("loaded alpd config")
	}

	gin.SetMode(gin.ReleaseMode)
	svc := server.Appear(cfg)
	if err := svc.Serve(); err != nil {
		log.Fatal().Err(err).Msg("alpd stopped")
	}
}
