// Command devtoken mints a bearer token signed with JWT_SECRET so the API
// can be exercised locally without an identity provider.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"bookreview-backend/internal/config"
	"bookreview-backend/pkg/jwt"
	"bookreview-backend/pkg/logger"
)

func main() {
	uid := flag.String("uid", "", "subject uid")
	email := flag.String("email", "", "email claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	if cfg.App.Environment == "production" {
		log.Fatal().Msg("devtoken refuses to run in production")
	}
	if *uid == "" {
		flag.Usage()
		os.Exit(2)
	}

	token, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer).IssueToken(*uid, *email, true, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to issue token")
	}

	fmt.Println(token)
}
