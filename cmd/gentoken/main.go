// cmd/gentoken prints a signed access token for an owner.
// Usage: JWT_SECRET=... go run ./cmd/gentoken -owner <uuid> [-role admin] [-ttl 24h]
// The default lifetime comes from JWT_EXPIRATION_HOURS.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/JonathanM-A/costmate/internal/middleware"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	viper.AutomaticEnv()
	viper.SetDefault("JWT_EXPIRATION_HOURS", 24)

	ownerFlag := flag.String("owner", "", "owner uuid; a new one is generated when empty")
	role := flag.String("role", middleware.RoleOwner, "token role: owner or admin")
	ttl := flag.Duration("ttl", time.Duration(viper.GetInt("JWT_EXPIRATION_HOURS"))*time.Hour, "token lifetime")
	flag.Parse()

	secret := viper.GetString("JWT_SECRET")
	if secret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	owner := uuid.New()
	if *ownerFlag != "" {
		var err error
		if owner, err = uuid.Parse(*ownerFlag); err != nil {
			log.Fatal().Err(err).Msg("invalid -owner")
		}
	}
	if *role != middleware.RoleOwner && *role != middleware.RoleAdmin {
		log.Fatal().Str("role", *role).Msg("role must be owner or admin")
	}

	tok, err := middleware.IssueToken(secret, owner, *role, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}
	log.Info().Str("owner_id", owner.String()).Str("role", *role).Dur("ttl", *ttl).Msg("token issued")
	fmt.Println(tok)
}
