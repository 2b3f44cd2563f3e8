// Command token prints a signed bearer token for the configured issuer and
// secret. It is meant for local development and operator scripts.
//
// Flags:
//
//	--subject  token subject (required)
//	--name     display name recorded in audit fields
//	--ttl      token lifetime (default 1h)
//	--config   YAML config file (default $CONFIG_PATH)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/heartmarshall/erp-backend/internal/auth"
	"github.com/heartmarshall/erp-backend/internal/config"
)

func main() {
	subject := flag.String("subject", "", "token subject (required)")
	name := flag.String("name", "", "display name recorded in audit fields")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "YAML config file")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer).
		GenerateAccessToken(*subject, *name, *ttl)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(token)
}
