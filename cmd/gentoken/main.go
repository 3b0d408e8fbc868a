package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"events-api/internal/config"
	"events-api/internal/middleware"
)

// gentoken prints a bearer token accepted by the events API when
// AUTH_ENABLED is set. It signs with the same JWT_SECRET and JWT_ISSUER.
func main() {
	var (
		subject = flag.String("sub", "demo-user", "Token subject")
		email   = flag.String("email", "demo@example.com", "Email claim, used as the signup participant")
		hours   = flag.Int("hours", config.GetEnvAsInt("JWT_EXPIRY_HOURS", 24), "Token lifetime in hours")
	)
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	verifier := middleware.NewJWTVerifier(&middleware.AuthConfig{
		JWTSecret:     secret,
		TokenDuration: time.Duration(*hours) * time.Hour,
		Issuer:        config.GetEnv("JWT_ISSUER", "events-api"),
	})

	token, err := verifier.GenerateToken(*subject, *email)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to generate token")
	}

	fmt.Println(token)
}
