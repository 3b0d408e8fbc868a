package config

import (
	"context"
	"net/url"
	"os"

	"github.com/sirupsen/logrus"
)

// lambdaSQLitePath is the only writable location inside a Lambda sandbox
const lambdaSQLitePath = "/tmp/events.db"

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	IsLambda     bool
	FunctionName string
	Region       string
	Stage        string
}

// GetServerlessConfig returns the serverless configuration
func GetServerlessConfig() *ServerlessConfig {
	return &ServerlessConfig{
		IsLambda:     isRunningInLambda(),
		FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		Region:       os.Getenv("AWS_REGION"),
		Stage:        GetEnv("STAGE", "dev"),
	}
}

// isRunningInLambda detects if the application is running in AWS Lambda
func isRunningInLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// IsServerlessMode returns true if running in serverless mode
func IsServerlessMode() bool {
	return GetServerlessConfig().IsLambda
}

// GetDeploymentMode returns the current deployment mode
func GetDeploymentMode() string {
	if IsServerlessMode() {
		return "serverless"
	}
	return "server"
}

// AdaptConfigForServerless modifies configuration for serverless deployment
func AdaptConfigForServerless(ctx context.Context, config *Config, logger *logrus.Logger) *Config {
	if !IsServerlessMode() {
		return config
	}

	switch config.Database.Driver {
	case "sqlite":
		if config.Database.Path == DefaultSQLitePath {
			config.Database.Path = lambdaSQLitePath
		}
	case "postgres":
		if config.Database.URL == "" && config.Infra.DatabaseHost != "" {
			config.Database.URL = buildRDSConnectionString(config.Infra)
			if config.Infra.DatabaseSecretARN != "" && os.Getenv("DATABASE_USER") == "" {
				logger.WithField("secret_arn", config.Infra.DatabaseSecretARN).
					Warn("DATABASE_SECRET_ARN is not resolved; set DATABASE_USER and DATABASE_PASSWORD")
			}
		}
	case "memory":
		if config.Infra.DatabaseHost != "" {
			logger.WithFields(logrus.Fields{
				"database_host": config.Infra.DatabaseHost,
				"database_name": config.Infra.DatabaseName,
			}).Warn("DATABASE_HOST is set but DB_DRIVER=memory; the database is ignored")
		}
	}

	logIdentityProvider(config, logger)

	return config
}

// logIdentityProvider reports how a deployed user pool relates to the
// token verification this service actually performs
func logIdentityProvider(config *Config, logger *logrus.Logger) {
	if config.Infra.UserPoolID == "" {
		return
	}

	entry := logger.WithFields(logrus.Fields{
		"user_pool_id": config.Infra.UserPoolID,
		"client_id":    config.Infra.ClientID,
	})
	if !config.Auth.Enabled {
		entry.Warn("USER_POOL_ID is set but AUTH_ENABLED is false; requests are not authenticated")
		return
	}
	entry.Info("Bearer tokens are verified with JWT_SECRET; the user pool is not consulted")
}

// buildRDSConnectionString constructs a postgres URL from the deployment
// descriptor. Credentials come from DATABASE_USER and DATABASE_PASSWORD.
func buildRDSConnectionString(infra InfraConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     infra.DatabaseHost + ":" + GetEnv("DATABASE_PORT", "5432"),
		Path:     "/" + GetEnv("DATABASE_NAME", infra.DatabaseName),
		RawQuery: "sslmode=require",
	}
	if user := os.Getenv("DATABASE_USER"); user != "" {
		u.User = url.UserPassword(user, os.Getenv("DATABASE_PASSWORD"))
	}
	return u.String()
}

// GetOptimizedConfig returns configuration optimized for the current deployment mode
func GetOptimizedConfig() (*Config, *logrus.Logger, error) {
	config, err := Load()
	if err != nil {
		return nil, nil, err
	}

	logger := NewLogger(config.Log)

	// Apply serverless adaptations if needed
	config = AdaptConfigForServerless(context.Background(), config, logger)

	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	logger.WithFields(logrus.Fields{
		"environment":     config.Environment,
		"deployment_mode": GetDeploymentMode(),
		"store":           config.Database.Driver,
		"auth_enabled":    config.Auth.Enabled,
	}).Info("Configuration loaded")

	return config, logger, nil
}
