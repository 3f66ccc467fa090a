package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          string
	JWTSecret     string
	MigrationsDir string
	FabricConfig  string
	MSP           string
	CertPath      string
	KeyPath       string
	DB            DBConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8084"),
		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-me"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations/pool"),
		FabricConfig:  getEnv("FABRIC_CONFIG", ""),
		MSP:           getEnv("MSP_ID", "PoolConsortiumMSP"),
		CertPath:      getEnv("CERT_PATH", ""),
		KeyPath:       getEnv("KEY_PATH", ""),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "insurancepool"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}
