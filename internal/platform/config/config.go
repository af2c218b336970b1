package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// Config carries everything main needs to wire the service.
type Config struct {
	Addr          string
	PostgresURL   string
	RedisURL      string
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string
	PolicyVersion string

	// VaultKey is the AES-256 key for PII encryption, from
	// HAVEN_VAULT_KEY as base64.
	VaultKey []byte
	// PseudonymSalt is the deployment-scoped salt behind HASH_ONLY
	// redaction, from HAVEN_PSEUDONYM_SALT as base64.
	PseudonymSalt []byte
}

// FromEnv builds the config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:          envOr("HAVEN_ADDR", ":8080"),
		PostgresURL:   os.Getenv("HAVEN_POSTGRES_URL"),
		RedisURL:      os.Getenv("HAVEN_REDIS_URL"),
		AuditTopic:    envOr("HAVEN_AUDIT_TOPIC", "haven.audit.compliance"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PolicyVersion: envOr("HAVEN_POLICY_VERSION", "v1"),
	}
	if brokers := os.Getenv("HAVEN_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	var err error
	if cfg.VaultKey, err = keyFromEnv("HAVEN_VAULT_KEY", 32); err != nil {
		return Config{}, err
	}
	if cfg.PseudonymSalt, err = keyFromEnv("HAVEN_PSEUDONYM_SALT", 16); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// keyFromEnv decodes a base64 key and checks its length. Missing keys get
// a deterministic development value; production deployments must set them.
func keyFromEnv(key string, size int) ([]byte, error) {
	raw := os.Getenv(key)
	if raw == "" {
		dev := make([]byte, size)
		copy(dev, "dev-only-key-do-not-use-in-prod")
		return dev, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if len(decoded) != size {
		return nil, fmt.Errorf("%s must decode to %d bytes, got %d", key, size, len(decoded))
	}
	return decoded, nil
}
