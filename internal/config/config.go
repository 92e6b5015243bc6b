package config

import (
	"os"
)

// Config collects everything main wires together. The database location and
// output directory live here, not in the registry or renderer.
type Config struct {
	// Bind stays on loopback: the API only serves the local GUI form.
	Bind        string
	DatabaseURL string
	OutDir      string
	OrderPrefix string
	ShopName    string

	SMSUsername string
	SMSAPIKey   string
	SMSSenderID string
}

func Load() *Config {
	return &Config{
		Bind:        getEnv("BIND", "127.0.0.1:8080"),
		DatabaseURL: getEnv("DATABASE_URL", "compucell.db"),
		OutDir:      getEnv("OUT_DIR", "salidas"),
		OrderPrefix: getEnv("ORDER_PREFIX", "CS"),
		ShopName:    getEnv("SHOP_NAME", "Compucell-Services"),
		SMSUsername: os.Getenv("AFRICAS_TALKING_USERNAME"),
		SMSAPIKey:   os.Getenv("AFRICAS_TALKING_API_KEY"),
		SMSSenderID: os.Getenv("AFRICAS_TALKING_SENDER_ID"),
	}
}

// SMSEnabled reports whether notification credentials were provided.
func (c *Config) SMSEnabled() bool {
	return c.SMSUsername != "" && c.SMSAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
