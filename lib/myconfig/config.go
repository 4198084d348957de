package myconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port                string `yaml:"port"`
	BaseURL             string `yaml:"baseUrl"`
	Currency            string `yaml:"currency"`
	StripeAPIKey        string `yaml:"stripeApiKey"`
	StripeWebhookSecret string `yaml:"stripeWebhookSecret"`
	SessionSecret       string `yaml:"sessionSecret"`
	AdminUsername       string `yaml:"adminUsername"`
	AdminPassword       string `yaml:"adminPassword"`
	DatabaseURL         string `yaml:"databaseUrl"`
	GoogleCloudProject  string `yaml:"googleCloudProject"`
	LocationID          string `yaml:"locationId"`
	QueueName           string `yaml:"queueName"`
}

func defaults() Config {
	return Config{
		Port:      "8080",
		Currency:  "eur",
		QueueName: "default",
	}
}

// Load reads the optional yaml-file referred to by CONFIG_FILE and lets the environment override it.
func Load() (Config, error) {
	cfg := defaults()

	filename := os.Getenv("CONFIG_FILE")
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return cfg, fmt.Errorf("error reading config file %s: %s", filename, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return cfg, fmt.Errorf("error parsing config file %s: %s", filename, err)
		}
	}

	applyEnv(&cfg, os.LookupEnv)

	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := defaults()
	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	for name, field := range map[string]*string{
		"PORT":                  &cfg.Port,
		"BASE_URL":              &cfg.BaseURL,
		"CURRENCY":              &cfg.Currency,
		"STRIPE_API_KEY":        &cfg.StripeAPIKey,
		"STRIPE_WEBHOOK_SECRET": &cfg.StripeWebhookSecret,
		"SESSION_SECRET":        &cfg.SessionSecret,
		"ADMIN_USERNAME":        &cfg.AdminUsername,
		"ADMIN_PASSWORD":        &cfg.AdminPassword,
		"DATABASE_URL":          &cfg.DatabaseURL,
		"GOOGLE_CLOUD_PROJECT":  &cfg.GoogleCloudProject,
		"LOCATION_ID":           &cfg.LocationID,
		"QUEUE_NAME":            &cfg.QueueName,
	} {
		value, found := lookup(name)
		if found && value != "" {
			*field = value
		}
	}
}
