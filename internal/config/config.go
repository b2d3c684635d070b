package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// SeedAccount is a pre-provisioned demo account from the config file
type SeedAccount struct {
	Email       string `mapstructure:"email"`
	Secret      string `mapstructure:"secret"`
	DisplayName string `mapstructure:"displayName"`
	Role        string `mapstructure:"role"`
	UsageCount  int    `mapstructure:"usageCount"`
}

type Config struct {
	GatewayPort int `mapstructure:"gatewayPort"`
	Responder   struct {
		URL                string `mapstructure:"url"`
		TimeoutSeconds     int    `mapstructure:"timeoutSeconds"`
		SimulatedLatencyMs int    `mapstructure:"simulatedLatencyMs"`
	} `mapstructure:"responder"`
	Auth struct {
		TokenSecret        string `mapstructure:"tokenSecret"`
		SimulatedLatencyMs int    `mapstructure:"simulatedLatencyMs"`
	} `mapstructure:"auth"`
	State struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"state"`
	Upstream struct {
		URL   string `mapstructure:"url"`
		Token string `mapstructure:"token"`
	} `mapstructure:"upstream"`
	SeedAccounts []SeedAccount `mapstructure:"seedAccounts"`
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Could not read config file: %s. Using defaults or environment variables.", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GatewayPort == 0 {
		cfg.GatewayPort = 8081
		log.Println("gatewayPort not specified, using default 8081")
	}

	if cfg.Responder.TimeoutSeconds == 0 {
		cfg.Responder.TimeoutSeconds = 30
	}

	if cfg.Auth.TokenSecret == "" {
		cfg.Auth.TokenSecret = "dev-only-insecure-secret"
		log.Println("auth.tokenSecret not specified, using insecure development default")
	}
	if cfg.Auth.SimulatedLatencyMs == 0 {
		cfg.Auth.SimulatedLatencyMs = 1000
	}

	if cfg.State.Path == "" {
		cfg.State.Path = "assistant-state.db"
		log.Println("state.path not specified, using default assistant-state.db")
	}

	if len(cfg.SeedAccounts) == 0 {
		cfg.SeedAccounts = defaultSeedAccounts()
		log.Println("No seed accounts specified, provisioning demo accounts")
	}

	return &cfg, nil
}

// defaultSeedAccounts mirrors the demo accounts the product ships with
func defaultSeedAccounts() []SeedAccount {
	return []SeedAccount{
		{Email: "admin@example.com", Secret: "admin123", DisplayName: "Admin User", Role: "admin"},
		{Email: "explorer@example.com", Secret: "explorer123", DisplayName: "Explorer User", Role: "explorer", UsageCount: 2},
		{Email: "pro@example.com", Secret: "pro123", DisplayName: "Pro User", Role: "pro", UsageCount: 15},
	}
}
