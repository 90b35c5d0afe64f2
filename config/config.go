package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Auth struct {
		JWTSecret   string        `mapstructure:"jwtSecret"`
		TokenExpiry time.Duration `mapstructure:"tokenExpiry"`
	} `mapstructure:"auth"`
	AI      AIConfig      `mapstructure:"ai"`
	Weather WeatherConfig `mapstructure:"weather"`
}

// AIConfig selects and configures the chat-completion provider.
type AIConfig struct {
	Provider   string `mapstructure:"provider"` // "openrouter" or "gemini"
	OpenRouter struct {
		BaseURL   string        `mapstructure:"baseURL"`
		APIKey    string        `mapstructure:"apiKey"`
		Model     string        `mapstructure:"model"`
		MaxTokens int           `mapstructure:"maxTokens"`
		Timeout   time.Duration `mapstructure:"timeout"`
		SiteURL   string        `mapstructure:"siteURL"`
		SiteName  string        `mapstructure:"siteName"`
	} `mapstructure:"openrouter"`
	Gemini struct {
		APIKey string `mapstructure:"apiKey"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`
}

type WeatherConfig struct {
	GeocodeBaseURL  string        `mapstructure:"geocodeBaseURL"`
	GeocodeAPIKey   string        `mapstructure:"geocodeApiKey"`
	ForecastBaseURL string        `mapstructure:"forecastBaseURL"`
	ForecastAPIKey  string        `mapstructure:"forecastApiKey"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Secrets always come from the environment, never from the YAML file.
	v.AutomaticEnv()
	bindings := map[string]string{
		"ai.openrouter.apiKey":           "OPENROUTER_API_KEY",
		"ai.openrouter.model":            "OPENROUTER_CHAT_MODEL",
		"ai.gemini.apiKey":               "GOOGLE_GEMINI_API_KEY",
		"weather.geocodeApiKey":          "GEOCODE_API_KEY",
		"weather.forecastApiKey":         "OWM_API_KEY",
		"auth.jwtSecret":                 "JWT_SECRET_KEY",
		"repositories.postgres.password": "POSTGRES_PASSWORD",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind env var %s: %s", env, err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
