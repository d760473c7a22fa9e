package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	CORS   CORSConfig
	Logger LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DBConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// AuthConfig groups everything the identity component needs: the JWT signing
// material, both OAuth apps, and where to send the browser afterwards.
type AuthConfig struct {
	JWT          JWTConfig
	GitHub       OAuthClientConfig
	Google       OAuthClientConfig
	FrontendURL  string
	StateTTL     time.Duration
	OAuthTimeout time.Duration
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
}

type OAuthClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type CORSConfig struct {
	Origins []string
}

type LoggerConfig struct {
	Level string
	Env   string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional when everything comes from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
			IdleTimeout:  viper.GetDuration("server.idle_timeout") * time.Second,
		},
		DB: DBConfig{
			Host:         viper.GetString("db.host"),
			Port:         viper.GetInt("db.port"),
			User:         viper.GetString("db.user"),
			Password:     viper.GetString("db.password"),
			DBName:       viper.GetString("db.name"),
			SSLMode:      viper.GetString("db.sslmode"),
			MaxOpenConns: viper.GetInt("db.max_open_conns"),
			MaxIdleConns: viper.GetInt("db.max_idle_conns"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				SecretKey:      viper.GetString("auth.jwt.secret_key"),
				AccessTokenTTL: viper.GetDuration("auth.jwt.access_token_ttl"),
			},
			GitHub: OAuthClientConfig{
				ClientID:     viper.GetString("auth.github.client_id"),
				ClientSecret: viper.GetString("auth.github.client_secret"),
				RedirectURL:  viper.GetString("auth.github.redirect_url"),
			},
			Google: OAuthClientConfig{
				ClientID:     viper.GetString("auth.google.client_id"),
				ClientSecret: viper.GetString("auth.google.client_secret"),
				RedirectURL:  viper.GetString("auth.google.redirect_url"),
			},
			FrontendURL:  viper.GetString("auth.frontend_url"),
			StateTTL:     viper.GetDuration("auth.state_ttl"),
			OAuthTimeout: viper.GetDuration("auth.oauth_timeout"),
		},
		CORS: CORSConfig{
			Origins: viper.GetStringSlice("cors.origins"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	if config.Auth.JWT.SecretKey == "" {
		return nil, fmt.Errorf("auth.jwt.secret_key is not configured")
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("server.idle_timeout", 20)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.user", "hiraya-admin")
	viper.SetDefault("db.name", "hiraya-db")
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("db.max_open_conns", 25)
	viper.SetDefault("db.max_idle_conns", 5)

	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("auth.jwt.access_token_ttl", 24*time.Hour)
	viper.SetDefault("auth.frontend_url", "http://localhost:3000")
	viper.SetDefault("auth.state_ttl", 10*time.Minute)
	viper.SetDefault("auth.oauth_timeout", 10*time.Second)

	viper.SetDefault("cors.origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
}

// GetDSN builds the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}
