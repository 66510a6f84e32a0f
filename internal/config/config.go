package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	APIPort  int `yaml:"apiPort"`
	Database struct {
		Driver     string `yaml:"driver"` // "sqlite" or "postgres"
		Path       string `yaml:"path"`   // sqlite file path
		DSN        string `yaml:"dsn"`    // postgres connection string
		WALMode    bool   `yaml:"walMode"`
		MaxRetries int    `yaml:"maxRetries"`
		RetryDelay int    `yaml:"retryDelay"`
	} `yaml:"database"`
	KVStore struct {
		Backend   string `yaml:"backend"` // "sql" or "redis"
		RedisAddr string `yaml:"redisAddr"`
		RedisDB   int    `yaml:"redisDB"`
	} `yaml:"kvstore"`
	Auth struct {
		JWTSecret    string `yaml:"jwtSecret"`
		SessionHours int    `yaml:"sessionHours"`
	} `yaml:"auth"`
	Family struct {
		AutoProvision bool `yaml:"autoProvision"`
	} `yaml:"family"`
	Demo struct {
		TrialDays     int `yaml:"trialDays"`
		CheckInterval int `yaml:"checkInterval"` // seconds
	} `yaml:"demo"`
	Reports struct {
		Timezone string `yaml:"timezone"` // IANA zone for day bucketing
	} `yaml:"reports"`
	Archive struct {
		Enabled         bool   `yaml:"enabled"`
		Endpoint        string `yaml:"endpoint"`
		Region          string `yaml:"region"`
		Bucket          string `yaml:"bucket"`
		AccessKeyID     string `yaml:"accessKeyId"`
		SecretAccessKey string `yaml:"secretAccessKey"`
	} `yaml:"archive"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "json" or "console"
	} `yaml:"logging"`
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvPrefix("BEDSIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Printf("Warning: Could not read config file: %s. Using defaults or environment variables.", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.APIPort == 0 {
		cfg.APIPort = 8081
		log.Println("APIPort not specified, using default 8081")
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "/data/bedside.db"
		log.Println("Database path not specified, using default /data/bedside.db")
	}
	if !v.IsSet("database.walMode") {
		cfg.Database.WALMode = true
	}
	if cfg.Database.MaxRetries == 0 {
		cfg.Database.MaxRetries = 5
	}
	if cfg.Database.RetryDelay == 0 {
		cfg.Database.RetryDelay = 5
	}

	if cfg.KVStore.Backend == "" {
		cfg.KVStore.Backend = "sql"
	}
	if cfg.KVStore.RedisAddr == "" {
		cfg.KVStore.RedisAddr = "localhost:6379"
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "bedside-dev-secret"
		log.Println("Auth JWT secret not specified, using insecure development default")
	}
	if cfg.Auth.SessionHours == 0 {
		cfg.Auth.SessionHours = 24
	}

	// Default on: a stale family link mints a replacement token instead of
	// hard-failing the visit. Operators can turn this off.
	if !v.IsSet("family.autoProvision") {
		cfg.Family.AutoProvision = true
	}

	if cfg.Demo.TrialDays == 0 {
		cfg.Demo.TrialDays = 7
	}
	if cfg.Demo.CheckInterval == 0 {
		cfg.Demo.CheckInterval = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	log.Printf("Configuration loaded: port=%d driver=%s kvstore=%s", cfg.APIPort, cfg.Database.Driver, cfg.KVStore.Backend)
	return &cfg, nil
}
