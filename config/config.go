package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	Billing    BillingConfig
	Credential CredentialConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type BillingConfig struct {
	SweepInterval     time.Duration
	ChargeSuccessRate float64
}

type CredentialConfig struct {
	SigningSecret string
	TTL           time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	sweepInterval, err := time.ParseDuration(viper.GetString("BILLING_SWEEP_INTERVAL"))
	if err != nil {
		// Production default is monthly; development deployments override
		// with shorter intervals such as 6h.
		sweepInterval = 30 * 24 * time.Hour
	}

	chargeSuccessRate := viper.GetFloat64("BILLING_CHARGE_SUCCESS_RATE")
	if chargeSuccessRate <= 0 || chargeSuccessRate > 1 {
		chargeSuccessRate = 0.9
	}

	credentialTTL, err := time.ParseDuration(viper.GetString("CREDENTIAL_TTL"))
	if err != nil {
		credentialTTL = 365 * 24 * time.Hour
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Billing: BillingConfig{
			SweepInterval:     sweepInterval,
			ChargeSuccessRate: chargeSuccessRate,
		},
		Credential: CredentialConfig{
			SigningSecret: viper.GetString("CREDENTIAL_SIGNING_SECRET"),
			TTL:           credentialTTL,
		},
	}

	return config, nil
}
