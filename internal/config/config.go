package config

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// DefaultContractID is the allowance contract deployed on Stellar Testnet.
// Configuration value only, not behaviorally load-bearing.
const DefaultContractID = "CCQ3U57MVPIEQDUP2UFRVDY3LP5TQDJ4HJ2VE7ZJ6QWK7DAN6RBEJAEL"

type Config struct {
	ContractID      string `env:"CONTRACT_ID,default=CCQ3U57MVPIEQDUP2UFRVDY3LP5TQDJ4HJ2VE7ZJ6QWK7DAN6RBEJAEL"`
	WalletBridgeURL string `env:"WALLET_BRIDGE_URL,default=http://localhost:8718"`
	APIKEY          string `env:"API_KEY"`
	SentryURL       string `env:"SENTRY_URL"`
	DiscordURL      string `env:"DISCORD_URL"`

	DBDriver   string `env:"DB_DRIVER,default=sqlite"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBHost     string `env:"DB_HOST"`
}

func New(ctx context.Context, envpath string) (*Config, error) {
	if envpath != "" {
		log.Default().Println("loading env from file: ", envpath)
		err := godotenv.Load(envpath)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := envconfig.Process(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
