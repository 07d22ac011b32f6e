package config

import (
	"log"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/sirupsen/logrus"
)

var Config = struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Host        string `env:"HOST" envDefault:"127.0.0.1"`
	Port        int    `env:"PORT" envDefault:"8000"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9103"`

	// Web credentials: the single username/password pair allowed to log in.
	Username string `env:"USERNAME,required"`
	Password string `env:"PASSWORD,required"`

	// Token signing settings
	SecretKey string `env:"SECRET_KEY,required"`
	TokenTTL  int    `env:"TOKEN_TTL" envDefault:"30"` // minutes

	// Backend engine addresses
	ReqAddress     string `env:"REQ_ADDRESS" envDefault:"redis://127.0.0.1:6379/0"`
	SubAddress     string `env:"SUB_ADDRESS" envDefault:"redis://127.0.0.1:6379/0"`
	RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"5"` // seconds

	// Other settings
	HeartbeatInterval  int      `env:"HEARTBEAT_INTERVAL" envDefault:"10"` // seconds
	RPSLimit           int      `env:"RPS_LIMIT" envDefault:"1"`
	ConnectionsLimit   int      `env:"CONNECTIONS_LIMIT" envDefault:"50"`
	TrustedProxyRanges []string `env:"TRUSTED_PROXY_RANGES" envDefault:"0.0.0.0/0"`
	EventBufferSize    int      `env:"EVENT_BUFFER_SIZE" envDefault:"256"`
	SendBufferSize     int      `env:"SEND_BUFFER_SIZE" envDefault:"64"`
}{}

func LoadConfig() {
	if err := env.Parse(&Config); err != nil {
		log.Fatalf("config parsing failed: %v\n", err)
	}

	level, err := logrus.ParseLevel(strings.ToLower(Config.LogLevel))
	if err != nil {
		log.Printf("Invalid LOG_LEVEL '%s', using default 'info'. Valid levels: panic, fatal, error, warn, info, debug, trace", Config.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
