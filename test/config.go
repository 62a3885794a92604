package test

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_TEST_DEBUG dumps every received frame for troubleshooting
	Debug bool `envconfig:"CHAT_TEST_DEBUG" default:"false"`
	// CHAT_TEST_READ_TIMEOUT bounds each wait for an expected event
	ReadTimeout time.Duration `envconfig:"CHAT_TEST_READ_TIMEOUT" default:"3s"`
	// CHAT_TEST_CONN_BUFFER sizes the per-connection outbound buffer
	ConnectionBuffer int `envconfig:"CHAT_TEST_CONN_BUFFER" default:"64"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
