package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	StorageGCInterval    time.Duration `env:"STORAGE_GC_INTERVAL,default=5m"`
	TelemetryInterval    time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
}
