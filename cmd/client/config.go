package main

type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=localhost:8080"`
	Username      string `env:"CHAT_USERNAME,required=true"`
	Password      string `env:"CHAT_PASSWORD,required=true"`
	HistoryLimit  int    `env:"CHAT_HISTORY_LIMIT,default=20"`
}
