package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// LLM backend
	viper.SetDefault("endpoint", "https://api.openai.com")
	viper.SetDefault("model", "gpt-4o-mini")
	viper.SetDefault("api_key", "")
	viper.SetDefault("llm.request_timeout", 90*time.Second)
	viper.SetDefault("llm.max_tool_rounds", 4)

	// Access control
	viper.SetDefault("admin_id", int64(33230000))

	// User store: memory, file or sqlite
	viper.SetDefault("store.backend", "memory")
	viper.SetDefault("store.file_path", "data/users.json")
	viper.SetDefault("store.sqlite_dsn", "data/users.db")

	// Ethics filter
	viper.SetDefault("ethics.patterns_file", "")

	// Price feed
	viper.SetDefault("pricefeed.base_url", "https://api.binance.com")
	viper.SetDefault("pricefeed.timeout", 10*time.Second)

	// Telegram
	viper.SetDefault("telegram.bot_token", "")

	// Web server
	viper.SetDefault("server.bind", "127.0.0.1")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.public_url", "")
	viper.SetDefault("server.web_tier", "Bronze")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
}
