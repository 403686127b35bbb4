/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config carries everything the bot needs at startup. Values come from the
// environment, optionally seeded from a .env file in the working
// directory.
type Config struct {
	DiscordToken string

	// guild acting as the home clan plus its pug channel
	HomeGuildID  string
	PugChannelID string

	// guild role ids mapped to clan ranks
	MemberRoleID  string
	OfficerRoleID string
	OwnerRoleID   string

	// "host:port,rconpw;host:port,rconpw" inventory for the server pool
	ServerPool string

	// optional panel page scraped to skip occupied servers
	ServerStatusURL string

	// S3 bucket for match history and the scraper's HTTP cache; empty
	// disables both
	HistoryBucket string

	VoteDuration int64
	LogLevel     string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DiscordToken:    getEnv("DISCORD_TOKEN", ""),
		HomeGuildID:     getEnv("HOME_GUILD_ID", ""),
		PugChannelID:    getEnv("PUG_CHANNEL_ID", ""),
		MemberRoleID:    getEnv("MEMBER_ROLE_ID", ""),
		OfficerRoleID:   getEnv("OFFICER_ROLE_ID", ""),
		OwnerRoleID:     getEnv("OWNER_ROLE_ID", ""),
		ServerPool:      getEnv("SERVER_POOL", ""),
		ServerStatusURL: getEnv("SERVER_STATUS_URL", ""),
		HistoryBucket:   getEnv("HISTORY_BUCKET", ""),
		VoteDuration:    getEnvInt64("VOTE_DURATION", 60),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.HomeGuildID == "" || cfg.PugChannelID == "" {
		return nil, fmt.Errorf("HOME_GUILD_ID and PUG_CHANNEL_ID are required")
	}
	if cfg.ServerPool == "" {
		return nil, fmt.Errorf("SERVER_POOL is required")
	}

	logger.Info().
		Str("home_guild", cfg.HomeGuildID).
		Str("pug_channel", cfg.PugChannelID).
		Int64("vote_duration", cfg.VoteDuration).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
