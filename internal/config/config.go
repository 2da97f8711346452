package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP (optional; empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Report letterhead and footer
	ChurchName    string
	ChurchAddress string
	ReportFooter  string

	// Listing
	DefaultPageSize int

	// Export mirror worker
	ExportDir    string
	SyncInterval time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/dizimo.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "dizimo"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "contribution_events"),

		ChurchName:    getEnv("CHURCH_NAME", "Igreja"),
		ChurchAddress: getEnv("CHURCH_ADDRESS", ""),
		ReportFooter: getEnv("REPORT_FOOTER",
			"Documento confidencial - uso exclusivo da tesouraria"),

		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 20),

		ExportDir:    getEnv("EXPORT_DIR", "./exports"),
		SyncInterval: getEnvDuration("SYNC_INTERVAL", 15*time.Minute),
	}
}

// Validate checks the configuration, collecting every problem into one error.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if strings.TrimSpace(c.ChurchName) == "" {
		problems = append(problems, "church name cannot be empty")
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > 500 {
		problems = append(problems, fmt.Sprintf("invalid default page size %d: must be between 1 and 500", c.DefaultPageSize))
	}
	if c.SyncInterval < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid sync interval %s: must be at least 1 minute", c.SyncInterval))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
