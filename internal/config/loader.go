package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the rotation service.
type Config struct {
	HTTPPort       int
	SQLiteDSN      string
	AdminTokenHash string
	Tenants        []string
	PatternFile    string
	TitleSourceURL string

	PastWeeks           int
	FutureWeeks         int
	MaintenanceInterval time.Duration
	MatchDeadline       time.Duration
	PublishDebounce     time.Duration
	ReferenceZone       *time.Location
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields while validating required
// values, accumulating every missing or invalid entry into one error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:            8080,
		SQLiteDSN:           "file:rotation.db?_foreign_keys=on",
		PastWeeks:           4,
		FutureWeeks:         4,
		MaintenanceInterval: 12 * time.Hour,
		MatchDeadline:       5 * time.Second,
		PublishDebounce:     2 * time.Second,
		ReferenceZone:       time.UTC,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROTATION_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROTATION_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROTATION_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if hash := strings.TrimSpace(os.Getenv("ROTATION_ADMIN_TOKEN_HASH")); hash == "" {
		missing = append(missing, "ROTATION_ADMIN_TOKEN_HASH")
	} else {
		cfg.AdminTokenHash = hash
	}

	if tenants := strings.TrimSpace(os.Getenv("ROTATION_TENANTS")); tenants == "" {
		missing = append(missing, "ROTATION_TENANTS")
	} else {
		for _, tenant := range strings.Split(tenants, ",") {
			if trimmed := strings.TrimSpace(tenant); trimmed != "" {
				cfg.Tenants = append(cfg.Tenants, trimmed)
			}
		}
		if len(cfg.Tenants) == 0 {
			invalid = append(invalid, "ROTATION_TENANTS")
		}
	}

	if path := strings.TrimSpace(os.Getenv("ROTATION_PATTERN_FILE")); path != "" {
		cfg.PatternFile = path
	}

	if url := strings.TrimSpace(os.Getenv("ROTATION_TITLE_SOURCE_URL")); url != "" {
		cfg.TitleSourceURL = url
	}

	if weeksValue := strings.TrimSpace(os.Getenv("ROTATION_PAST_WEEKS")); weeksValue != "" {
		weeks, err := strconv.Atoi(weeksValue)
		if err != nil || weeks <= 0 {
			invalid = append(invalid, "ROTATION_PAST_WEEKS")
		} else {
			cfg.PastWeeks = weeks
		}
	}

	if weeksValue := strings.TrimSpace(os.Getenv("ROTATION_FUTURE_WEEKS")); weeksValue != "" {
		weeks, err := strconv.Atoi(weeksValue)
		if err != nil || weeks <= 0 {
			invalid = append(invalid, "ROTATION_FUTURE_WEEKS")
		} else {
			cfg.FutureWeeks = weeks
		}
	}

	if intervalValue := strings.TrimSpace(os.Getenv("ROTATION_MAINTENANCE_INTERVAL")); intervalValue != "" {
		interval, err := time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "ROTATION_MAINTENANCE_INTERVAL")
		} else {
			cfg.MaintenanceInterval = interval
		}
	}

	if deadlineValue := strings.TrimSpace(os.Getenv("ROTATION_MATCH_DEADLINE")); deadlineValue != "" {
		deadline, err := time.ParseDuration(deadlineValue)
		if err != nil || deadline <= 0 {
			invalid = append(invalid, "ROTATION_MATCH_DEADLINE")
		} else {
			cfg.MatchDeadline = deadline
		}
	}

	if debounceValue := strings.TrimSpace(os.Getenv("ROTATION_PUBLISH_DEBOUNCE")); debounceValue != "" {
		debounce, err := time.ParseDuration(debounceValue)
		if err != nil || debounce <= 0 {
			invalid = append(invalid, "ROTATION_PUBLISH_DEBOUNCE")
		} else {
			cfg.PublishDebounce = debounce
		}
	}

	if zoneValue := strings.TrimSpace(os.Getenv("ROTATION_REFERENCE_TZ")); zoneValue != "" {
		zone, err := time.LoadLocation(zoneValue)
		if err != nil {
			invalid = append(invalid, "ROTATION_REFERENCE_TZ")
		} else {
			cfg.ReferenceZone = zone
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
