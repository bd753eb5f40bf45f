// internal/infrastructure/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"farewatch-service/internal/domain/entity"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Routes
	RoutesFile   string
	OriginFilter []string

	// Date matrix
	MinStayDays   int
	MaxStayDays   int
	StayInterval  int
	StartDays     int
	MaxDays       int
	CheckInterval int
	RoundTrip     bool

	// Scheduling
	BatchSize              int
	BatchPause             time.Duration
	SearchPause            time.Duration
	Interval               time.Duration
	MaxConsecutiveFailures int

	// Deal detection
	DiscountThresholdPct float64
	MinDurationHours     float64
	PremiumOnly          bool

	// Price history store
	HistoryDBPath string

	// Scraper collaborator
	ScraperServiceURL string
	ScraperToken      string

	// Deal archive (optional)
	MongoURI string
	MongoDB  string

	// Airport reference data (optional)
	PostgresURI string

	// Gmail notifier (optional)
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	DealSender        string
	DealRecipient     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		RoutesFile:   getEnv("ROUTES_FILE", "routes.json"),
		OriginFilter: splitList(getEnv("ORIGIN_FILTER", "")),

		MinStayDays:   getEnvAsInt("MIN_STAY", 3),
		MaxStayDays:   getEnvAsInt("MAX_STAY", 21),
		StayInterval:  getEnvAsInt("STAY_INTERVAL", 2),
		StartDays:     getEnvAsInt("START_DAYS", 1),
		MaxDays:       getEnvAsInt("MAX_DAYS", 500),
		CheckInterval: getEnvAsInt("CHECK_INTERVAL", 7),
		RoundTrip:     getEnvAsBool("ROUND_TRIP", true),

		BatchSize:              getEnvAsInt("BATCH_SIZE", 10),
		BatchPause:             time.Duration(getEnvAsInt("BATCH_PAUSE", 60)) * time.Second,
		SearchPause:            time.Duration(getEnvAsInt("SEARCH_PAUSE", 3)) * time.Second,
		Interval:               time.Duration(getEnvAsInt("INTERVAL_HOURS", 6)) * time.Hour,
		MaxConsecutiveFailures: getEnvAsInt("MAX_CONSECUTIVE_FAILURES", 5),

		DiscountThresholdPct: getEnvAsFloat("DISCOUNT_THRESHOLD", 35.0),
		MinDurationHours:     getEnvAsFloat("MIN_DURATION_HOURS", 6.0),
		PremiumOnly:          getEnvAsBool("PREMIUM_ONLY", false),

		HistoryDBPath: getEnv("HISTORY_DB_PATH", "farewatch.db"),

		ScraperServiceURL: getEnv("SCRAPER_SERVICE_URL", "http://localhost:9090"),
		ScraperToken:      getEnv("SCRAPER_TOKEN", ""),

		MongoURI: getEnv("MONGODB_DSN", ""),
		MongoDB:  getEnv("MONGO_DB", "farewatch"),

		PostgresURI: getEnv("POSTGRES_URI", ""),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		DealSender:        getEnv("DEAL_SENDER", ""),
		DealRecipient:     getEnv("DEAL_RECIPIENT", ""),
	}

	if config.MinStayDays > config.MaxStayDays {
		return nil, fmt.Errorf("MIN_STAY %d exceeds MAX_STAY %d", config.MinStayDays, config.MaxStayDays)
	}
	if config.StayInterval < 1 || config.CheckInterval < 1 {
		return nil, fmt.Errorf("STAY_INTERVAL and CHECK_INTERVAL must be at least 1")
	}
	if config.BatchSize < 1 {
		return nil, fmt.Errorf("BATCH_SIZE must be at least 1")
	}

	return config, nil
}

// routesDocument matches the {"routes": [...]} file shape; a bare array is
// also accepted.
type routesDocument struct {
	Routes []entity.Route `json:"routes"`
}

// LoadRoutes reads the watched routes from a JSON file
func LoadRoutes(path string) ([]entity.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file %s: %w", path, err)
	}

	var doc routesDocument
	if err := json.Unmarshal(data, &doc); err == nil && len(doc.Routes) > 0 {
		return normalizeRoutes(doc.Routes)
	}

	var routes []entity.Route
	if err := json.Unmarshal(data, &routes); err != nil {
		return nil, fmt.Errorf("failed to parse routes file %s: %w", path, err)
	}

	return normalizeRoutes(routes)
}

func normalizeRoutes(routes []entity.Route) ([]entity.Route, error) {
	for i, route := range routes {
		if route.Origin == "" || route.Destination == "" {
			return nil, fmt.Errorf("route %d is missing origin or destination", i)
		}
		if route.Cabin == "" {
			routes[i].Cabin = entity.CabinEconomy
		}
	}
	return routes, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
