package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/speso/speso-backend/internal/domain"
)

// DefaultCategories is the category set used when EXPENSE_CATEGORIES is not set.
var DefaultCategories = []string{"Groceries", "Transport", "Entertainment", "Utilities", "Health"}

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Domain
	CurrencySymbol  string
	Categories      domain.CategorySet
	CategoryBudgets domain.CategoryBudgets

	// CSV import
	ImportAtomic    bool
	ImportRateLimit int // requests per minute, per user
	ImportBurstSize int
}

// Load reads configuration from environment variables. A missing or
// malformed CATEGORY_BUDGETS table is a startup failure: the alert engine
// must never run against a partial or default budget table.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	budgets, err := parseCategoryBudgets(os.Getenv("CATEGORY_BUDGETS"))
	if err != nil {
		return nil, err
	}

	categories := DefaultCategories
	if raw := os.Getenv("EXPENSE_CATEGORIES"); raw != "" {
		categories = strings.Split(raw, ",")
	}

	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		Port:            getEnv("PORT", "8080"),
		CORSOrigins:     strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:             getEnv("ENV", "development"),
		CurrencySymbol:  getEnv("CURRENCY_SYMBOL", "€"),
		Categories:      domain.NewCategorySet(categories),
		CategoryBudgets: budgets,
		ImportAtomic:    getEnvBool("IMPORT_ATOMIC", false),
		ImportRateLimit: getEnvInt("IMPORT_RATE_LIMIT", 10),
		ImportBurstSize: getEnvInt("IMPORT_BURST_SIZE", 3),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Categories.Len() == 0 {
		return fmt.Errorf("EXPENSE_CATEGORIES must name at least one category")
	}
	return nil
}

// parseCategoryBudgets decodes the CATEGORY_BUDGETS env variable, a JSON
// object mapping category name to a positive decimal ceiling, e.g.
// {"Groceries": 300, "Transport": 150.50}.
func parseCategoryBudgets(raw string) (domain.CategoryBudgets, error) {
	if raw == "" {
		return nil, fmt.Errorf("CATEGORY_BUDGETS is required")
	}

	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()

	var decoded map[string]json.Number
	if err := decoder.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("CATEGORY_BUDGETS is not a valid JSON object: %w", err)
	}

	budgets := make(domain.CategoryBudgets, len(decoded))
	for category, number := range decoded {
		d, err := decimal.NewFromString(number.String())
		if err != nil {
			return nil, fmt.Errorf("CATEGORY_BUDGETS: invalid amount for %q: %w", category, err)
		}
		ceiling := domain.FromDecimal(d)
		if !ceiling.IsPositive() {
			return nil, fmt.Errorf("CATEGORY_BUDGETS: ceiling for %q must be positive", category)
		}
		budgets[category] = ceiling
	}

	return budgets, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
