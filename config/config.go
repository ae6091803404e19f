package config

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yeremiapane/tableorder/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const devJWTSecret = "tableorder-dev-secret"

type Config struct {
	Port             string
	GinMode          string
	DBDriver         string
	DBDSN            string
	JWTSecret        string
	TableTokenSecret string
	WaiterSessionTTL time.Duration
	StaffSessionTTL  time.Duration
	LoginRate        float64
	LoginBurst       int
	CORSOrigins      []string
	PublicBaseURL    string
	LogLevel         string
	BcryptCost       int
	PINLookupKey     string
}

// Load reads .env when present, then the environment. Missing secrets are
// only tolerated in debug mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debugf("No .env file loaded: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "tableorder.db")
	v.SetDefault("WAITER_SESSION_TTL", "0")
	v.SetDefault("STAFF_SESSION_TTL", "24h")
	v.SetDefault("LOGIN_RATE", 5)
	v.SetDefault("LOGIN_BURST", 5)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)

	cfg := &Config{
		Port:             v.GetString("PORT"),
		GinMode:          v.GetString("GIN_MODE"),
		DBDriver:         strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:            v.GetString("DB_DSN"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TableTokenSecret: v.GetString("TABLE_TOKEN_SECRET"),
		WaiterSessionTTL: v.GetDuration("WAITER_SESSION_TTL"),
		StaffSessionTTL:  v.GetDuration("STAFF_SESSION_TTL"),
		LoginRate:        v.GetFloat64("LOGIN_RATE"),
		LoginBurst:       v.GetInt("LOGIN_BURST"),
		PublicBaseURL:    strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		BcryptCost:       v.GetInt("BCRYPT_COST"),
		PINLookupKey:     v.GetString("PIN_LOOKUP_KEY"),
	}
	for _, origin := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.GinMode != "debug" {
			return errors.New("JWT_SECRET is required")
		}
		utils.InfoLogger.Warn("JWT_SECRET not set, using development secret")
		c.JWTSecret = devJWTSecret
	}
	if c.PINLookupKey == "" {
		c.PINLookupKey = derivedKey(c.JWTSecret, "pin-lookup")
	}
	if c.TableTokenSecret == "" && c.GinMode != "debug" {
		return errors.New("TABLE_TOKEN_SECRET is required")
	}
	if c.WaiterSessionTTL < 0 || c.StaffSessionTTL <= 0 {
		return errors.New("WAITER_SESSION_TTL must be >= 0 and STAFF_SESSION_TTL > 0")
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return errors.New("LOGIN_RATE and LOGIN_BURST must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// InitDB opens the configured database.
// derivedKey labels a sub-key of secret so one secret can serve several
// purposes without the keys being interchangeable.
func derivedKey(secret, label string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(label))
	return hex.EncodeToString(mac.Sum(nil))
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	gormConfig := &gorm.Config{}
	if cfg.GinMode == "release" {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}
	utils.InfoLogger.Printf("Connected to %s database", cfg.DBDriver)
	return db, nil
}
