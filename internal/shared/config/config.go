package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the box office services and clients
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	// TrustedProxies may set X-Forwarded-For; client IPs from anyone else are taken from the socket
	TrustedProxies []string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Auth       AuthConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Kafka      KafkaConfig
	Storefront StorefrontConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// SlowQuery is the threshold above which gorm logs a query at warn level
	SlowQuery       time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
	PoolSize int

	// TTL values for different operations
	SeatHoldTTL      time.Duration
	EditorSessionTTL time.Duration
	CacheTTL         time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	Issuer       string
	JWTExpiresIn time.Duration
	ResumeTTL    time.Duration
}

// AuthConfig points shoppers at the external login flow
type AuthConfig struct {
	LoginURL  string
	ReturnURL string
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled          bool          `json:"enabled"`
	WindowDuration   time.Duration `json:"window_duration"`
	DefaultRequests  int           `json:"default_requests"`
	PublicRequests   int           `json:"public_requests"`
	AdminRequests    int           `json:"admin_requests"`
	ReserveRequests  int           `json:"reserve_requests"`
	CheckoutRequests int           `json:"checkout_requests"`
	RealtimeRequests int           `json:"realtime_requests"`
	WhitelistedIPs   []string      `json:"whitelisted_ips"`
}

// KafkaConfig holds broker settings for the checkout hand-off stream
type KafkaConfig struct {
	Brokers      []string
	HandOffTopic string
	ClientID     string
	// GroupID is the consumer group that keeps handed-off seats held during payment
	GroupID         string
	CheckoutHoldTTL time.Duration
}

// StorefrontConfig drives the shopper-side clients: inventory proxy, real-time channel and selection
type StorefrontConfig struct {
	APIBaseURL       string
	WebSocketURL     string
	InventoryTimeout time.Duration
	ConnectTimeout   time.Duration
	MaxSeatsPerUser  int

	DemoOccupied    float64
	DemoReserved    float64
	DemoPrice       float64
	DemoRows        int
	DemoSeatsPerRow int

	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB
		TrustedProxies: getStringSliceEnv("TRUSTED_PROXIES", []string{"127.0.0.1", "::1"}),

		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "boxoffice_db"),
			User:     getEnv("DB_USER", "boxoffice_user"),
			Password: getEnv("DB_PASSWORD", "boxoffice_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			SlowQuery:       getDurationEnv("DB_SLOW_QUERY", 200*time.Millisecond),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			PoolSize: getIntEnv("REDIS_POOL_SIZE", 20),

			SeatHoldTTL:      getDurationEnv("REDIS_SEAT_HOLD_TTL", 10*time.Minute),
			EditorSessionTTL: getDurationEnv("REDIS_EDITOR_SESSION_TTL", 8*time.Hour),
			CacheTTL:         getDurationEnv("REDIS_CACHE_TTL", 1*time.Hour),
		},

		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", ""),
			Issuer:       getEnv("JWT_ISSUER", "boxoffice"),
			JWTExpiresIn: getDurationEnvSeconds("JWT_EXPIRES_IN", 15*time.Minute),
			ResumeTTL:    getDurationEnvSeconds("JWT_RESUME_EXPIRES_IN", 30*time.Minute),
		},

		Auth: AuthConfig{
			LoginURL:  getEnv("AUTH_LOGIN_URL", "http://localhost:3000/login"),
			ReturnURL: getEnv("AUTH_RETURN_URL", "http://localhost:3000/seats"),
		},

		CORS: CORSConfig{
			AllowedOrigins: getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},

		RateLimit: RateLimitConfig{
			Enabled:          getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:   getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:  getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:   getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 120),
			AdminRequests:    getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 300),
			ReserveRequests:  getIntEnv("RATE_LIMIT_RESERVE_REQUESTS", 40),
			CheckoutRequests: getIntEnv("RATE_LIMIT_CHECKOUT_REQUESTS", 10),
			RealtimeRequests: getIntEnv("RATE_LIMIT_REALTIME_REQUESTS", 30),
			WhitelistedIPs:   getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		Kafka: KafkaConfig{
			Brokers:      getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			HandOffTopic: getEnv("KAFKA_HANDOFF_TOPIC", "checkout-handoffs"),
			ClientID:     getEnv("KAFKA_CLIENT_ID", "boxoffice"),

			GroupID:         getEnv("KAFKA_HOLD_KEEPER_GROUP", "boxoffice-hold-keeper"),
			CheckoutHoldTTL: getDurationEnv("CHECKOUT_HOLD_TTL", 10*time.Minute),
		},

		Storefront: StorefrontConfig{
			APIBaseURL:       getEnv("STOREFRONT_API_BASE_URL", "http://localhost:8080/api/v1"),
			WebSocketURL:     getEnv("STOREFRONT_WS_URL", "ws://localhost:8080/ws"),
			InventoryTimeout: getDurationEnv("STOREFRONT_INVENTORY_TIMEOUT", 5*time.Second),
			ConnectTimeout:   getDurationEnv("STOREFRONT_CONNECT_TIMEOUT", 3*time.Second),
			MaxSeatsPerUser:  getIntEnv("MAX_SEATS_PER_USER", 10),

			DemoOccupied:    getFloatEnv("DEMO_OCCUPIED_RATIO", 0.15),
			DemoReserved:    getFloatEnv("DEMO_RESERVED_RATIO", 0.10),
			DemoPrice:       getFloatEnv("DEMO_SEAT_PRICE", 100),
			DemoRows:        getIntEnv("DEMO_ROWS", 10),
			DemoSeatsPerRow: getIntEnv("DEMO_SEATS_PER_ROW", 12),

			BreakerMaxFailures: getIntEnv("INVENTORY_BREAKER_MAX_FAILURES", 3),
			BreakerOpenTimeout: getDurationEnv("INVENTORY_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},

		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	if cfg.JWT.Secret == "" && cfg.IsDevelopment() {
		cfg.JWT.Secret = "boxoffice-dev-secret"
	}

	return cfg
}

// Validate reports settings that would make the services misbehave
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	s := c.Storefront
	if s.DemoOccupied < 0 || s.DemoOccupied > 1 || s.DemoReserved < 0 || s.DemoReserved > 1 {
		errs = append(errs, fmt.Errorf("demo ratios must be within [0,1], got occupied=%v reserved=%v", s.DemoOccupied, s.DemoReserved))
	} else if s.DemoOccupied+s.DemoReserved > 1 {
		errs = append(errs, fmt.Errorf("demo ratios sum to %v, must not exceed 1", s.DemoOccupied+s.DemoReserved))
	}
	if s.MaxSeatsPerUser < 1 {
		errs = append(errs, fmt.Errorf("MAX_SEATS_PER_USER must be positive, got %d", s.MaxSeatsPerUser))
	}
	if s.ConnectTimeout <= 0 || s.InventoryTimeout <= 0 {
		errs = append(errs, errors.New("storefront timeouts must be positive"))
	}
	if s.DemoRows < 1 || s.DemoSeatsPerRow < 1 {
		errs = append(errs, errors.New("demo shape must have at least one row and one seat"))
	}
	if c.Kafka.CheckoutHoldTTL <= 0 {
		errs = append(errs, fmt.Errorf("CHECKOUT_HOLD_TTL must be positive, got %v", c.Kafka.CheckoutHoldTTL))
	}
	return errors.Join(errs...)
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getFloatEnv gets a float environment variable with a fallback value
func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvSeconds gets an environment variable as seconds (int) and converts to time.Duration
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
