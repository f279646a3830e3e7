package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DatabaseURL builds a postgres:// connection URL.
func (c DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// DSN builds a GORM-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// HousekeepingConfig holds sweep behavior settings.
type HousekeepingConfig struct {
	// Schedule is a cron expression controlling when the sweep runs.
	Schedule string
	// VacatedRoomStatus is the explicit status a room takes after its guest
	// checks out: "dirty" (default) or "available".
	VacatedRoomStatus string
	// AutoCheckIn enables the sweep step that checks in confirmed bookings
	// whose check-in date has passed.
	AutoCheckIn bool
}

// ServiceConfig holds all configuration for the hotel service.
type ServiceConfig struct {
	Port              string
	AppEnv            string
	DBConfig          DatabaseConfig
	JWTConfig         JWTConfig
	KafkaConfig       KafkaConfig
	Housekeeping      HousekeepingConfig
	TaxRateBps        int64
	ExtraBedRateCents int64
}

// Load reads configuration from HOTEL_-prefixed environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("HOTEL")
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "hotel")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "stayflow.")
	v.SetDefault("HOUSEKEEPING_SCHEDULE", "0 2 * * *")
	v.SetDefault("VACATED_ROOM_STATUS", "dirty")
	v.SetDefault("AUTO_CHECK_IN", false)
	v.SetDefault("TAX_RATE_BPS", 1000)
	v.SetDefault("EXTRA_BED_RATE_CENTS", 0)

	vacated := v.GetString("VACATED_ROOM_STATUS")
	if vacated != "dirty" && vacated != "available" {
		return nil, fmt.Errorf("invalid HOTEL_VACATED_ROOM_STATUS %q: must be dirty or available", vacated)
	}

	if v.GetString("JWT_SECRET") == "" {
		return nil, fmt.Errorf("HOTEL_JWT_SECRET is required")
	}

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		Housekeeping: HousekeepingConfig{
			Schedule:          v.GetString("HOUSEKEEPING_SCHEDULE"),
			VacatedRoomStatus: vacated,
			AutoCheckIn:       v.GetBool("AUTO_CHECK_IN"),
		},
		TaxRateBps:        v.GetInt64("TAX_RATE_BPS"),
		ExtraBedRateCents: v.GetInt64("EXTRA_BED_RATE_CENTS"),
	}, nil
}
