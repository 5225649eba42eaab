package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pendoke/pendo-backend/internal/models"
)

type Config struct {
	PORT           string
	DB_HOST        string
	DB_PORT        string
	DB_USER        string
	DB_PASSWORD    string
	DB_NAME        string
	JWT_SECRET     string
	ADMIN_CODE     string
	GEMINI_API_KEY string
	GEMINI_MODEL   string
	KAFKA_ADDRESS  string
	REDIS_ADDRESS  string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		PORT:           os.Getenv("PORT"),
		DB_HOST:        os.Getenv("DB_HOST"),
		DB_PORT:        os.Getenv("DB_PORT"),
		DB_USER:        os.Getenv("DB_USER"),
		DB_PASSWORD:    os.Getenv("DB_PASSWORD"),
		DB_NAME:        os.Getenv("DB_NAME"),
		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		ADMIN_CODE:     os.Getenv("ADMIN_CODE"),
		GEMINI_API_KEY: os.Getenv("GEMINI_API_KEY"),
		GEMINI_MODEL:   os.Getenv("GEMINI_MODEL"),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		REDIS_ADDRESS:  os.Getenv("REDIS_ADDRESS"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
	}

	if config.PORT == "" {
		config.PORT = "8080"
	}
	if config.GEMINI_MODEL == "" {
		config.GEMINI_MODEL = "gemini-2.5-flash"
	}

	return config, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
		&models.Counselor{},
		&models.AccessRequest{},
		&models.TriageRecord{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.Notification{},
	)
}
