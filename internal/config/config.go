package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type GeneralConfig struct {
	Env      string
	LogLevel string
	Port     int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type CacheConfig struct {
	CampaignTTL   time.Duration
	EnableMemory  bool
	EnableRedis   bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type StorageConfig struct {
	Region       string
	BaseEndpoint string
	Bucket       string
	AccessKeyID  string
	SecretKey    string
	PublicURL    string
}

type VerifyConfig struct {
	WhatsAppURL   string
	WhatsAppToken string
}

type AuthConfig struct {
	JWTSecret string
}

type appConfig struct {
	GeneralConfig  GeneralConfig
	DatabaseConfig DatabaseConfig
	CacheConfig    CacheConfig
	StorageConfig  StorageConfig
	VerifyConfig   VerifyConfig
	AuthConfig     AuthConfig
}

var AppConfigInstance appConfig

// LoadConfigs loads the configurations from the environment variables
func LoadConfigs() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env files: %v", err)
	}

	loadGeneralConfigs()
	loadDatabaseConfigs()
	loadCacheConfigs()
	loadStorageConfigs()
	loadVerifyConfigs()
	loadAuthConfigs()
}

// loadGeneralConfigs loads the general configurations from the environment variables
func loadGeneralConfigs() {
	AppConfigInstance.GeneralConfig.Env = getEnv("APP_ENV", "dev")
	AppConfigInstance.GeneralConfig.LogLevel = getEnv("LOG_LEVEL", "info")
	AppConfigInstance.GeneralConfig.Port = getEnvInt("PORT", 8080)
}

func loadDatabaseConfigs() {
	AppConfigInstance.DatabaseConfig.Host = getEnv("DB_HOST", "localhost")
	AppConfigInstance.DatabaseConfig.Port = getEnvInt("DB_PORT", 5432)
	AppConfigInstance.DatabaseConfig.User = getEnv("DB_USER", "postgres")
	AppConfigInstance.DatabaseConfig.Password = getEnv("DB_PASSWORD", "postgres")
	AppConfigInstance.DatabaseConfig.DBName = getEnv("DB_NAME", "adserver")
	AppConfigInstance.DatabaseConfig.SSLMode = getEnv("DB_SSLMODE", "disable")
	AppConfigInstance.DatabaseConfig.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	AppConfigInstance.DatabaseConfig.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	AppConfigInstance.DatabaseConfig.ConnMaxLifetime = getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30)
	AppConfigInstance.DatabaseConfig.ConnMaxIdleTime = getEnvInt("DB_CONN_MAX_IDLE_MIN", 5)
}

func loadCacheConfigs() {
	AppConfigInstance.CacheConfig.CampaignTTL = getEnvDuration("CACHE_CAMPAIGN_TTL", 5*time.Minute)
	AppConfigInstance.CacheConfig.EnableMemory = getEnvBool("CACHE_ENABLE_MEMORY", true)
	AppConfigInstance.CacheConfig.EnableRedis = getEnvBool("CACHE_ENABLE_REDIS", true)
	AppConfigInstance.CacheConfig.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	AppConfigInstance.CacheConfig.RedisPassword = getEnv("REDIS_PASSWORD", "")
	AppConfigInstance.CacheConfig.RedisDB = getEnvInt("REDIS_DB", 0)
}

func loadStorageConfigs() {
	AppConfigInstance.StorageConfig.Region = getEnv("S3_REGION", "us-east-1")
	AppConfigInstance.StorageConfig.BaseEndpoint = getEnv("S3_ENDPOINT", "")
	AppConfigInstance.StorageConfig.Bucket = getEnv("S3_BUCKET", "adserver-media")
	AppConfigInstance.StorageConfig.AccessKeyID = getEnv("S3_ACCESS_KEY_ID", "")
	AppConfigInstance.StorageConfig.SecretKey = getEnv("S3_SECRET_ACCESS_KEY", "")
	AppConfigInstance.StorageConfig.PublicURL = getEnv("S3_PUBLIC_URL", "")
}

func loadVerifyConfigs() {
	AppConfigInstance.VerifyConfig.WhatsAppURL = getEnv("WHATSAPP_GATEWAY_URL", "http://localhost:9090")
	AppConfigInstance.VerifyConfig.WhatsAppToken = getEnv("WHATSAPP_GATEWAY_TOKEN", "")
}

func loadAuthConfigs() {
	AppConfigInstance.AuthConfig.JWTSecret = getEnv("JWT_SECRET", "")
}

// getEnv returns the environment variable value if it exists, otherwise returns the fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns the environment variable value as int if it exists, otherwise returns the fallback value
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns the environment variable value as bool if it exists, otherwise returns the fallback value
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration returns the environment variable value as duration if it exists, otherwise returns the fallback value
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
