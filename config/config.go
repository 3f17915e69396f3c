package config

import (
	"errors"
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AdminToken        string `mapstructure:"ADMIN_TOKEN"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisOTPDB    int    `mapstructure:"REDIS_OTP_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Marketplace rules.
	DefaultTimezone        string  `mapstructure:"DEFAULT_TIMEZONE"`
	Currency               string  `mapstructure:"CURRENCY"`
	PlatformCommissionRate float64 `mapstructure:"PLATFORM_COMMISSION_RATE"`
	MinWithdrawalAmount    float64 `mapstructure:"MIN_WITHDRAWAL_AMOUNT"`
	MaxSessionMinutes      int     `mapstructure:"MAX_SESSION_MINUTES"`

	// Razorpay.
	RazorpayKeyID         string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret     string `mapstructure:"RAZORPAY_KEY_SECRET"`
	RazorpayWebhookSecret string `mapstructure:"RAZORPAY_WEBHOOK_SECRET"`
	RazorpayAccountNumber string `mapstructure:"RAZORPAY_ACCOUNT_NUMBER"`
	RazorpayBaseURL       string `mapstructure:"RAZORPAY_BASE_URL"`

	// PhonePe.
	PhonePeMerchantID  string `mapstructure:"PHONEPE_MERCHANT_ID"`
	PhonePeSaltKey     string `mapstructure:"PHONEPE_SALT_KEY"`
	PhonePeSaltIndex   string `mapstructure:"PHONEPE_SALT_INDEX"`
	PhonePeBaseURL     string `mapstructure:"PHONEPE_BASE_URL"`
	PhonePeRedirectURL string `mapstructure:"PHONEPE_REDIRECT_URL"`
	PhonePeCallbackURL string `mapstructure:"PHONEPE_CALLBACK_URL"`

	// Stripe.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// Firebase service account used for push notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Cloudinary storage for session files.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	// Optional token key; when set, signed file URLs also expire.
	CloudinaryAuthTokenKey string `mapstructure:"CLOUDINARY_AUTH_TOKEN_KEY"`
	FileURLTTLMinutes      int    `mapstructure:"FILE_URL_TTL_MINUTES"`

	// Periodic jobs (asynq cronspec).
	BookingExpiryCron string `mapstructure:"BOOKING_EXPIRY_CRON"`
	SessionExpiryCron string `mapstructure:"SESSION_EXPIRY_CRON"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := AppConfig.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
}

// ErrMissingJWTSecret is returned when production runs without a signing key.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")

// Validate rejects settings the server must not start with.
func (c Config) Validate() error {
	if c.Env == "production" && c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "meetmydesigners")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("ADMIN_TOKEN", "")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_OTP_DB", 2)
	viper.SetDefault("REDIS_QUEUE_DB", 3)

	viper.SetDefault("DEFAULT_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("CURRENCY", "INR")
	viper.SetDefault("PLATFORM_COMMISSION_RATE", 0.0)
	viper.SetDefault("MIN_WITHDRAWAL_AMOUNT", 100.0)
	viper.SetDefault("MAX_SESSION_MINUTES", 120)

	viper.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com")
	viper.SetDefault("PHONEPE_BASE_URL", "https://api.phonepe.com/apis/hermes")
	viper.SetDefault("PHONEPE_SALT_INDEX", "1")

	viper.SetDefault("FILE_URL_TTL_MINUTES", 30)

	viper.SetDefault("BOOKING_EXPIRY_CRON", "@every 15m")
	viper.SetDefault("SESSION_EXPIRY_CRON", "@every 5m")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
