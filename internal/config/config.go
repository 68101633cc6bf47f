package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the services need. Loaded once in main and
// passed down; nothing reads the environment after Load returns.
type Config struct {
	ListenAddr  string
	DatabaseDSN string
	LogFile     string
	JWTSecret   string

	// Business rules.
	Timezone        *time.Location
	TaxRate         float64
	LatePenalty     int64
	NoShowPenalty   int64
	LateCutoffHours float64

	// Reminder scanning.
	ReminderInterval  time.Duration
	ReminderTolerance time.Duration

	// Dispatch.
	ChannelTimeout time.Duration

	// Retention sweep.
	RetentionDays int

	WhatsApp WhatsAppConfig
	Google   GoogleConfig
}

type WhatsAppConfig struct {
	PhoneNumberID string
	AccessToken   string
	VerifyToken   string
	APIVersion    string
	BaseURL       string
	LanguageCode  string

	// Template names must match the templates approved for the business
	// account.
	Templates TemplateSet
}

type TemplateSet struct {
	Confirmation string
	Reminder12h  string
	Reminder6h   string
	Reminder3h   string
	Cancellation string
	Reschedule   string
}

type GoogleConfig struct {
	CredentialsJSON []byte
	SheetID         string
	SheetName       string
	// CalendarByStudio maps a studio id to its Google calendar id.
	CalendarByStudio map[int64]string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	tzName := getEnv("BUSINESS_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("config: invalid BUSINESS_TIMEZONE %q: %w", tzName, err)
	}

	cfg := &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		DatabaseDSN: getEnv("DATABASE_URL", "resonance.db"),
		LogFile:     getEnv("LOG_FILE", "logs/resonance.log"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		Timezone:        loc,
		TaxRate:         getFloat("TAX_RATE", 0.18),
		LatePenalty:     getInt64("LATE_CANCEL_PENALTY", 100),
		NoShowPenalty:   getInt64("NO_SHOW_PENALTY", 300),
		LateCutoffHours: getFloat("LATE_CANCEL_CUTOFF_HOURS", 24),

		ReminderInterval:  getDuration("REMINDER_INTERVAL", 15*time.Minute),
		ReminderTolerance: getDuration("REMINDER_TOLERANCE", 15*time.Minute),

		ChannelTimeout: getDuration("CHANNEL_TIMEOUT", 10*time.Second),

		RetentionDays: int(getInt64("RETENTION_DAYS", 30)),

		WhatsApp: WhatsAppConfig{
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			AccessToken:   os.Getenv("WHATSAPP_ACCESS_TOKEN"),
			VerifyToken:   os.Getenv("WHATSAPP_VERIFY_TOKEN"),
			APIVersion:    getEnv("WHATSAPP_API_VERSION", "v21.0"),
			BaseURL:       getEnv("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			LanguageCode:  getEnv("WHATSAPP_LANGUAGE", "en"),
			Templates: TemplateSet{
				Confirmation: getEnv("WA_TPL_CONFIRMATION", "booking_confirmation"),
				Reminder12h:  getEnv("WA_TPL_REMINDER_12H", "booking_reminder_12h"),
				Reminder6h:   getEnv("WA_TPL_REMINDER_6H", "booking_reminder_6h"),
				Reminder3h:   getEnv("WA_TPL_REMINDER_3H", "booking_reminder_3h"),
				Cancellation: getEnv("WA_TPL_CANCELLATION", "booking_cancelled"),
				Reschedule:   getEnv("WA_TPL_RESCHEDULE", "booking_rescheduled"),
			},
		},

		Google: GoogleConfig{
			SheetID:          os.Getenv("GOOGLE_SHEET_ID"),
			SheetName:        getEnv("GOOGLE_SHEET_NAME", "Resonance Bookings Master"),
			CalendarByStudio: parseCalendarMap(os.Getenv("GOOGLE_CALENDAR_MAP")),
		},
	}

	if path := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading GOOGLE_SERVICE_ACCOUNT_FILE: %w", err)
		}
		cfg.Google.CredentialsJSON = b
	} else if raw := os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY"); raw != "" {
		cfg.Google.CredentialsJSON = []byte(raw)
	}

	return cfg, nil
}

// parseCalendarMap parses "1:calendar-id-a,2:calendar-id-b".
func parseCalendarMap(raw string) map[int64]string {
	out := make(map[int64]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
		if err != nil {
			continue
		}
		out[id] = strings.TrimSpace(v)
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
