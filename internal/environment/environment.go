package environment

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	KeyPort              = "PORT"
	KeyApiURL            = "API_URL"
	KeyDBURL             = "DB_URL"
	KeyJWTSecret         = "JWT_SECRET"
	KeyCookieSecure      = "COOKIE_SECURE"
	KeyJudgeURL          = "JUDGE0_API_URL"
	KeyJudgePollInterval = "JUDGE_POLL_INTERVAL"
	KeyJudgeTimeout      = "JUDGE_TIMEOUT"
	KeyJudgeHTTPTimeout  = "JUDGE_HTTP_TIMEOUT"
	KeyLanguagesFile     = "LANGUAGES_FILE"
	KeyCorsOrigins       = "CORS_ORIGINS"
	KeySenderEmail       = "SENDER_EMAIL"
	KeySenderPassword    = "SENDER_EMAIL_PASSWORD"
	KeySMTPHost          = "SMTP_HOST"
	KeySMTPPort          = "SMTP_PORT"
	KeyAlertEmails       = "ALERT_EMAILS"
	KeyGeminiAPIKey      = "GEMINI_API_KEY"
	KeyGeminiModel       = "GEMINI_MODEL"
	KeyLogLevel          = "LOG_LEVEL"
	KeyRunMigrations     = "RUN_MIGRATIONS"

	defaultPort        = "8080"
	defaultSMTPHost    = "smtp.gmail.com"
	defaultSMTPPort    = 587
	defaultGeminiModel = "gemini-1.5-flash"
)

type JudgeConfig struct {
	BaseURL       string
	PollInterval  time.Duration
	PollTimeout   time.Duration
	HTTPTimeout   time.Duration
	LanguagesFile string
}

type MailConfig struct {
	Sender   string
	Password string
	SMTPHost string
	SMTPPort int
	// operators that receive judge outage alerts
	AlertTo []string
}

// Enabled reports whether alert mails can be sent at all.
func (m MailConfig) Enabled() bool {
	return m.Sender != "" && len(m.AlertTo) > 0
}

type EnvConfig struct {
	Port          string
	ApiURL        string
	DBURL         string
	JWTSecret     string
	CookieSecure  bool
	CorsOrigins   []string
	LogLevel      log.Level
	RunMigrations bool
	Judge         JudgeConfig
	Mail          MailConfig
	GeminiAPIKey  string
	GeminiModel   string
}

// Address is the listen address of the http server.
func (e EnvConfig) Address() string {
	return e.ApiURL + ":" + e.Port
}

// ReadEnvConfig loads .env (when present) into the process environment and
// reads the service configuration from it.
func ReadEnvConfig() (EnvConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded, using process environment")
	}
	return readEnv(os.Getenv)
}

func readEnv(getenv func(string) string) (EnvConfig, error) {
	var err error
	cfg := EnvConfig{
		Port:         getenv(KeyPort),
		ApiURL:       getenv(KeyApiURL),
		DBURL:        getenv(KeyDBURL),
		JWTSecret:    getenv(KeyJWTSecret),
		GeminiAPIKey: getenv(KeyGeminiAPIKey),
		GeminiModel:  getenv(KeyGeminiModel),
		Judge: JudgeConfig{
			BaseURL:       strings.TrimRight(getenv(KeyJudgeURL), "/"),
			LanguagesFile: getenv(KeyLanguagesFile),
		},
		Mail: MailConfig{
			Sender:   getenv(KeySenderEmail),
			Password: getenv(KeySenderPassword),
			SMTPHost: getenv(KeySMTPHost),
			AlertTo:  splitList(getenv(KeyAlertEmails)),
		},
		CorsOrigins: splitList(getenv(KeyCorsOrigins)),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
		log.Warnf("port not found in environment. using default port %s", cfg.Port)
	}
	if cfg.DBURL == "" {
		return EnvConfig{}, fmt.Errorf("%s is required", KeyDBURL)
	}
	if cfg.JWTSecret == "" {
		return EnvConfig{}, fmt.Errorf("%s is required", KeyJWTSecret)
	}
	if cfg.Judge.BaseURL == "" {
		return EnvConfig{}, fmt.Errorf("%s is required", KeyJudgeURL)
	}
	if len(cfg.CorsOrigins) == 0 {
		cfg.CorsOrigins = []string{"https://*", "http://*"}
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = defaultGeminiModel
	}
	if cfg.Mail.SMTPHost == "" {
		cfg.Mail.SMTPHost = defaultSMTPHost
	}

	if cfg.CookieSecure, err = parseBool(getenv, KeyCookieSecure, true); err != nil {
		return EnvConfig{}, err
	}
	if cfg.RunMigrations, err = parseBool(getenv, KeyRunMigrations, false); err != nil {
		return EnvConfig{}, err
	}
	if cfg.Judge.PollInterval, err = parseDuration(getenv, KeyJudgePollInterval, time.Second); err != nil {
		return EnvConfig{}, err
	}
	if cfg.Judge.PollTimeout, err = parseDuration(getenv, KeyJudgeTimeout, 30*time.Second); err != nil {
		return EnvConfig{}, err
	}
	if cfg.Judge.HTTPTimeout, err = parseDuration(getenv, KeyJudgeHTTPTimeout, 10*time.Second); err != nil {
		return EnvConfig{}, err
	}

	cfg.Mail.SMTPPort = defaultSMTPPort
	if raw := getenv(KeySMTPPort); raw != "" {
		if cfg.Mail.SMTPPort, err = strconv.Atoi(raw); err != nil {
			return EnvConfig{}, fmt.Errorf("%s must be a number, got %q", KeySMTPPort, raw)
		}
	}

	cfg.LogLevel = log.InfoLevel
	if raw := getenv(KeyLogLevel); raw != "" {
		if cfg.LogLevel, err = log.ParseLevel(raw); err != nil {
			return EnvConfig{}, fmt.Errorf("%s: %w", KeyLogLevel, err)
		}
	}

	return cfg, nil
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, raw)
	}
	return v, nil
}

// durations may be given as Go durations ("1500ms") or plain seconds ("30")
func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("%s must be positive, got %q", key, raw)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
