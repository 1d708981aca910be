package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	API              APIHTTPConfig           `env:",prefix=API_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
	Daraja           DarajaConfig            `env:",prefix=DARAJA_"`
	Subscription     SubscriptionConfig      `env:",prefix=SUBSCRIPTION_"`
}

type TelegramConfig struct {
	BotToken  string        `env:"BOT_TOKEN,required"`
	Timeout   time.Duration `env:"TIMEOUT,default=30s"`
	AdminIDs  []int64       `env:"ADMIN_IDS"`
	ChannelID int64         `env:"CHANNEL_ID,required"`
}

// DarajaConfig holds M-Pesa Daraja API credentials. Sandbox selects the
// Safaricom sandbox base URL instead of production.
type DarajaConfig struct {
	ConsumerKey    string        `env:"CONSUMER_KEY,required"`
	ConsumerSecret string        `env:"CONSUMER_SECRET,required"`
	ShortCode      string        `env:"SHORTCODE,required"`
	Passkey        string        `env:"PASSKEY,required"`
	CallbackURL    string        `env:"CALLBACK_URL,required"`
	Sandbox        bool          `env:"SANDBOX,default=true"`
	Timeout        time.Duration `env:"TIMEOUT,default=30s"`
}

type SubscriptionConfig struct {
	// PendingWindow is how long a user has to finish the subscribe flow.
	PendingWindow time.Duration `env:"PENDING_WINDOW,default=2m"`
	// DefaultValidity is applied when a payment amount matches no plan.
	DefaultValidity time.Duration `env:"DEFAULT_VALIDITY,default=720h"`
	InviteTTL       time.Duration `env:"INVITE_TTL,default=1h"`
	SweepSpec       string        `env:"SWEEP_SPEC,default=50 23 * * *"`
	SweepTimezone   string        `env:"SWEEP_TIMEZONE,default=Africa/Nairobi"`
	SweepRPS        float64       `env:"SWEEP_RPS,default=10"`
	BroadcastRPS    float64       `env:"BROADCAST_RPS,default=1"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// APIHTTPConfig configures the public HTTP server that receives M-Pesa
// payment callbacks.
type APIHTTPConfig struct {
	Host         string        `env:"HOST,default=0.0.0.0"`
	Port         uint16        `env:"PORT,default=8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a APIHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string `env:"PATH,default=./data/datrix.db"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS,default=25"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS,default=5"`
	MaxLifetime  string `env:"MAX_LIFETIME,default=5m"`
}
