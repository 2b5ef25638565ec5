package notifier_config

import (
	"time"

	"github.com/NordCoder/hcdispatch/internal/obs"
	kafkax "github.com/NordCoder/hcdispatch/internal/repository/kafka"
	pg "github.com/NordCoder/hcdispatch/internal/repository/postgres"
	"github.com/NordCoder/hcdispatch/internal/transport"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type KafkaIn struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	GroupID       string   `mapstructure:"group_id"`
	FromBeginning bool     `mapstructure:"from_beginning"`
}

type KafkaOut struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type SMTP struct {
	Addr       string        `mapstructure:"addr"`
	From       string        `mapstructure:"from"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	UseTLS     bool          `mapstructure:"use_tls"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SubjPrefix string        `mapstructure:"subj_prefix"`
}

type HTTP struct {
	UserAgent      string        `mapstructure:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout"`
	WebhookTimeout time.Duration `mapstructure:"webhook_timeout"`
	VerifyTLS      bool          `mapstructure:"verify_tls"`
}

type Site struct {
	Name    string `mapstructure:"name"`
	RootURL string `mapstructure:"root_url"`
}

type PagerDuty struct {
	Endpoint string `mapstructure:"endpoint"`
}

type Pushover struct {
	Endpoint string `mapstructure:"endpoint"`
	AppToken string `mapstructure:"app_token"`
}

type Telegram struct {
	APIBase  string `mapstructure:"api_base"`
	BotToken string `mapstructure:"bot_token"`
}

type Dispatch struct {
	Workers int `mapstructure:"workers"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Config struct {
	App       App       `mapstructure:"app"`
	Log       Log       `mapstructure:"log"`
	OTEL      OTEL      `mapstructure:"otel"`
	DB        pg.Config `mapstructure:"db"`
	In        KafkaIn   `mapstructure:"kafka_in"`
	Out       KafkaOut  `mapstructure:"kafka_out"`
	SMTP      SMTP      `mapstructure:"smtp"`
	HTTP      HTTP      `mapstructure:"http"`
	Site      Site      `mapstructure:"site"`
	PagerDuty PagerDuty `mapstructure:"pagerduty"`
	Pushover  Pushover  `mapstructure:"pushover"`
	Telegram  Telegram  `mapstructure:"telegram"`
	Dispatch  Dispatch  `mapstructure:"dispatch"`
	Server    Server    `mapstructure:"server"`
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }

const (
	ErrNoDSN     ErrConfig = "config: db.dsn is empty"
	ErrNoBrokers ErrConfig = "config: kafka brokers are empty"
	ErrNoTopic   ErrConfig = "config: kafka topic is empty"
	ErrTimeout   ErrConfig = "config: http.timeout, http.webhook_timeout and smtp.timeout must be positive"
)

func (c *Config) Validate() error {
	switch {
	case c.DB.DSN == "":
		return ErrNoDSN
	case len(c.In.Brokers) == 0 || len(c.Out.Brokers) == 0:
		return ErrNoBrokers
	case c.In.Topic == "" || c.Out.Topic == "":
		return ErrNoTopic
	case c.HTTP.Timeout <= 0 || c.HTTP.WebhookTimeout <= 0 || c.SMTP.Timeout <= 0:
		return ErrTimeout
	}
	return nil
}

func (c *Config) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}

func (c *Config) AsOTELConfig() obs.OTELConfig {
	return obs.OTELConfig{
		Enable:      c.OTEL.Enable,
		Endpoint:    c.OTEL.OTLPEndpoint,
		ServiceName: c.OTEL.ServiceName,
		SampleRatio: c.OTEL.SampleRatio,
	}
}

func (c *Config) AsConsumerConfig() *kafkax.ConsumerConfig {
	return &kafkax.ConsumerConfig{
		Brokers:       c.In.Brokers,
		GroupID:       c.In.GroupID,
		Topic:         c.In.Topic,
		FromBeginning: c.In.FromBeginning,
	}
}

func (c *Config) AsHTTPConfig() transport.HTTPConfig {
	return transport.HTTPConfig{
		Timeout:   c.HTTP.Timeout,
		UserAgent: c.HTTP.UserAgent,
		VerifyTLS: c.HTTP.VerifyTLS,
	}
}

// TransportDeps fills everything but the HTTP and mail capabilities.
func (c *Config) TransportDeps() transport.Deps {
	return transport.Deps{
		Site:              transport.Site{Name: c.Site.Name, RootURL: c.Site.RootURL},
		UserAgent:         c.HTTP.UserAgent,
		Timeout:           c.HTTP.Timeout,
		WebhookTimeout:    c.HTTP.WebhookTimeout,
		PagerDutyEndpoint: c.PagerDuty.Endpoint,
		PushoverEndpoint:  c.Pushover.Endpoint,
		PushoverAppToken:  c.Pushover.AppToken,
		TelegramAPI:       c.Telegram.APIBase,
		TelegramBotToken:  c.Telegram.BotToken,
	}
}
