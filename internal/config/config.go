// Package config loads this client's configuration from the environment
// and an optional .env file: a godotenv.Load call at startup followed by
// struct-tag parsing of the process environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v7"
	"github.com/joho/godotenv"

	"github.com/sagostin/go-esme/internal/pdu"
	"github.com/sagostin/go-esme/internal/session"
)

// Config is every tunable described for the client's bind, admission
// control and persistence behavior. Field names follow the snake_case
// option names verbatim via their env tags.
type Config struct {
	SMSCHost     string `env:"SMSC_HOST,required"`
	SMSCPort     int    `env:"SMSC_PORT,required"`
	SystemID     string `env:"SYSTEM_ID,required"`
	Password     string `env:"PASSWORD,required"`
	SystemType   string `env:"SYSTEM_TYPE" envDefault:""`
	AddrTON      uint8  `env:"ADDR_TON" envDefault:"0"`
	AddrNPI      uint8  `env:"ADDR_NPI" envDefault:"0"`
	AddressRange string `env:"ADDRESS_RANGE" envDefault:""`
	BindMode     string `env:"BIND_MODE" envDefault:"transceiver"`

	EnquireLinkInterval time.Duration `env:"ENQUIRE_LINK_INTERVAL" envDefault:"30s"`
	SocketTimeout       time.Duration `env:"SOCKET_TIMEOUT" envDefault:"10s"`

	DefaultEncoding    string `env:"DEFAULT_ENCODING" envDefault:"gsm0338"`
	AutoMessagePayload bool   `env:"AUTO_MESSAGE_PAYLOAD" envDefault:"false"`
	Use16BitRef        bool   `env:"USE_16BIT_REF" envDefault:"false"`
	ClientID           string `env:"CLIENT_ID" envDefault:""`

	MaxTTLResponse time.Duration `env:"MAX_TTL_RESPONSE" envDefault:"60s"`
	MaxTTLDelivery time.Duration `env:"MAX_TTL_DELIVERY" envDefault:"72h"`

	SendRate       float64       `env:"SEND_RATE" envDefault:"10"`
	SamplingPeriod time.Duration `env:"SAMPLING_PERIOD" envDefault:"180s"`
	SampleSize     int           `env:"SAMPLE_SIZE" envDefault:"50"`
	DenyRequestAt  float64       `env:"DENY_REQUEST_AT" envDefault:"0.01"`
	ThrottleWait   time.Duration `env:"THROTTLE_WAIT" envDefault:"30s"`

	MinDelay     time.Duration `env:"MIN_DELAY" envDefault:"1s"`
	MaxIncreases int           `env:"MAX_INCREASES" envDefault:"6"`

	MongoURI      string `env:"MONGO_URI" envDefault:""`
	PostgresDSN   string `env:"POSTGRES_DSN" envDefault:""`
	AMQPAddr      string `env:"AMQP_ADDR" envDefault:""`
	AMQPQueueName string `env:"AMQP_QUEUE_NAME" envDefault:"esme-outbound"`

	StatusAddr string `env:"STATUS_ADDR" envDefault:":8080"`
}

// Load reads an optional .env file (a missing file is not an error),
// then parses the process environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		if !isNotExist(err) {
			return Config{}, fmt.Errorf("config: loading .env: %w", err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(err)
}

// validate enforces the SMPP v3.4 limits on the bind credential fields,
// so a bad deployment fails at startup instead of at the first bind.
func (c Config) validate() error {
	if len(c.SystemID) > 15 {
		return fmt.Errorf("config: SYSTEM_ID exceeds 15 characters")
	}
	if len(c.Password) > 8 {
		return fmt.Errorf("config: PASSWORD exceeds 8 characters")
	}
	if len(c.SystemType) > 12 {
		return fmt.Errorf("config: SYSTEM_TYPE exceeds 12 characters")
	}
	if len(c.AddressRange) > 40 {
		return fmt.Errorf("config: ADDRESS_RANGE exceeds 40 characters")
	}
	switch c.BindMode {
	case "transmitter", "receiver", "transceiver":
	default:
		return fmt.Errorf("config: unrecognized BIND_MODE %q", c.BindMode)
	}
	return nil
}

// bindModeFor maps the bind_mode option's three accepted strings onto the
// session package's enum, defaulting to transceiver for anything else.
func bindModeFor(s string) session.BindMode {
	switch s {
	case "transmitter":
		return session.BindModeTransmitter
	case "receiver":
		return session.BindModeReceiver
	default:
		return session.BindModeTransceiver
	}
}

// SessionConfig builds the wire-level session.Config this client dials
// and binds with.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		Addr:            fmt.Sprintf("%s:%d", c.SMSCHost, c.SMSCPort),
		SystemID:        c.SystemID,
		Password:        c.Password,
		SystemType:      c.SystemType,
		AddrTON:         pdu.TON(c.AddrTON),
		AddrNPI:         pdu.NPI(c.AddrNPI),
		AddressRange:    c.AddressRange,
		BindMode:        bindModeFor(c.BindMode),
		EnquireInterval: c.EnquireLinkInterval,
		EnquireTimeout:  c.SocketTimeout,
		ReadTimeout:     c.SocketTimeout,
		DialTimeout:     c.SocketTimeout,
		SendRatePerSec:  c.SendRate,
	}
}

// ClientConfig builds the supervisor-level session.ClientConfig around
// SessionConfig, adding the encoding policy, retry and throttle tunables.
func (c Config) ClientConfig() session.ClientConfig {
	return session.ClientConfig{
		Session:            c.SessionConfig(),
		DefaultEncoding:    c.DefaultEncoding,
		AutoMessagePayload: c.AutoMessagePayload,
		Use16BitRef:        c.Use16BitRef,
		RetryMinDelay:      c.MinDelay,
		RetryMaxIncreases:  c.MaxIncreases,
		ClientID:           c.ClientID,
		Throttle: session.ThrottleConfig{
			SamplingPeriod: c.SamplingPeriod,
			SampleSize:     c.SampleSize,
			DenyRequestAt:  c.DenyRequestAt,
			ThrottleWait:   c.ThrottleWait,
		},
	}
}
