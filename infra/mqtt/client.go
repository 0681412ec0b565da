package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/powerplan/auth"
	coremon "github.com/kilianp07/powerplan/core/monitoring"
)

// Config defines the connection and publication parameters of the set-point
// publisher.
type Config struct {
	Enabled     bool            `json:"enabled"`
	Broker      string          `json:"broker"`
	ClientID    string          `json:"client_id"`
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	UseTLS      bool            `json:"use_tls"`
	ClientCert  string          `json:"client_cert"`
	ClientKey   string          `json:"client_key"`
	CABundle    string          `json:"ca_bundle"`
	// AuthMethod is username_password, tls, both or oauth2. With oauth2 the
	// password is a client credentials access token, renewed on expiry.
	AuthMethod  string          `json:"auth_method"`
	OAuth2      auth.Conf       `json:"oauth2"`
	TopicPrefix string          `json:"topic_prefix"`
	QoS         map[string]byte `json:"qos"`
	RetainPlan  bool            `json:"retain_plan"`
	LWTTopic    string          `json:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain"`
	MaxRetries  int             `json:"max_retries"`
	BackoffMS   int             `json:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-"`
}

const (
	DefaultTopicPrefix = "powerplan"
	DefaultMaxRetries  = 3
	DefaultBackoffMS   = 100

	tokenTimeout = 10 * time.Second
)

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "powerplan"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = DefaultTopicPrefix
	}
	c.TopicPrefix = strings.TrimSuffix(c.TopicPrefix, "/")
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = DefaultBackoffMS
	}
}

// Validate checks the configuration. A disabled publisher is always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	var errs []error
	if c.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required"))
	}
	switch c.AuthMethod {
	case "", "username_password", "tls", "both":
	case "oauth2":
		errs = append(errs, c.OAuth2.Validate())
	default:
		errs = append(errs, fmt.Errorf("mqtt.auth_method %q is not supported", c.AuthMethod))
	}
	for k, q := range c.QoS {
		if q > 2 {
			errs = append(errs, fmt.Errorf("mqtt.qos.%s must be 0, 1 or 2", k))
		}
	}
	if c.LWTQoS > 2 {
		errs = append(errs, errors.New("mqtt.lwt_qos must be 0, 1 or 2"))
	}
	if c.UseTLS && c.TLSConfig == nil && (c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "") {
		errs = append(errs, errors.New("mqtt tls requires client_cert, client_key and ca_bundle"))
	}
	return errors.Join(errs...)
}

func (c Config) qos(key string) byte {
	if q, ok := c.QoS[key]; ok {
		return q
	}
	return 0
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.AuthMethod == "oauth2" {
		opts.SetCredentialsProvider(tokenCredentials(cfg))
	}
	if cfg.UseTLS || cfg.AuthMethod == "tls" {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// tokenCredentials presents an OAuth2 access token as the MQTT password. The
// username defaults to the OAuth2 client ID.
func tokenCredentials(cfg Config) paho.CredentialsProvider {
	cred := auth.NewClientCred(cfg.OAuth2)
	user := cfg.Username
	if user == "" {
		user = cfg.OAuth2.ClientID
	}
	return func() (string, string) {
		ctx, cancel := context.WithTimeout(context.Background(), tokenTimeout)
		defer cancel()
		tok, err := cred.GetToken(ctx)
		if err != nil {
			coremon.CaptureException(err, map[string]string{"module": "mqtt", "auth": "oauth2"})
			return user, ""
		}
		return user, tok
	}
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("ca bundle %s holds no certificate", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
