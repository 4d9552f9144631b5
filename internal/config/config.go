package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Colissimo
	ColissimoContractNumber     string        `envconfig:"COLISSIMO_CONTRACT_NUMBER"`
	ColissimoPassword           string        `envconfig:"COLISSIMO_PASSWORD"`
	ColissimoLabelURL           string        `envconfig:"COLISSIMO_LABEL_URL" default:"https://ws.colissimo.fr/sls-ws/SlsServiceWSRest/2.0"`
	ColissimoRelayURL           string        `envconfig:"COLISSIMO_RELAY_URL" default:"https://ws.colissimo.fr/pointretrait-ws-cxf/PointRetraitServiceWS/2.0"`
	ColissimoTimeout            time.Duration `envconfig:"COLISSIMO_TIMEOUT" default:"30s"`
	ColissimoUseMock            bool          `envconfig:"COLISSIMO_USE_MOCK" default:"false"`
	ColissimoSignatureCountries []string      `envconfig:"COLISSIMO_SIGNATURE_COUNTRIES" default:"DE,IT,ES,GB,LU,NL,DK,AT,SE"`
	ColissimoCustomsCountries   []string      `envconfig:"COLISSIMO_CUSTOMS_COUNTRIES" default:"CH,NO,US,GB"`
	ColissimoCustomsSuffix      string        `envconfig:"COLISSIMO_CUSTOMS_SUFFIX" default:"customs"`
	ColissimoSkipDocsOnError    bool          `envconfig:"COLISSIMO_SKIP_DOCUMENTS_ON_ERROR" default:"false"`

	// Document storage
	LocalPath         string `envconfig:"LOCAL_PATH"`
	S3Bucket          string `envconfig:"S3_BUCKET"`
	S3Path            string `envconfig:"S3_PATH"`
	S3Region          string `envconfig:"S3_REGION" default:"eu-west-3"`
	S3Endpoint        string `envconfig:"S3_ENDPOINT"`
	S3AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"colissimo"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from a .env file, when present, and from
// environment variables. Variables already set take precedence over the file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the carrier credentials and a single document
// destination are configured. Mock mode needs neither.
func (c *Config) Validate() error {
	if c.ColissimoUseMock {
		if c.LocalPath != "" && c.S3Bucket != "" {
			return errors.New("LOCAL_PATH and S3_BUCKET are mutually exclusive")
		}
		return nil
	}

	if c.ColissimoContractNumber == "" || c.ColissimoPassword == "" {
		return errors.New("COLISSIMO_CONTRACT_NUMBER and COLISSIMO_PASSWORD are required")
	}
	switch {
	case c.LocalPath == "" && c.S3Bucket == "":
		return errors.New("one of LOCAL_PATH or S3_BUCKET is required")
	case c.LocalPath != "" && c.S3Bucket != "":
		return errors.New("LOCAL_PATH and S3_BUCKET are mutually exclusive")
	}
	return nil
}

// StorageBackend names the configured document destination.
func (c *Config) StorageBackend() string {
	switch {
	case c.S3Bucket != "":
		return "s3"
	case c.LocalPath != "":
		return "local"
	default:
		return "memory"
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("colissimo.mock", c.ColissimoUseMock),
		attribute.String("colissimo.storage", c.StorageBackend()),
	}
}
