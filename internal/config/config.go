package config

import "github.com/kelseyhightower/envconfig"

type IngestConfig struct {
	DBDSN       string `envconfig:"DB_DSN" required:"true"`
	Port        string `envconfig:"PORT" default:"8080"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DBMaxConns        int32 `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns        int32 `envconfig:"DB_MIN_CONNS" default:"2"`
	DBMaxConnLifetime int   `envconfig:"DB_MAX_CONN_LIFETIME_SECONDS" default:"1800"`

	// FreeSWITCH event socket
	SwitchHost     string `envconfig:"SWITCH_HOST" default:"127.0.0.1"`
	SwitchPort     string `envconfig:"SWITCH_PORT" default:"8021"`
	SwitchPassword string `envconfig:"SWITCH_PASSWORD" default:"ClueCon"`
	SwitchTimeout  int    `envconfig:"SWITCH_TIMEOUT_SECONDS" default:"5"`

	// MMS media fetch
	MediaFetchTimeout int     `envconfig:"MEDIA_FETCH_TIMEOUT_SECONDS" default:"15"`
	MediaRPS          float64 `envconfig:"MEDIA_RPS" default:"5"`
	MediaBurst        int     `envconfig:"MEDIA_BURST" default:"10"`

	// Optional SQS payload source. When the queue URL is empty the SQS
	// consumer is not registered and the pipeline reads HTTP bodies only.
	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	SQSQueueURL        string `envconfig:"SQS_QUEUE_URL"`
	LocalstackEndpoint string `envconfig:"LOCALSTACK_ENDPOINT"`

	// Optional file-spool payload source.
	PayloadFile string `envconfig:"PAYLOAD_FILE"`
}

type BootstrapConfig struct {
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

func LoadIngest() IngestConfig {
	var cfg IngestConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func LoadBootstrap() BootstrapConfig {
	var cfg BootstrapConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}
