package config

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	awsclient "github.com/operator-framework/cost-forecaster/pkg/aws"
	"github.com/operator-framework/cost-forecaster/pkg/job"
	"github.com/operator-framework/cost-forecaster/pkg/report"
	"github.com/operator-framework/cost-forecaster/pkg/storage"
)

const (
	DefaultForecastMonths = 3
	DefaultConcurrency    = 1
	DefaultCacheSize      = 1024
	DefaultListenAddr     = ":8080"
	DefaultSchedule       = "0 6 1 * *"
	DefaultLogLevel       = "info"
)

// Config is the full configuration of the forecaster. It is filled from
// defaults, then an optional YAML file, then environment variables, then
// command line flags, each overriding the previous.
type Config struct {
	Bucket         string `yaml:"bucket"`
	FolderPath     string `yaml:"folderPath"`
	ForecastMonths int    `yaml:"forecastMonths"`

	AWS AWSConfig `yaml:"aws"`

	Concurrency       int     `yaml:"concurrency"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	CacheSize         int     `yaml:"cacheSize"`

	// Destination is s3:// (default) or file:///some/dir for dry runs.
	Destination string `yaml:"destination"`

	EnableWideUpload     bool   `yaml:"enableWideUpload"`
	WideKeyTemplate      string `yaml:"wideKeyTemplate"`
	WideXLSX             bool   `yaml:"wideXLSX"`
	InvalidValuePolicy   string `yaml:"invalidValuePolicy"`
	InvalidValueSentinel string `yaml:"invalidValueSentinel"`

	PushgatewayURL string `yaml:"pushgatewayURL"`
	Schedule       string `yaml:"schedule"`
	ListenAddr     string `yaml:"listenAddr"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

type AWSConfig struct {
	Region   string `yaml:"region"`
	Profile  string `yaml:"profile"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns a Config with every default applied.
func Default() Config {
	return Config{
		ForecastMonths:       DefaultForecastMonths,
		AWS:                  AWSConfig{Region: awsclient.DefaultRegion},
		Concurrency:          DefaultConcurrency,
		CacheSize:            DefaultCacheSize,
		WideKeyTemplate:      storage.DefaultWideKeyTemplate,
		InvalidValuePolicy:   string(report.InvalidValueEmpty),
		InvalidValueSentinel: report.DefaultSentinel,
		Schedule:             DefaultSchedule,
		ListenAddr:           DefaultListenAddr,
		LogLevel:             DefaultLogLevel,
		LogFormat:            "text",
	}
}

// BindFlags registers a flag for every setting on fs, using the current
// values of cfg as defaults.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Bucket, "bucket", cfg.Bucket, "the S3 bucket reports are uploaded to")
	fs.StringVar(&cfg.FolderPath, "folder-path", cfg.FolderPath, "key prefix of the uploaded reports, should end with a slash")
	fs.IntVar(&cfg.ForecastMonths, "forecast-months", cfg.ForecastMonths, "number of months to forecast")

	fs.StringVar(&cfg.AWS.Region, "aws-region", cfg.AWS.Region, "region of the AWS API clients")
	fs.StringVar(&cfg.AWS.Profile, "aws-profile", cfg.AWS.Profile, "shared config profile to load credentials from")
	fs.StringVar(&cfg.AWS.Endpoint, "aws-endpoint", cfg.AWS.Endpoint, "overrides the endpoint of every AWS API, for testing against an emulator")

	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "number of forecasts requested in parallel")
	fs.Float64Var(&cfg.RequestsPerSecond, "requests-per-second", cfg.RequestsPerSecond, "limits Cost Explorer requests per second, 0 disables the limit")
	fs.IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "number of forecasts kept in memory between the report passes, 0 disables caching")

	fs.StringVar(&cfg.Destination, "destination", cfg.Destination, "where reports are written: s3:// or file:///some/dir")

	fs.BoolVar(&cfg.EnableWideUpload, "enable-wide-upload", cfg.EnableWideUpload, "also upload the wide, spreadsheet friendly CSV")
	fs.StringVar(&cfg.WideKeyTemplate, "wide-key-template", cfg.WideKeyTemplate, "template of the wide CSV object key")
	fs.BoolVar(&cfg.WideXLSX, "wide-xlsx", cfg.WideXLSX, "also upload the wide format as an .xlsx workbook")
	fs.StringVar(&cfg.InvalidValuePolicy, "invalid-value-policy", cfg.InvalidValuePolicy, "how invalid values appear in the wide format: empty, sentinel or placeholder")
	fs.StringVar(&cfg.InvalidValueSentinel, "invalid-value-sentinel", cfg.InvalidValueSentinel, "text written for invalid values with the sentinel policy")

	fs.StringVar(&cfg.PushgatewayURL, "pushgateway-url", cfg.PushgatewayURL, "if set, metrics are pushed to this Pushgateway after each run")
	fs.StringVar(&cfg.Schedule, "schedule", cfg.Schedule, "cron expression the schedule command runs on")
	fs.StringVar(&cfg.ListenAddr, "listen-addr", cfg.ListenAddr, "address the schedule command serves /metrics and /healthz on")

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
}

// LoadFile decodes the YAML file at path into cfg, then sets the flags of fs
// that were changed again so they keep precedence over the file.
func LoadFile(path string, cfg *Config, fs *pflag.FlagSet) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	defer f.Close()

	// flag values point into cfg, so remember them before the file overwrites
	// the fields
	changed := map[string]string{}
	if fs != nil {
		fs.Visit(func(f *pflag.Flag) {
			changed[f.Name] = f.Value.String()
		})
	}

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	for name, value := range changed {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("could not reapply flag --%s: %w", name, err)
		}
	}
	return nil
}

// Validate checks settings that are needed by every command. The bucket is
// checked by the job itself since the lambda command receives it per event.
func (c Config) Validate() error {
	var errs []string
	if c.ForecastMonths < 0 {
		errs = append(errs, "forecast-months must not be negative")
	}
	if c.Concurrency < 1 {
		errs = append(errs, "concurrency must be at least 1")
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, "requests-per-second must not be negative")
	}
	if c.CacheSize < 0 {
		errs = append(errs, "cache-size must not be negative")
	}
	if _, err := report.ParseInvalidValuePolicy(c.InvalidValuePolicy); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := storage.ParseKeyTemplate(c.WideKeyTemplate); err != nil {
		errs = append(errs, err.Error())
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("unknown log format %q, must be text or json", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateSchedule checks the cron expression used by the schedule command.
func (c Config) ValidateSchedule() error {
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", c.Schedule, err)
	}
	return nil
}

// Params returns the job parameters of a run from the command line.
func (c Config) Params() job.Params {
	return job.Params{
		S3Bucket:       c.Bucket,
		S3FolderPath:   c.FolderPath,
		ForecastMonths: c.ForecastMonths,
	}
}

// MergeParams fills the empty fields of an event with the configured values.
func (c Config) MergeParams(event job.Params) job.Params {
	if event.S3Bucket == "" {
		event.S3Bucket = c.Bucket
	}
	if event.S3FolderPath == "" {
		event.S3FolderPath = c.FolderPath
	}
	if event.ForecastMonths == 0 {
		event.ForecastMonths = c.ForecastMonths
	}
	return event
}

func (c Config) AWSConfig() awsclient.Config {
	return awsclient.Config{
		Region:   c.AWS.Region,
		Profile:  c.AWS.Profile,
		Endpoint: c.AWS.Endpoint,
	}
}

func (c Config) CollectorConfig() report.CollectorConfig {
	return report.CollectorConfig{
		Concurrency:       c.Concurrency,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// JobOptions returns the wide-format options. Placeholders are drawn from a
// time seeded source.
func (c Config) JobOptions() (job.Options, error) {
	policy, err := report.ParseInvalidValuePolicy(c.InvalidValuePolicy)
	if err != nil {
		return job.Options{}, err
	}
	return job.Options{
		EnableWideUpload: c.EnableWideUpload,
		WideKeyTemplate:  c.WideKeyTemplate,
		WideXLSX:         c.WideXLSX,
		Policy: report.ValuePolicy{
			Invalid:  policy,
			Sentinel: c.InvalidValueSentinel,
			Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		},
	}, nil
}
