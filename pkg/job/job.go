package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/operator-framework/cost-forecaster/pkg/forecast"
	"github.com/operator-framework/cost-forecaster/pkg/report"
	"github.com/operator-framework/cost-forecaster/pkg/storage"
)

const (
	// LongFormatObjectName is appended to the folder path to form the key of
	// the Quicksight CSV.
	LongFormatObjectName = "ce_forcasts.csv"

	// DaysPerMonth converts the forecast horizon into days.
	DaysPerMonth = 30

	// StatusOK is returned when both passes completed and were uploaded.
	StatusOK = 200
)

var (
	ErrMissingBucket = errors.New("S3Bucket must be set")
	ErrInvalidMonths = errors.New("ForecastMonths must be at least 1")
)

// Params are the parameters of one invocation.
type Params struct {
	S3Bucket       string `json:"S3Bucket"`
	S3FolderPath   string `json:"S3FolderPath"`
	ForecastMonths int    `json:"ForecastMonths"`
}

// IntervalDays is the forecast horizon in days.
func (p Params) IntervalDays() int {
	return p.ForecastMonths * DaysPerMonth
}

// LongFormatKey is the object key of the Quicksight CSV.
func (p Params) LongFormatKey() string {
	return p.S3FolderPath + LongFormatObjectName
}

func (p Params) Validate() error {
	if strings.TrimSpace(p.S3Bucket) == "" {
		return ErrMissingBucket
	}
	if p.ForecastMonths < 1 {
		return ErrInvalidMonths
	}
	return nil
}

// Status is returned to the invoker.
type Status struct {
	StatusCode int `json:"statusCode"`
}

// Options control the wide-format pass.
type Options struct {
	// EnableWideUpload uploads the wide CSV in addition to the long one.
	EnableWideUpload bool
	// WideKeyTemplate names the wide CSV object. Empty means
	// storage.DefaultWideKeyTemplate.
	WideKeyTemplate string
	// WideXLSX also uploads an .xlsx rendering of the wide table next to the
	// wide CSV. Only used with EnableWideUpload.
	WideXLSX bool
	// Policy decides how invalid values are written in the wide format.
	Policy report.ValuePolicy
}

// Job runs the forecast passes and uploads their output.
type Job struct {
	logger    log.FieldLogger
	collector *report.Collector
	uploader  storage.Uploader
	opts      Options
	wideKey   *storage.KeyTemplate

	// now is overridden in tests.
	now func() time.Time
}

func New(logger log.FieldLogger, collector *report.Collector, uploader storage.Uploader, opts Options) (*Job, error) {
	wideKey, err := storage.ParseKeyTemplate(opts.WideKeyTemplate)
	if err != nil {
		return nil, err
	}
	return &Job{
		logger:    logger,
		collector: collector,
		uploader:  uploader,
		opts:      opts,
		wideKey:   wideKey,
		now:       time.Now,
	}, nil
}

// Run validates params, uploads the long format to
// <S3FolderPath>ce_forcasts.csv, then builds the wide format and uploads it
// when enabled. Enumeration and upload failures abort the run.
func (j *Job) Run(ctx context.Context, params Params) (Status, error) {
	if err := params.Validate(); err != nil {
		return Status{}, fmt.Errorf("invalid parameters: %w", err)
	}

	runID := uuid.New().String()
	logger := j.logger.WithFields(log.Fields{
		"runID":          runID,
		"bucket":         params.S3Bucket,
		"folderPath":     params.S3FolderPath,
		"forecastMonths": params.ForecastMonths,
	})

	// forecasts are only shared between the passes of one run
	j.collector.Reset()
	defer j.collector.Reset()

	began := time.Now()
	status, err := j.run(ctx, logger, params, j.now())
	runDurationHistogram.Observe(time.Since(began).Seconds())
	if err != nil {
		runsTotal.WithLabelValues("error").Inc()
		logger.WithError(err).Error("forecast run failed")
		return Status{}, err
	}
	runsTotal.WithLabelValues("success").Inc()
	lastSuccessGauge.SetToCurrentTime()
	logger.Infof("forecast run finished in %s", time.Since(began))
	return status, nil
}

func (j *Job) run(ctx context.Context, logger log.FieldLogger, params Params, start time.Time) (Status, error) {
	period := forecast.NewWindow(start, params.IntervalDays())
	logger.Debugf("forecast window is %s", period)

	long, err := j.formatLong(ctx, period)
	if err != nil {
		return Status{}, err
	}
	if err := j.uploader.Upload(ctx, params.S3Bucket, params.LongFormatKey(), []byte(long)); err != nil {
		return Status{}, err
	}
	logger.Infof("uploaded long format to %s", params.LongFormatKey())

	table, err := j.formatWide(ctx, period)
	if err != nil {
		return Status{}, err
	}
	if !j.opts.EnableWideUpload {
		logger.Debug("wide format upload disabled")
		return Status{StatusCode: StatusOK}, nil
	}

	key, err := j.wideKey.Render(storage.KeyData{
		Prefix: params.S3FolderPath,
		Bucket: params.S3Bucket,
		Months: params.ForecastMonths,
		Now:    start,
	})
	if err != nil {
		return Status{}, err
	}
	if err := j.uploader.Upload(ctx, params.S3Bucket, key, []byte(table.CSV())); err != nil {
		return Status{}, err
	}
	logger.Infof("uploaded wide format to %s", key)

	if j.opts.WideXLSX {
		data, err := table.XLSX()
		if err != nil {
			return Status{}, err
		}
		xlsxKey := XLSXKey(key)
		if err := j.uploader.Upload(ctx, params.S3Bucket, xlsxKey, data); err != nil {
			return Status{}, err
		}
		logger.Infof("uploaded wide workbook to %s", xlsxKey)
	}
	return Status{StatusCode: StatusOK}, nil
}

// FormatLong runs a collection pass over intervalDays and renders it in the
// long format.
func (j *Job) FormatLong(ctx context.Context, intervalDays int) (string, error) {
	return j.formatLong(ctx, forecast.NewWindow(j.now(), intervalDays))
}

func (j *Job) formatLong(ctx context.Context, period forecast.TimePeriod) (string, error) {
	collection, err := j.collector.Collect(ctx, period)
	if err != nil {
		return "", err
	}
	out := report.FormatLong(collection)
	reportRowsGauge.WithLabelValues("long").Set(float64(strings.Count(out, "\n")))
	return out, nil
}

// FormatWide runs a collection pass over intervalDays and lays it out in the
// wide format.
func (j *Job) FormatWide(ctx context.Context, intervalDays int) (*report.WideTable, error) {
	return j.formatWide(ctx, forecast.NewWindow(j.now(), intervalDays))
}

func (j *Job) formatWide(ctx context.Context, period forecast.TimePeriod) (*report.WideTable, error) {
	collection, err := j.collector.Collect(ctx, period)
	if err != nil {
		return nil, err
	}
	table := report.BuildWide(collection, j.opts.Policy)
	reportRowsGauge.WithLabelValues("wide").Set(float64(len(table.Rows)))
	return table, nil
}

// XLSXKey replaces the extension of key with .xlsx.
func XLSXKey(key string) string {
	if i := strings.LastIndex(key, "."); i > strings.LastIndex(key, "/") {
		key = key[:i]
	}
	return key + ".xlsx"
}
