// Package dwd provides a climate provider over the Deutscher Wetterdienst
// open-data monthly degree-day and degree-hour files.
package dwd

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"consumption-interp/core/types"
	"consumption-interp/internal/errors"
	"consumption-interp/internal/logging"
)

const (
	// DefaultHeatingBaseURL lists gradtage_YYYYMM.csv files
	DefaultHeatingBaseURL = "https://opendata.dwd.de/climate_environment/CDC/derived_germany/techn/monthly/heating_degreedays/hdd_3807/recent/"

	// DefaultCoolingBaseURL lists kuehlgrade_18_0_YYYYMM.csv files
	DefaultCoolingBaseURL = "https://opendata.dwd.de/climate_environment/CDC/derived_germany/techn/monthly/cooling_degreehours/cdh_18/recent/"
)

// Regions are the station cities published in both file families
var Regions = []string{
	"AACHEN", "AUGSBURG", "BERLIN", "BREMEN", "CHEMNITZ", "DARMSTADT", "DRESDEN",
	"ESSEN", "FRANKFURT", "FREIBURG", "HAMBURG", "HANNOVER", "KARLSRUHE",
	"KIEL", "KOELN", "LEIPZIG", "MAGDEBURG", "MANNHEIM", "MUEHLHAUSEN",
	"MUENCHEN-STADT", "NUREMBERG", "ROSTOCK", "STUTTGART", "TRIER", "WIESBADEN",
}

// Config configures the DWD client
type Config struct {
	HeatingBaseURL string
	CoolingBaseURL string

	// Timeout bounds a single file download; zero disables it
	Timeout time.Duration

	// RetryCount is the number of retries for failed downloads
	RetryCount int
}

// DefaultConfig returns the public DWD endpoints
func DefaultConfig() Config {
	return Config{
		HeatingBaseURL: DefaultHeatingBaseURL,
		CoolingBaseURL: DefaultCoolingBaseURL,
		Timeout:        30 * time.Second,
	}
}

// Client downloads and parses one DWD file per requested month
type Client struct {
	http   *resty.Client
	config Config
}

// NewClient creates a DWD client
func NewClient(cfg Config) *Client {
	if cfg.HeatingBaseURL == "" {
		cfg.HeatingBaseURL = DefaultHeatingBaseURL
	}
	if cfg.CoolingBaseURL == "" {
		cfg.CoolingBaseURL = DefaultCoolingBaseURL
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "text/csv")
	return &Client{http: client, config: cfg}
}

// Name returns "dwd"
func (c *Client) Name() string {
	return "dwd"
}

// FetchDegreeMeasure downloads the month's file and extracts the region's value
func (c *Client) FetchDegreeMeasure(ctx context.Context, category types.Category, region string, month types.Month) (float64, error) {
	layout, base, err := c.source(category)
	if err != nil {
		return 0, err
	}
	period := month.String()
	url := strings.TrimSuffix(base, "/") + "/" + layout.FileName(month)

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return 0, errors.DataUnavailable(region, period, err).WithContext(errors.KeyCategory, category.String())
	}

	logging.Debug("DWD file fetched",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(resp.Body())),
	)

	if resp.StatusCode() >= 400 {
		cause := fmt.Errorf("%s returned %s", url, resp.Status())
		if resp.StatusCode() == http.StatusNotFound {
			cause = fmt.Errorf("%s is not published", layout.FileName(month))
		}
		return 0, errors.DataUnavailable(region, period, cause).WithContext(errors.KeyCategory, category.String())
	}

	value, err := ParseMeasure(bytes.NewReader(resp.Body()), layout, region)
	if stderrors.Is(err, errRegionMissing) {
		return 0, errors.RegionNotFound(region, period).WithContext(errors.KeyCategory, category.String())
	}
	if err != nil {
		return 0, errors.DataUnavailable(region, period, err).WithContext(errors.KeyCategory, category.String())
	}
	return value, nil
}

func (c *Client) source(category types.Category) (Layout, string, error) {
	switch category {
	case types.CategoryHeating:
		return HeatingLayout, c.config.HeatingBaseURL, nil
	case types.CategoryCooling:
		return CoolingLayout, c.config.CoolingBaseURL, nil
	default:
		return Layout{}, "", errors.InvalidInput("category", category.String()+" has no degree measure")
	}
}
