// Package nhtsa decodes VINs with the public NHTSA vPIC service.
package nhtsa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/nekruzvatanshoev/carval/pkg/carval/apperr"
	"github.com/nekruzvatanshoev/carval/pkg/carval/config"
	"github.com/nekruzvatanshoev/carval/pkg/carval/dal"
	"github.com/nekruzvatanshoev/carval/pkg/carval/logger"
	"github.com/nekruzvatanshoev/carval/pkg/carval/metrics"
	"github.com/nekruzvatanshoev/carval/pkg/carval/vin"
)

const serviceName = "nhtsa"

// responseSchema is the minimum shape a DecodeVin payload must have.
var responseSchema = gojsonschema.NewGoLoader(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"Results"},
	"properties": map[string]interface{}{
		"Results": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"Variable": map[string]interface{}{"type": []interface{}{"string", "null"}},
				},
			},
		},
	},
})

type result struct {
	Variable string         `json:"Variable"`
	Value    dal.FlexString `json:"Value"`
}

type decodeResponse struct {
	Results []result `json:"Results"`
}

type Client struct {
	cfg        config.NHTSAConfig
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg config.NHTSAConfig, log logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     log.With(map[string]interface{}{"component": "nhtsa"}),
	}
}

// DecodeVIN accepts any 17 characters; the upstream service judges the rest.
func (c *Client) DecodeVIN(ctx context.Context, rawVIN string) (*dal.DecodedVehicle, error) {
	v := strings.TrimSpace(rawVIN)
	if err := vin.CheckLength(v); err != nil {
		return nil, err
	}

	started := time.Now()
	outcome := "success"
	defer func() {
		metrics.ObserveRemote(serviceName, "decode_vin", outcome, started)
	}()

	body, status, err := c.get(ctx, v)
	if err != nil {
		outcome = "transport_error"
		c.logger.Warn("vin decode request failed", map[string]interface{}{
			"vin":   v,
			"error": err.Error(),
		})
		return nil, apperr.FromTransport(ctx, err, "NHTSA API timeout", "Connection error - unable to reach NHTSA")
	}

	if status != http.StatusOK {
		outcome = fmt.Sprintf("status_%d", status)
		c.logger.Warn("vin decode returned non-200", map[string]interface{}{
			"vin":    v,
			"status": status,
		})
		return nil, apperr.NewRemoteError(status, fmt.Sprintf("NHTSA API error: %d", status))
	}

	parsed, err := parseResponse(body)
	if err != nil {
		outcome = "malformed"
		c.logger.Warn("vin decode payload rejected", map[string]interface{}{
			"vin":   v,
			"error": err.Error(),
		})
		return nil, err
	}

	decoded := reshape(v, indexResults(parsed.Results))
	c.logger.Debug("vin decoded", map[string]interface{}{
		"vin":  v,
		"make": decoded.Make,
	})
	return &decoded, nil
}

func (c *Client) get(ctx context.Context, v string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/DecodeVin/%s?format=json", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(v))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("sending vin decode request", map[string]interface{}{"vin": v})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

func parseResponse(body []byte) (*decodeResponse, error) {
	validation, err := gojsonschema.Validate(responseSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, apperr.NewMalformedResponseError("Invalid response from NHTSA", err)
	}
	if !validation.Valid() {
		errs := make([]string, len(validation.Errors()))
		for i, desc := range validation.Errors() {
			errs[i] = desc.String()
		}
		return nil, apperr.NewMalformedResponseError("Invalid response from NHTSA",
			fmt.Errorf("payload validation failed: %v", errs))
	}

	var parsed decodeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperr.NewMalformedResponseError("Invalid response from NHTSA", err)
	}
	return &parsed, nil
}
