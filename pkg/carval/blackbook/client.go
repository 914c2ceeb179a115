// Package blackbook talks to the Black Book used-vehicle GraphQL service and
// aggregates its per-province pricing.
package blackbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nekruzvatanshoev/carval/pkg/carval/apperr"
	"github.com/nekruzvatanshoev/carval/pkg/carval/config"
	"github.com/nekruzvatanshoev/carval/pkg/carval/dal"
	"github.com/nekruzvatanshoev/carval/pkg/carval/logger"
	"github.com/nekruzvatanshoev/carval/pkg/carval/metrics"
	"github.com/nekruzvatanshoev/carval/pkg/carval/province"
	"github.com/nekruzvatanshoev/carval/pkg/carval/units"
	"github.com/nekruzvatanshoev/carval/pkg/carval/vin"
)

const serviceName = "blackbook"

// Client is safe for concurrent use; it holds only read-only configuration.
type Client struct {
	cfg        config.BlackbookConfig
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg config.BlackbookConfig, log logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     log.With(map[string]interface{}{"component": "blackbook"}),
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

func (r *graphQLResponse) hasErrors() bool {
	return len(r.Errors) > 0 && !bytes.Equal(r.Errors, []byte("null"))
}

type usedVehiclesResult struct {
	ErrorCount   int               `json:"error_count"`
	WarningCount int               `json:"warning_count"`
	MessageList  []dal.Message     `json:"message_list"`
	UsedVehicles []dal.UsedVehicle `json:"usedvehicles"`
}

type usedVehiclesData struct {
	UsedVehicles *usedVehiclesResult `json:"usedvehicles"`
}

// rawResponse is what came back over the wire before any interpretation.
type rawResponse struct {
	status int
	body   []byte
}

// TestCredentials sends a trivial query to check the configured credentials.
func (c *Client) TestCredentials(ctx context.Context) (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}

	resp, err := c.post(ctx, "test_credentials", c.cfg.TestTimeout, graphQLRequest{Query: testQuery})
	if err != nil {
		return "", apperr.FromTransport(ctx, err, "Request timeout - check GraphQL URL", "Connection error - check GraphQL URL")
	}

	switch resp.status {
	case http.StatusOK:
		return "Credentials are valid and connection successful", nil
	case http.StatusUnauthorized:
		return "", apperr.NewInvalidCredentialsError("Invalid credentials (401 Unauthorized)")
	default:
		return "", apperr.NewRemoteError(resp.status, fmt.Sprintf("Connection failed with status %d", resp.status))
	}
}

// GetSchemaInfo returns the raw introspection payload.
func (c *Client) GetSchemaInfo(ctx context.Context) (map[string]interface{}, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, "schema", c.cfg.Timeout, graphQLRequest{Query: introspectionQuery})
	if err != nil {
		return nil, apperr.FromTransport(ctx, err, "Request timeout", "Connection error - unable to reach Blackbook API")
	}
	if resp.status != http.StatusOK {
		return nil, apperr.NewRemoteError(resp.status, fmt.Sprintf("Schema introspection failed: %d", resp.status))
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, apperr.NewMalformedResponseError("Schema introspection returned invalid JSON", err)
	}
	return payload, nil
}

// FetchVehicleData looks up a VIN under default (no province) pricing.
func (c *Client) FetchVehicleData(ctx context.Context, rawVIN string, odometerKm int) (*dal.VehicleData, error) {
	v, odometerMiles, err := c.prepare(rawVIN, odometerKm)
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, "fetch_vehicle", c.cfg.Timeout, graphQLRequest{
		Query:     vehicleDataQuery,
		Variables: map[string]interface{}{"vin": v},
	})
	if err != nil {
		return nil, apperr.FromTransport(ctx, err, "Request timeout", "Connection error - unable to reach Blackbook API")
	}

	switch resp.status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, apperr.NewInvalidCredentialsError("Invalid credentials")
	default:
		return nil, apperr.NewRemoteError(resp.status,
			fmt.Sprintf("Blackbook API error (%d): %s", resp.status, upstreamErrorMessage(resp)))
	}

	result, err := decodeUsedVehicles(resp.body)
	if err != nil {
		return nil, err
	}

	if result.ErrorCount > 0 {
		var errorMessages []string
		for _, msg := range result.MessageList {
			if strings.ToLower(msg.Type) == "error" {
				errorMessages = append(errorMessages, msg.Description)
			}
		}
		if len(errorMessages) > 0 {
			return nil, apperr.NewValidationError(strings.Join(errorMessages, ", "))
		}
		return nil, apperr.NewValidationError("Vehicle lookup failed - please check the VIN and try again")
	}

	if len(result.UsedVehicles) == 0 {
		return nil, apperr.NewNotFoundError("No vehicle data found for this VIN")
	}

	messages := result.MessageList
	if messages == nil {
		messages = []dal.Message{}
	}

	return &dal.VehicleData{
		Vehicle:       result.UsedVehicles[0],
		WarningCount:  result.WarningCount,
		Messages:      messages,
		OdometerKm:    odometerKm,
		OdometerMiles: odometerMiles,
	}, nil
}

// FetchPricingCards returns one record per province, in canonical order, or
// an error. Partial results are never returned.
func (c *Client) FetchPricingCards(ctx context.Context, rawVIN string, odometerKm int) ([]dal.PricingRecord, error) {
	v, odometerMiles, err := c.prepare(rawVIN, odometerKm)
	if err != nil {
		return nil, err
	}

	info, err := c.FetchVehicleInfo(ctx, v)
	if err != nil {
		return nil, err
	}

	return NewAggregator(c, c.logger).Aggregate(ctx, *info, odometerKm, odometerMiles)
}

// FetchVehicleInfo fetches the identity fields shared by every province card.
func (c *Client) FetchVehicleInfo(ctx context.Context, v string) (*dal.VehicleInfo, error) {
	resp, err := c.post(ctx, "vehicle_info", c.cfg.Timeout, graphQLRequest{
		Query:     vehicleInfoQuery,
		Variables: map[string]interface{}{"vin": v},
	})
	if err != nil {
		return nil, apperr.FromTransport(ctx, err, "Request timeout", "Connection error - unable to reach Blackbook API")
	}

	switch resp.status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, apperr.NewInvalidCredentialsError("Invalid credentials")
	default:
		return nil, apperr.NewRemoteError(resp.status, fmt.Sprintf("GraphQL API error: %d", resp.status))
	}

	result, err := decodeUsedVehicles(resp.body)
	if err != nil {
		return nil, err
	}
	if result.ErrorCount > 0 || len(result.UsedVehicles) == 0 {
		return nil, apperr.NewNotFoundError("No vehicle data found for this VIN")
	}

	first := result.UsedVehicles[0]
	return &dal.VehicleInfo{
		VIN:         v,
		UVC:         first.UVC,
		ModelYear:   first.ModelYear,
		Make:        first.Make,
		Model:       first.Model,
		PublishDate: first.PublishDate,
	}, nil
}

// FetchRegionPricing issues one province-scoped pricing query.
func (c *Client) FetchRegionPricing(ctx context.Context, v string, odometerMiles int, region province.Region) (*dal.RegionPricing, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, "region_pricing", c.cfg.Timeout, graphQLRequest{
		Query: regionPricingQuery,
		Variables: map[string]interface{}{
			"vin":      v,
			"mileage":  odometerMiles,
			"province": region.Code,
		},
	})
	if err != nil {
		return nil, apperr.Wrap(
			apperr.FromTransport(ctx, err, "Request timeout", "Connection error - unable to reach Blackbook API"),
			fmt.Sprintf("Error fetching %s pricing", region.Name),
		)
	}
	if resp.status != http.StatusOK {
		return nil, apperr.NewRemoteError(resp.status, fmt.Sprintf("Pricing API error for %s: %d", region.Name, resp.status))
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(resp.body, &envelope); err != nil {
		return nil, apperr.NewMalformedResponseError(fmt.Sprintf("Pricing API returned invalid JSON for %s", region.Name), err)
	}
	if envelope.hasErrors() {
		return nil, apperr.NewRemoteError(resp.status, fmt.Sprintf("Pricing API errors for %s: %s", region.Name, envelope.Errors))
	}

	result, err := decodeData(envelope.Data)
	if err != nil {
		return nil, err
	}
	if len(result.UsedVehicles) == 0 {
		return nil, apperr.NewNotFoundError(fmt.Sprintf("No pricing data found for %s", region.Name))
	}

	first := result.UsedVehicles[0]
	return &dal.RegionPricing{
		AdjustedWholesale: first.AdjustedWholeRough,
		AdjustedRetail:    first.AdjustedRetailRough,
		AdjustedTradein:   first.AdjustedTradeinRough,
		Series:            first.Series,
		Style:             first.Style,
	}, nil
}

// prepare runs the local checks. Nothing goes over the wire if it fails.
func (c *Client) prepare(rawVIN string, odometerKm int) (string, int, error) {
	if c.cfg.GraphQLURL == "" {
		return "", 0, apperr.NewConfigurationError("GraphQL URL not configured")
	}
	v, err := vin.Parse(rawVIN)
	if err != nil {
		return "", 0, err
	}
	if odometerKm < 0 {
		return "", 0, apperr.NewValidationError("Odometer must be a positive number")
	}
	if err := c.checkConfig(); err != nil {
		return "", 0, err
	}
	return v, units.KmToMi(odometerKm), nil
}

func (c *Client) checkConfig() error {
	if c.cfg.GraphQLURL == "" {
		return apperr.NewConfigurationError("GraphQL URL not configured")
	}
	if c.cfg.ID == "" || c.cfg.Password == "" {
		return apperr.NewConfigurationError("Blackbook credentials not configured")
	}
	return nil
}

func (c *Client) post(ctx context.Context, operation string, timeout time.Duration, body graphQLRequest) (*rawResponse, error) {
	started := time.Now()
	outcome := "success"
	defer func() {
		metrics.ObserveRemote(serviceName, operation, outcome, started)
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		outcome = "marshal_error"
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GraphQLURL, bytes.NewReader(payload))
	if err != nil {
		outcome = "request_error"
		return nil, err
	}
	req.SetBasicAuth(c.cfg.ID, c.cfg.Password)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending graphql request", map[string]interface{}{"operation": operation})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "transport_error"
		c.logger.Warn("graphql request failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "transport_error"
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		outcome = fmt.Sprintf("status_%d", resp.StatusCode)
		c.logger.Warn("graphql request returned non-200", map[string]interface{}{
			"operation": operation,
			"status":    resp.StatusCode,
		})
	}

	return &rawResponse{status: resp.StatusCode, body: data}, nil
}

func decodeUsedVehicles(body []byte) (*usedVehiclesResult, error) {
	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperr.NewMalformedResponseError("Blackbook API returned invalid JSON", err)
	}
	if envelope.hasErrors() {
		return nil, apperr.NewRemoteError(http.StatusOK, fmt.Sprintf("GraphQL errors: %s", envelope.Errors))
	}
	return decodeData(envelope.Data)
}

func decodeData(data json.RawMessage) (*usedVehiclesResult, error) {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return &usedVehiclesResult{}, nil
	}
	var parsed usedVehiclesData
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, apperr.NewMalformedResponseError("Unexpected usedvehicles payload", err)
	}
	if parsed.UsedVehicles == nil {
		return &usedVehiclesResult{}, nil
	}
	return parsed.UsedVehicles, nil
}

// upstreamErrorMessage prefers the JSON error/message field, then the raw
// body, then the bare status.
func upstreamErrorMessage(resp *rawResponse) string {
	var body map[string]interface{}
	if err := json.Unmarshal(resp.body, &body); err == nil {
		for _, key := range []string{"error", "message"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
		return string(bytes.TrimSpace(resp.body))
	}
	if text := strings.TrimSpace(string(resp.body)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", resp.status)
}
