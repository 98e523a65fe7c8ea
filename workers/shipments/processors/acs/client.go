package acs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"courier-bridge-service/config"
	"courier-bridge-service/workers/shipments/processors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	MethodCreateVoucher     = "ACS_Create_Voucher"
	MethodPrintVoucher      = "ACS_Print_Voucher_V2"
	MethodDeleteVoucher     = "ACS_Delete_Voucher"
	MethodIssuePickupList   = "ACS_Issue_Pickup_List"
	MethodPrintPickupList   = "ACS_Print_Pickup_List"
	MethodTrackingSummary   = "ACS_Trackingsummary"
	MethodAddressValidation = "ACS_Address_Validation"
)

const dateLayout = "2006-01-02"

// Client talks to the ACS REST endpoint. Every method goes through Invoke,
// which posts {ACSAlias, ACSInputParameters} to the one URL.
type Client struct {
	config     config.CourierConfig
	logger     *zap.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(cfg config.CourierConfig, logger *zap.Logger, opts ...Option) *Client {
	interval := cfg.MinCallInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cfg.Language == "" {
		cfg.Language = "GR"
	}

	c := &Client{
		config:     cfg,
		logger:     logger.Named("acs"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) credentials() map[string]any {
	return map[string]any{
		"Company_ID":       c.config.CompanyId,
		"Company_Password": c.config.CompanyPassword,
		"User_ID":          c.config.UserId,
		"User_Password":    c.config.UserPassword,
	}
}

// Invoke calls one courier method. It waits on the rate limiter first, so
// callers may block briefly before the request is sent.
func (c *Client) Invoke(ctx context.Context, alias string, params map[string]any) (*Output, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &processors.CourierError{Kind: processors.ErrUnavailable, Method: alias, Message: err.Error()}
	}

	merged := c.credentials()
	for k, v := range params {
		if v == nil {
			continue
		}
		merged[k] = v
	}

	body, err := json.Marshal(request{Alias: alias, Parameters: merged})
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", alias, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseUri, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("AcsApiKey", c.config.ApiKey)

	requestID := uuid.New().String()
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Courier request failed",
			zap.String("method", alias),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, &processors.CourierError{Kind: processors.ErrUnavailable, Method: alias, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	c.logger.Info("Courier call",
		zap.String("method", alias),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if err := statusError(alias, resp); err != nil {
		return nil, err
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &processors.CourierError{Kind: processors.ErrUnavailable, Method: alias, Message: fmt.Sprintf("failed to decode response: %v", err)}
	}

	if apiResp.HasError {
		msg := apiResp.ErrorMessage
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, &processors.CourierError{Kind: processors.ErrValidation, Method: alias, Message: msg}
	}

	return &apiResp.Output, nil
}

func statusError(alias string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusForbidden:
		return &processors.CourierError{Kind: processors.ErrAuth, Method: alias, Message: "API Key authentication failed (403 Forbidden)"}
	case resp.StatusCode == http.StatusNotAcceptable:
		return &processors.CourierError{Kind: processors.ErrRateLimited, Method: alias, Message: "Rate limit exceeded (406 Not Acceptable)"}
	}

	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	kind := processors.ErrValidation
	if resp.StatusCode >= 500 {
		kind = processors.ErrUnavailable
	}
	return &processors.CourierError{
		Kind:    kind,
		Method:  alias,
		Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(bodyBytes)),
	}
}

func (c *Client) today() string {
	return c.now().Format(dateLayout)
}

// valueError turns an Error_Message carried inside an otherwise successful
// response into a validation error.
func valueError(alias, msg, fallback string) error {
	if msg == "" {
		msg = fallback
	}
	return &processors.CourierError{Kind: processors.ErrValidation, Method: alias, Message: msg}
}
