package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/hive-corporation/creditrisk/internal/adapter/metrics"
	"github.com/hive-corporation/creditrisk/internal/config"
)

// ResilientClient wraps an HTTP client with circuit breaker and retry logic
type ResilientClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	config  config.ResilienceConfig
}

// NewResilientClient creates a new resilient HTTP client. name identifies the
// circuit breaker in logs.
func NewResilientClient(name string, cfg config.ResilienceConfig) *ResilientClient {
	client := &http.Client{
		Timeout: cfg.RequestTimeout,
	}

	var breaker *gobreaker.CircuitBreaker
	if cfg.EnableCircuitBreaker {
		settings := gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    0, // Don't reset counts automatically
			Timeout:     cfg.CircuitTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.MaxFailures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				slog.Warn("⚡ circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
				if to == gobreaker.StateOpen {
					metrics.RecordError("circuit_open")
				}
			},
		}
		breaker = gobreaker.NewCircuitBreaker(settings)
	}

	return &ResilientClient{
		client:  client,
		breaker: breaker,
		config:  cfg,
	}
}

// Do executes an HTTP request with circuit breaker and retry logic.
// Responses with a status of 400 or above are returned as errors.
func (c *ResilientClient) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.doWithRetry(req)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doWithRetry(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			metrics.RecordError("circuit_open")
			return nil, fmt.Errorf("circuit breaker is open: %w", err)
		}
		return nil, err
	}

	return result.(*http.Response), nil
}

// doWithRetry executes an HTTP request with exponential backoff retry logic
func (c *ResilientClient) doWithRetry(req *http.Request) (*http.Response, error) {
	// Buffer the body once so every attempt sends the same payload.
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	attempt := func() (*http.Response, error) {
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}
		return c.client.Do(req)
	}

	if c.config.MaxRetries == 0 {
		resp, err := attempt()
		if err != nil {
			metrics.RecordError("connection")
			return nil, err
		}
		if resp.StatusCode >= 400 {
			c.recordErrorFromResponse(resp)
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		}
		return resp, nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.config.InitialInterval
	expBackoff.MaxInterval = c.config.MaxInterval
	expBackoff.Multiplier = 2.0
	expBackoff.MaxElapsedTime = 0 // bounded by MaxRetries instead

	retryBackoff := backoff.WithContext(
		backoff.WithMaxRetries(expBackoff, uint64(c.config.MaxRetries)),
		req.Context(),
	)

	var resp *http.Response
	var lastErr error

	operation := func() error {
		var err error
		resp, err = attempt()
		if err != nil {
			lastErr = err
			metrics.RecordError("connection")
			if c.shouldRetry(err, nil) {
				return err
			}
			return backoff.Permanent(err)
		}

		if c.shouldRetry(nil, resp) {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			c.recordErrorFromResponse(resp)
			resp.Body.Close()
			return lastErr
		}

		if resp.StatusCode >= 400 {
			c.recordErrorFromResponse(resp)
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			return backoff.Permanent(lastErr)
		}

		return nil
	}

	if err := backoff.Retry(operation, retryBackoff); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, fmt.Errorf("request failed after retries: %w", lastErr)
	}

	return resp, nil
}

// shouldRetry determines if an error or response should trigger a retry
func (c *ResilientClient) shouldRetry(err error, resp *http.Response) bool {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		msg := err.Error()
		return strings.Contains(msg, "connection refused") ||
			strings.Contains(msg, "connection reset") ||
			strings.Contains(msg, "EOF")
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
			http.StatusBadGateway,
			http.StatusInternalServerError:
			return true
		}
	}

	return false
}

// recordErrorFromResponse records the appropriate error metric based on response status
func (c *ResilientClient) recordErrorFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		metrics.RecordError("auth")
	case http.StatusTooManyRequests:
		metrics.RecordError("rate_limit")
	case http.StatusRequestTimeout:
		metrics.RecordError("timeout")
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		metrics.RecordError("server_error")
	default:
		metrics.RecordError("http_error")
	}
}
