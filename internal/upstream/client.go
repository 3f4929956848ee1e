// Package upstream implements the outbound RiskShield scoring client with
// outcome classification and a bounded retry policy. Breaker interaction
// lives in the orchestrator, not here: this package performs exactly one
// network request per Score invocation.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"finrisk/internal/applicant/models"
)

// Result is a successful scoring outcome.
type Result struct {
	Score          int
	Level          string
	CorrelationID  string
	AdditionalData map[string]any
}

// Scorer is the orchestrator's view of a scoring backend.
type Scorer interface {
	Score(ctx context.Context, in models.ApplicantInput) (*Result, error)
}

type scoreRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IDNumber  string `json:"idNumber"`
}

type scoreResponse struct {
	RiskScore      *int           `json:"riskScore"`
	RiskLevel      string         `json:"riskLevel"`
	CorrelationID  string         `json:"correlationId"`
	AdditionalData map[string]any `json:"additionalData"`
}

// Client calls the RiskShield scoring API. The underlying http.Client is
// created once and shared across all calls; its connection pool is safe for
// concurrent reuse.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient constructs the shared scoring client. connectTimeout bounds
// connection establishment, readTimeout bounds the whole attempt; both apply
// per attempt, not cumulatively across retries.
func NewClient(baseURL, apiKey string, connectTimeout, readTimeout time.Duration, log *slog.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: connectTimeout,
		MaxIdleConns:        32,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   readTimeout,
		},
		log: log,
	}
}

// Score performs one scoring request and classifies the outcome. The returned
// error, if any, is always a classified *Error.
func (c *Client) Score(ctx context.Context, in models.ApplicantInput) (*Result, error) {
	body, err := json.Marshal(scoreRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IDNumber:  in.IDNumber,
	})
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "encode request", err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/score", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "build request", err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classifyTransportError(ctx, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	return c.classifyResponse(resp)
}

func (c *Client) classifyTransportError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
		return &Error{Kind: KindCanceled, Message: "request canceled by caller", err: err}
	}
	// Connection failures and read timeouts are indistinguishable to the
	// caller: the upstream did not answer in time.
	return &Error{Kind: KindTimeout, Message: "request did not complete", err: err}
}

func (c *Client) classifyResponse(resp *http.Response) (*Result, error) {
	switch {
	case resp.StatusCode == http.StatusOK:
		return c.decodeSuccess(resp)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &Error{Kind: KindAuth, Status: resp.StatusCode, Message: "authentication rejected"}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{Kind: KindRateLimit, Status: resp.StatusCode, Message: "rate limited"}
	case resp.StatusCode == http.StatusGatewayTimeout:
		return nil, &Error{Kind: KindTimeout, Status: resp.StatusCode, Message: "upstream timed out"}
	default:
		return nil, &Error{
			Kind:    KindUpstream,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}
}

func (c *Client) decodeSuccess(resp *http.Response) (*Result, error) {
	var body scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &Error{Kind: KindUpstream, Status: resp.StatusCode, Message: "malformed response body", err: err}
	}
	if body.RiskScore == nil || *body.RiskScore < 0 || *body.RiskScore > 100 {
		return nil, &Error{Kind: KindUpstream, Status: resp.StatusCode, Message: "riskScore missing or out of range"}
	}

	return &Result{
		Score:          *body.RiskScore,
		Level:          body.RiskLevel,
		CorrelationID:  body.CorrelationID,
		AdditionalData: body.AdditionalData,
	}, nil
}
