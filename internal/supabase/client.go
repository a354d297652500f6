// Package supabase is a minimal client for the hosted project's SQL RPC and table REST endpoints.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/Proton-105/zaza-provision/internal/errors"
	"github.com/Proton-105/zaza-provision/pkg/config"
	"github.com/Proton-105/zaza-provision/pkg/logger"
)

const (
	headerAPIKey        = "apikey"
	headerCorrelationID = "X-Correlation-ID"

	maxErrorBody = 512
)

// Client authenticates every call with the service-role secret, both as apikey and as bearer token.
type Client struct {
	rpcURL         string
	restURL        string
	serviceKey     string
	checkResponses bool
	httpClient     *http.Client
	log            *slog.Logger
}

type execRequest struct {
	Query string `json:"query"`
}

// NewClient builds a client from cfg. Each stage builds its own.
func NewClient(cfg config.SupabaseConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		rpcURL:         cfg.RPCEndpoint(),
		restURL:        cfg.RESTEndpoint(),
		serviceKey:     cfg.ServiceKey,
		checkResponses: cfg.CheckResponses,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		log:            log,
	}
}

// Exec posts query to the SQL execution function.
// With response checking disabled only transport failures are reported.
func (c *Client) Exec(ctx context.Context, query string) error {
	data, err := json.Marshal(execRequest{Query: query})
	if err != nil {
		return apperrors.NewRemoteCallError("encode rpc body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(data))
	if err != nil {
		return apperrors.NewRemoteCallError("build rpc request", err)
	}
	c.addHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewRemoteCallError("rpc exec", err)
	}
	defer resp.Body.Close()

	if !c.checkResponses {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Debug("rpc exec sent", slog.Int("status", resp.StatusCode))
		return nil
	}

	return checkStatus("rpc exec", resp)
}

// SelectRows reads up to limit rows of table, unfiltered, decoding the JSON array into out.
func (c *Client) SelectRows(ctx context.Context, table string, limit int, out any) error {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/%s?%s", c.restURL, url.PathEscape(table), params.Encode())
	op := fmt.Sprintf("select %s", table)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return apperrors.NewRemoteCallError(op, err)
	}
	c.addHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewRemoteCallError(op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewRemoteCallError(fmt.Sprintf("decode %s", table), err)
	}

	return nil
}

func (c *Client) addHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set(headerAPIKey, c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if runID := logger.RunIDFromContext(ctx); runID != "" {
		req.Header.Set(headerCorrelationID, runID)
	}
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return apperrors.NewHTTPStatusError(op, resp.StatusCode, string(bytes.TrimSpace(body)))
}
