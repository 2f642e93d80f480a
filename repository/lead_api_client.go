package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"loan-referral/domain"
)

// SubmissionError is a non-2xx answer from the lead intake API.
type SubmissionError struct {
	Status  int
	Message string
}

func (e *SubmissionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("lead api: status %d", e.Status)
	}
	return fmt.Sprintf("lead api: status %d: %s", e.Status, e.Message)
}

type LeadAPIConfig struct {
	BaseURL         string
	CustomerPath    string
	ApplicationPath string
	Timeout         time.Duration
}

// LeadAPIClient forwards leads to the external intake API.
type LeadAPIClient struct {
	client *fasthttp.Client
	cfg    LeadAPIConfig
	logger *zap.Logger
}

func NewLeadAPIClient(cfg LeadAPIConfig, logger *zap.Logger) *LeadAPIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadAPIClient{
		client: &fasthttp.Client{
			Name:                "loan-referral",
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

func (c *LeadAPIClient) SubmitCustomer(ctx context.Context, payload domain.LeadPayload) error {
	return c.post(ctx, c.cfg.CustomerPath, payload)
}

func (c *LeadAPIClient) SubmitApplication(ctx context.Context, fields map[string]any) error {
	return c.post(ctx, c.cfg.ApplicationPath, fields)
}

func (c *LeadAPIClient) post(ctx context.Context, path string, body any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode lead: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(data)

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	start := time.Now()
	if timeout > 0 {
		err = c.client.DoTimeout(req, resp, timeout)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		return fmt.Errorf("post %s: %w", uri, err)
	}

	status := resp.StatusCode()
	c.logger.Debug("lead api call",
		zap.String("uri", uri),
		zap.Int("status", status),
		zap.Duration("took", time.Since(start)))

	if status < 200 || status >= 300 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(resp.Body(), &msg)
		return &SubmissionError{Status: status, Message: msg.Message}
	}
	return nil
}
