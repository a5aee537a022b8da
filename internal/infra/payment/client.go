package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config 建構時注入, 不使用 process 全域變數
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client Stripe 形狀 API 的薄封裝, form-encoded 請求
type Client struct {
	cf         Config
	httpClient *http.Client
}

func NewClient(cf Config) *Client {
	if cf.Timeout == 0 {
		cf.Timeout = 10 * time.Second
	}
	return &Client{
		cf: cf,
		httpClient: &http.Client{
			Timeout: cf.Timeout,
		},
	}
}

var _ ProcessorClient = (*Client)(nil)

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.AmountMinor, 10))
	form.Set("currency", params.Currency)
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cf.BaseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.cf.APIKey)
	// 同一把 key 重送, 金流商保證不會重複開 intent
	req.Header.Set("Idempotency-Key", params.IdempotencyKey)

	return c.do(req)
}

func (c *Client) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cf.BaseURL+"/v1/payment_intents/"+url.PathEscape(intentID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cf.APIKey)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Intent, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("processor request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("processor rejected request (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("processor rejected request (%d)", resp.StatusCode)
	}

	var intent struct {
		ID            string `json:"id"`
		ClientSecret  string `json:"client_secret"`
		Status        string `json:"status"`
		LatestCharge  string `json:"latest_charge"`
		PaymentMethod string `json:"payment_method"`
		LastError     *struct {
			Message string `json:"message"`
		} `json:"last_payment_error"`
	}
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("decode processor response: %w", err)
	}

	result := &Intent{
		ID:             intent.ID,
		ClientSecret:   intent.ClientSecret,
		Status:         intent.Status,
		LatestChargeID: intent.LatestCharge,
		PaymentMethod:  intent.PaymentMethod,
	}
	if intent.LastError != nil {
		result.LastError = intent.LastError.Message
	}
	return result, nil
}
