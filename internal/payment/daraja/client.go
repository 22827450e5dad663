// Package daraja is a minimal client for the Safaricom Daraja API, covering
// OAuth client-credentials token acquisition and the STK push (Lipa na M-Pesa
// Online) initiation call. The client is constructed explicitly and injected
// wherever payments are initiated; nothing in here is a singleton.
package daraja

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/smilesniffer/ticketing-backend/internal"
)

const (
	oauthPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	// TransactionType for customer-initiated paybill pushes; the only type
	// this service uses.
	transactionType = "CustomerPayBillOnline"
)

type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string
	HTTPTimeout    time.Duration
}

// STKPushRequest mirrors the Daraja request body byte for byte. Field names
// are part of the wire contract and must not be renamed.
type STKPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// PushParams is what a caller supplies per push; credentials, timestamp and
// password are derived inside the client.
type PushParams struct {
	PhoneNumber      string
	Amount           string
	AccountReference string
	Description      string
}

type tokenCache struct {
	mu     sync.RWMutex
	token  string
	expiry time.Time
}

func (tc *tokenCache) set(token string, expiresIn int) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.token = token
	// refresh one minute before the gateway expires the token
	tc.expiry = time.Now().Add(time.Duration(expiresIn-60) * time.Second)
}

func (tc *tokenCache) get() (string, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	if tc.token != "" && time.Now().Before(tc.expiry) {
		return tc.token, true
	}
	return "", false
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	tokens     tokenCache
	now        func() time.Time
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// Timestamp formats t the way Daraja expects (yyyyMMddHHmmss).
func Timestamp(t time.Time) string {
	return t.Format("20060102150405")
}

// Password derives the STK push signing password. The concatenation order
// shortcode+passkey+timestamp is fixed by the gateway contract.
func Password(shortCode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
}

// NormalizePhone converts a validated payer number (+2547XXXXXXXX or
// 07XXXXXXXX) to the 2547XXXXXXXX form the gateway requires.
func NormalizePhone(phone string) string {
	switch {
	case strings.HasPrefix(phone, "+"):
		return phone[1:]
	case strings.HasPrefix(phone, "0"):
		return "254" + phone[1:]
	default:
		return phone
	}
}

// AccessToken returns a cached bearer token or fetches a fresh one using
// basic auth over the client-credentials endpoint.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if token, ok := c.tokens.get(); ok {
		return token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+oauthPath, nil)
	if err != nil {
		return "", apperrors.NewInternalError("failed to build token request", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewTransportError("failed to reach token endpoint", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewTransportError("failed to read token response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewGatewayHTTPError(resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperrors.NewInternalError("failed to parse token response", err)
	}
	if result.AccessToken == "" {
		return "", apperrors.NewInternalError("access token missing in response",
			errors.New("empty access_token field")).WithDetails(map[string]string{"body": string(body)})
	}

	expiresIn := 3600
	if result.ExpiresIn != "" {
		if n, err := strconv.Atoi(result.ExpiresIn); err == nil {
			expiresIn = n
		}
	}
	c.tokens.set(result.AccessToken, expiresIn)

	return result.AccessToken, nil
}

// STKPush assembles and sends one push-payment request. Each call derives its
// own timestamp and password, so concurrent pushes share no mutable state
// beyond the token cache.
func (c *Client) STKPush(ctx context.Context, params PushParams) (*STKPushResponse, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := Timestamp(c.now())
	pushReq := STKPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          Password(c.cfg.ShortCode, c.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            params.Amount,
		PartyA:            NormalizePhone(params.PhoneNumber),
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       NormalizePhone(params.PhoneNumber),
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  params.AccountReference,
		TransactionDesc:   params.Description,
	}

	payload, err := json.Marshal(pushReq)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to marshal stk push request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+stkPushPath, strings.NewReader(string(payload)))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build stk push request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("sending stk push",
		"account_reference", params.AccountReference,
		"amount", params.Amount)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to reach stk push endpoint", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to read stk push response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("stk push rejected at http level",
			"status", resp.StatusCode,
			"account_reference", params.AccountReference)
		return nil, apperrors.NewGatewayHTTPError(resp.StatusCode, string(body))
	}

	var pushResp STKPushResponse
	if err := json.Unmarshal(body, &pushResp); err != nil {
		return nil, apperrors.NewInternalError("failed to parse stk push response", err)
	}

	c.logger.Info("stk push acknowledged",
		"checkout_request_id", pushResp.CheckoutRequestID,
		"response_code", pushResp.ResponseCode)

	return &pushResp, nil
}
