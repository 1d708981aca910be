package daraja

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"datrix-bot/internal/config"
)

const (
	SandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	ProductionBaseURL = "https://api.safaricom.co.ke"

	tokenPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	// Error code Daraja returns for a misconfigured shortcode/passkey.
	merchantErrorCode = "500.001.1001"
)

var (
	ErrInvalidCredentials = errors.New("invalid consumer key or secret")
	ErrUnknownMerchant    = errors.New("merchant does not exist")
)

// Client talks to the M-Pesa Daraja API: OAuth token issuance and STK push
// payment requests. The STK push response only acknowledges acceptance; the
// payment result arrives later on the callback URL.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string

	consumerKey    string
	consumerSecret string
	shortCode      string
	passkey        string
	callbackURL    string

	now func() time.Time
}

func NewClient(cfg config.DarajaConfig, logger *slog.Logger) *Client {
	baseURL := ProductionBaseURL
	if cfg.Sandbox {
		baseURL = SandboxBaseURL
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		logger:         logger,
		baseURL:        baseURL,
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		shortCode:      cfg.ShortCode,
		passkey:        cfg.Passkey,
		callbackURL:    cfg.CallbackURL,
		now:            time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tokenPath, nil)
	if err != nil {
		return "", errors.Wrap(err, "build token request")
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "request access token")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", errors.Wrap(err, "decode token response")
	}
	if token.AccessToken == "" {
		return "", errors.New("empty access token")
	}

	return token.AccessToken, nil
}

// timestamp renders t as YYYYMMDDHHMMSS, the format Daraja signs against.
func timestamp(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

// password is base64(shortcode + passkey + timestamp).
func (c *Client) password(ts string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.shortCode + c.passkey + ts))
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	ErrorCode           string `json:"errorCode"`
	ErrorMessage        string `json:"errorMessage"`
}

// STKPush asks Daraja to prompt the payer's phone for amountKES. On
// acceptance it returns the CheckoutRequestID correlating the later
// asynchronous result.
func (c *Client) STKPush(ctx context.Context, phone string, amountKES int64) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	ts := timestamp(c.now())
	payload := stkPushRequest{
		BusinessShortCode: c.shortCode,
		Password:          c.password(ts),
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amountKES,
		PartyA:            phone,
		PartyB:            c.shortCode,
		PhoneNumber:       phone,
		CallBackURL:       c.callbackURL,
		AccountReference:  "Telegram Subscription",
		TransactionDesc:   "Channel subscription",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "encode stk push payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+stkPushPath, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build stk push request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "send stk push request")
	}
	defer resp.Body.Close()

	var result stkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.Wrap(err, "decode stk push response")
	}

	if err := classify(resp.StatusCode, result); err != nil {
		c.logger.Error("STK push rejected",
			slog.String("error_code", result.ErrorCode),
			slog.String("error_message", result.ErrorMessage))
		return "", err
	}

	c.logger.Info("STK push accepted",
		slog.String("checkout_request_id", result.CheckoutRequestID))

	return result.CheckoutRequestID, nil
}

func classify(status int, result stkPushResponse) error {
	switch {
	case result.ErrorCode == merchantErrorCode,
		strings.Contains(result.ErrorMessage, "Merchant does not exist"):
		return ErrUnknownMerchant
	case status == http.StatusUnauthorized,
		result.ErrorCode == "401",
		strings.Contains(result.ErrorMessage, "Invalid credentials"):
		return ErrInvalidCredentials
	case result.ErrorCode != "":
		return errors.Errorf("stk push rejected: %s (%s)", result.ErrorMessage, result.ErrorCode)
	case result.ResponseCode != "0":
		return errors.Errorf("stk push not accepted: %s", result.ResponseDescription)
	}
	return nil
}
