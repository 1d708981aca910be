package daraja

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"datrix-bot/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(config.DarajaConfig{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.com/webhook/mpesa",
		Timeout:        5 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	client.baseURL = srv.URL

	return client, srv
}

func tokenHandler(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "test-token", ExpiresIn: "3599"})
}

func TestTimestampFormat(t *testing.T) {
	ts := timestamp(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))
	if ts != "20260314092653" {
		t.Errorf("timestamp = %q, want %q", ts, "20260314092653")
	}
}

func TestPassword(t *testing.T) {
	c := &Client{shortCode: "174379", passkey: "pk"}
	got := c.password("20260314092653")
	want := base64.StdEncoding.EncodeToString([]byte("174379pk20260314092653"))
	if got != want {
		t.Errorf("password = %q, want %q", got, want)
	}
}

func TestSTKPushAccepted(t *testing.T) {
	var captured stkPushRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", tokenHandler)
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(stkPushResponse{
			ResponseCode:      "0",
			CheckoutRequestID: "ws_CO_123",
		})
	})

	client, _ := newTestClient(t, mux)

	checkoutID, err := client.STKPush(context.Background(), "254712345678", 50)
	if err != nil {
		t.Fatalf("STKPush: %v", err)
	}
	if checkoutID != "ws_CO_123" {
		t.Errorf("checkoutID = %q, want %q", checkoutID, "ws_CO_123")
	}
	if captured.PhoneNumber != "254712345678" || captured.PartyA != "254712345678" {
		t.Errorf("phone not propagated: %+v", captured)
	}
	if captured.Amount != 50 {
		t.Errorf("Amount = %d, want 50", captured.Amount)
	}
	if captured.TransactionType != "CustomerPayBillOnline" {
		t.Errorf("TransactionType = %q", captured.TransactionType)
	}
}

func TestSTKPushMerchantError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", tokenHandler)
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(stkPushResponse{
			ErrorCode:    "500.001.1001",
			ErrorMessage: "Merchant does not exist",
		})
	})

	client, _ := newTestClient(t, mux)

	_, err := client.STKPush(context.Background(), "254712345678", 100)
	if !errors.Is(err, ErrUnknownMerchant) {
		t.Errorf("err = %v, want ErrUnknownMerchant", err)
	}
}

func TestSTKPushInvalidCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			t.Errorf("basic auth = %q/%q", user, pass)
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.STKPush(context.Background(), "254712345678", 100)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSTKPushGenericRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", tokenHandler)
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(stkPushResponse{
			ResponseCode:        "1",
			ResponseDescription: "Unable to process",
		})
	})

	client, _ := newTestClient(t, mux)

	_, err := client.STKPush(context.Background(), "254712345678", 100)
	if err == nil {
		t.Fatal("expected error for non-zero response code")
	}
	if errors.Is(err, ErrUnknownMerchant) || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("generic rejection misclassified: %v", err)
	}
}
