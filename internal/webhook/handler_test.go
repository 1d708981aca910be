package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"datrix-bot/internal/stories/reconcile"
)

type mockReconciler struct {
	results   []reconcile.Result
	simulated []int64
	err       error
}

func (m *mockReconciler) HandleResult(_ context.Context, result reconcile.Result) error {
	if m.err != nil {
		return m.err
	}
	m.results = append(m.results, result)
	return nil
}

func (m *mockReconciler) Simulate(_ context.Context, chatID, _ int64, _ *string) error {
	if m.err != nil {
		return m.err
	}
	m.simulated = append(m.simulated, chatID)
	return nil
}

func newTestMux(rec *mockReconciler) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	NewHandler(rec, logger).Register(mux)
	return mux
}

const successCallback = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 0,
			"ResultDesc": "The service request is processed successfully.",
			"CallbackMetadata": {
				"Item": [
					{"Name": "Amount", "Value": 50.0},
					{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
					{"Name": "TransactionDate", "Value": 20191219102115},
					{"Name": "PhoneNumber", "Value": 254712345678}
				]
			}
		}
	}
}`

func TestCallbackSuccessIsNormalized(t *testing.T) {
	rec := &mockReconciler{}
	mux := newTestMux(rec)

	req := httptest.NewRequest(http.MethodPost, "/webhook/mpesa", strings.NewReader(successCallback))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(rec.results) != 1 {
		t.Fatalf("results = %d, want 1", len(rec.results))
	}

	got := rec.results[0]
	if got.Code != 0 || got.AmountKES != 50 {
		t.Errorf("result = %+v", got)
	}
	if got.Phone != "254712345678" {
		t.Errorf("Phone = %q, want 254712345678 (no float mangling)", got.Phone)
	}
	if got.ReceiptID != "NLJ7RT61SV" || got.CheckoutID != "ws_CO_191220191020363925" {
		t.Errorf("identifiers = %q / %q", got.ReceiptID, got.CheckoutID)
	}
}

func TestCallbackFailureHasNoMetadata(t *testing.T) {
	rec := &mockReconciler{}
	mux := newTestMux(rec)

	body := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user"
			}
		}
	}`

	req := httptest.NewRequest(http.MethodPost, "/webhook/mpesa", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	got := rec.results[0]
	if got.Code != 1032 || got.Phone != "" || got.ReceiptID != "" {
		t.Errorf("result = %+v", got)
	}
}

func TestCallbackMalformedBody(t *testing.T) {
	rec := &mockReconciler{}
	mux := newTestMux(rec)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "not json at all"},
		{name: "missing checkout id", body: `{"Body":{"stkCallback":{"ResultCode":0}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhook/mpesa", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
	if len(rec.results) != 0 {
		t.Errorf("malformed callbacks reached the reconciler: %d", len(rec.results))
	}
}

func TestCallbackReconcilerErrorReturns500(t *testing.T) {
	rec := &mockReconciler{err: context.DeadlineExceeded}
	mux := newTestMux(rec)

	req := httptest.NewRequest(http.MethodPost, "/webhook/mpesa", strings.NewReader(successCallback))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 so the gateway redelivers", w.Code)
	}
}

func TestSimulateSuccessEndpoint(t *testing.T) {
	rec := &mockReconciler{}
	mux := newTestMux(rec)

	req := httptest.NewRequest(http.MethodGet, "/webhook/simulate-success/42/50", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(rec.simulated) != 1 || rec.simulated[0] != 42 {
		t.Errorf("simulated = %v, want [42]", rec.simulated)
	}
}

func TestSimulateSuccessBadParams(t *testing.T) {
	rec := &mockReconciler{}
	mux := newTestMux(rec)

	for _, path := range []string{
		"/webhook/simulate-success/abc/50",
		"/webhook/simulate-success/42/-5",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, w.Code)
		}
	}
}
