// Package webhook receives asynchronous payment results from the M-Pesa
// gateway and hands them to the reconciler.
package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"datrix-bot/internal/stories/reconcile"
)

type reconciler interface {
	HandleResult(ctx context.Context, result reconcile.Result) error
	Simulate(ctx context.Context, chatID, amountKES int64, username *string) error
}

type Handler struct {
	reconciler reconciler
	logger     *slog.Logger
}

func NewHandler(reconciler reconciler, logger *slog.Logger) *Handler {
	return &Handler{reconciler: reconciler, logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhook/mpesa", h.handleCallback)
	// Sandbox helper mirroring the /simulate admin command.
	mux.HandleFunc("GET /webhook/simulate-success/{chatID}/{amount}", h.handleSimulateSuccess)
}

// Daraja callback envelope. CallbackMetadata is present only on success.
type callbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []metadataItem `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

type metadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(r.Body)
	// Phone numbers arrive as JSON numbers; float64 would mangle them.
	decoder.UseNumber()

	var envelope callbackEnvelope
	if err := decoder.Decode(&envelope); err != nil {
		h.logger.Warn("malformed payment callback", slog.String("error", err.Error()))
		http.Error(w, "malformed callback", http.StatusBadRequest)
		return
	}

	callback := envelope.Body.StkCallback
	if callback.CheckoutRequestID == "" {
		http.Error(w, "missing CheckoutRequestID", http.StatusBadRequest)
		return
	}

	result := reconcile.Result{
		Code:       callback.ResultCode,
		Desc:       callback.ResultDesc,
		CheckoutID: callback.CheckoutRequestID,
	}
	for _, item := range callback.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			if amount, ok := itemInt(item.Value); ok {
				result.AmountKES = amount
			}
		case "PhoneNumber":
			result.Phone = itemString(item.Value)
		case "MpesaReceiptNumber":
			result.ReceiptID = itemString(item.Value)
		}
	}

	if err := h.reconciler.HandleResult(r.Context(), result); err != nil {
		// Non-200 makes the gateway redeliver; reconciliation is
		// idempotent, so a retry is safe.
		h.logger.Error("reconciliation failed",
			slog.String("checkout_id", result.CheckoutID),
			slog.String("error", err.Error()))
		http.Error(w, "reconciliation failed", http.StatusInternalServerError)
		return
	}

	ack(w)
}

func (h *Handler) handleSimulateSuccess(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.PathValue("chatID"), 10, 64)
	if err != nil {
		http.Error(w, "bad chat id", http.StatusBadRequest)
		return
	}
	amount, err := strconv.ParseInt(r.PathValue("amount"), 10, 64)
	if err != nil || amount <= 0 {
		http.Error(w, "bad amount", http.StatusBadRequest)
		return
	}

	if err := h.reconciler.Simulate(r.Context(), chatID, amount, nil); err != nil {
		h.logger.Error("simulated payment failed",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()))
		http.Error(w, "simulation failed", http.StatusInternalServerError)
		return
	}

	ack(w)
}

func ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ResultCode": 0,
		"ResultDesc": "Accepted",
	})
}

func itemString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}

func itemInt(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		// Sandbox sends amounts like 50.0.
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if i, err := strconv.ParseInt(t, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}
