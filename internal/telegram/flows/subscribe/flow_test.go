package subscribe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"datrix-bot/internal/stories/plans"
	"datrix-bot/internal/telegram/messages"
	"datrix-bot/internal/telegram/pending"
)

type flowFixture struct {
	flow      *Flow
	pending   *pending.Store
	payments  *mockPayments
	directory *mockDirectory
	messenger *mockMessenger
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()

	catalog := &mockCatalog{list: []*plans.Plan{
		{Token: "daily", Name: "Daily", AmountKES: 20, DurationDays: 1},
		{Token: "weekly", Name: "Weekly", AmountKES: 50, DurationDays: 7},
	}}
	store := pending.NewStore(time.Minute, nil)
	payments := &mockPayments{}
	directory := &mockDirectory{}
	messenger := &mockMessenger{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &flowFixture{
		flow:      New(store, catalog, payments, directory, messenger, logger),
		pending:   store,
		payments:  payments,
		directory: directory,
		messenger: messenger,
	}
}

func TestStartShowsPlanKeyboard(t *testing.T) {
	f := newFlowFixture(t)

	if err := f.flow.Start(context.Background(), 1, 10); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if len(f.messenger.keyboards) != 1 {
		t.Fatalf("keyboards sent = %d, want 1", len(f.messenger.keyboards))
	}
	kb := f.messenger.keyboards[0]
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("keyboard rows = %d, want 2", len(kb.InlineKeyboard))
	}
	if data := *kb.InlineKeyboard[1][0].CallbackData; data != "plan:weekly" {
		t.Errorf("callback data = %q, want plan:weekly", data)
	}
}

func TestStartRejectsSecondRequest(t *testing.T) {
	f := newFlowFixture(t)

	if err := f.flow.Start(context.Background(), 1, 10); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := f.flow.Start(context.Background(), 1, 10); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	if got := f.messenger.lastText(); got != messages.AlreadyPending {
		t.Errorf("last message = %q, want already-pending notice", got)
	}
	if len(f.messenger.keyboards) != 1 {
		t.Errorf("keyboards sent = %d, want 1 (no new request)", len(f.messenger.keyboards))
	}
}

func TestHandleCallbackAdvancesToPhoneStep(t *testing.T) {
	f := newFlowFixture(t)

	if err := f.flow.Start(context.Background(), 1, 10); err != nil {
		t.Fatalf("Start: %v", err)
	}

	handled, err := f.flow.HandleCallback(context.Background(), 1, 10, "plan:weekly")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if !handled {
		t.Fatal("plan callback not handled")
	}

	req, ok := f.pending.Get(1)
	if !ok || req.Step != pending.StepAwaitingPhone {
		t.Errorf("request after callback = %+v, ok=%v", req, ok)
	}
	if req.Plan == nil || req.Plan.Token != "weekly" {
		t.Errorf("plan = %+v, want weekly", req.Plan)
	}
	if got := f.messenger.lastText(); got != messages.AskPhone {
		t.Errorf("last message = %q, want phone prompt", got)
	}
}

func TestHandleCallbackUnknownPlanStaysOnPlanStep(t *testing.T) {
	f := newFlowFixture(t)

	if err := f.flow.Start(context.Background(), 1, 10); err != nil {
		t.Fatalf("Start: %v", err)
	}

	handled, err := f.flow.HandleCallback(context.Background(), 1, 10, "plan:yearly")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if !handled {
		t.Fatal("plan callback not handled")
	}

	req, ok := f.pending.Get(1)
	if !ok || req.Step != pending.StepAwaitingPlan {
		t.Errorf("request = %+v, want still awaiting plan", req)
	}
}

func TestHandleCallbackIgnoresForeignData(t *testing.T) {
	f := newFlowFixture(t)

	handled, err := f.flow.HandleCallback(context.Background(), 1, 10, "settings:open")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if handled {
		t.Error("non-plan callback must not be handled")
	}
}

func TestHandleTextHappyPath(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	if err := f.flow.Start(ctx, 1, 10); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.flow.HandleCallback(ctx, 1, 10, "plan:weekly"); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	username := "alice"
	handled, err := f.flow.HandleText(ctx, 1, 10, &username, "+254 712 345 678")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if !handled {
		t.Fatal("text not handled")
	}

	if len(f.directory.entries) != 1 {
		t.Fatalf("directory entries = %d, want 1", len(f.directory.entries))
	}
	entry := f.directory.entries[0]
	if entry.Phone != "254712345678" || entry.ChatID != 10 {
		t.Errorf("directory entry = %+v", entry)
	}

	if len(f.payments.calls) != 1 {
		t.Fatalf("payment calls = %d, want 1", len(f.payments.calls))
	}
	call := f.payments.calls[0]
	if call.phone != "254712345678" || call.amountKES != 50 {
		t.Errorf("payment call = %+v", call)
	}

	if got := f.messenger.lastText(); got != messages.PaymentPromptSent {
		t.Errorf("last message = %q, want payment prompt notice", got)
	}
	if f.pending.Len() != 0 {
		t.Errorf("pending requests = %d, want 0 after completion", f.pending.Len())
	}
}

func TestHandleTextInvalidPhoneKeepsRequest(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	if err := f.flow.Start(ctx, 1, 10); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.flow.HandleCallback(ctx, 1, 10, "plan:weekly"); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	handled, err := f.flow.HandleText(ctx, 1, 10, nil, "071234")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if !handled {
		t.Fatal("text not handled")
	}
	if got := f.messenger.lastText(); got != messages.InvalidPhone {
		t.Errorf("last message = %q, want invalid-phone notice", got)
	}
	if f.pending.Len() != 1 {
		t.Errorf("pending requests = %d, want 1 (retry allowed)", f.pending.Len())
	}

	// A valid number on the next try still goes through.
	if _, err := f.flow.HandleText(ctx, 1, 10, nil, "254712345678"); err != nil {
		t.Fatalf("HandleText retry: %v", err)
	}
	if len(f.payments.calls) != 1 {
		t.Errorf("payment calls = %d, want 1", len(f.payments.calls))
	}
}

func TestHandleTextWithoutPendingIsIgnored(t *testing.T) {
	f := newFlowFixture(t)

	handled, err := f.flow.HandleText(context.Background(), 1, 10, nil, "hello")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if handled {
		t.Error("idle text must not be handled")
	}
}

func TestHandleTextGatewayRejection(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()
	f.payments.err = errors.New("merchant does not exist")

	if err := f.flow.Start(ctx, 1, 10); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.flow.HandleCallback(ctx, 1, 10, "plan:daily"); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if _, err := f.flow.HandleText(ctx, 1, 10, nil, "254712345678"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	if got := f.messenger.lastText(); got != messages.PaymentRequestFailed {
		t.Errorf("last message = %q, want payment-failed notice", got)
	}
	// The phone is still recorded; a manual retry can reuse it.
	if len(f.directory.entries) != 1 {
		t.Errorf("directory entries = %d, want 1", len(f.directory.entries))
	}
	if f.pending.Len() != 0 {
		t.Errorf("pending requests = %d, want 0", f.pending.Len())
	}
}
