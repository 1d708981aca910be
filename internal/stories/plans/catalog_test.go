package plans

import (
	"errors"
	"testing"
	"time"
)

func TestResolveKnownTokens(t *testing.T) {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	tests := []struct {
		token        string
		amountKES    int64
		durationDays int
	}{
		{token: "daily", amountKES: 20, durationDays: 1},
		{token: "weekly", amountKES: 50, durationDays: 7},
		{token: "monthly", amountKES: 100, durationDays: 30},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			plan, err := catalog.Resolve(tt.token)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.token, err)
			}
			if plan.AmountKES != tt.amountKES {
				t.Errorf("AmountKES = %d, want %d", plan.AmountKES, tt.amountKES)
			}
			if plan.DurationDays != tt.durationDays {
				t.Errorf("DurationDays = %d, want %d", plan.DurationDays, tt.durationDays)
			}
		})
	}
}

func TestResolveUnknownToken(t *testing.T) {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	_, err = catalog.Resolve("yearly")
	if !errors.Is(err, ErrUnknownPlan) {
		t.Errorf("err = %v, want ErrUnknownPlan", err)
	}
}

func TestByAmount(t *testing.T) {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	plan, ok := catalog.ByAmount(50)
	if !ok {
		t.Fatal("ByAmount(50) not found")
	}
	if plan.Token != "weekly" {
		t.Errorf("Token = %q, want weekly", plan.Token)
	}
	if plan.Duration() != 7*24*time.Hour {
		t.Errorf("Duration = %v, want 168h", plan.Duration())
	}

	if _, ok := catalog.ByAmount(999); ok {
		t.Error("ByAmount(999) should not match")
	}
}

func TestListOrder(t *testing.T) {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	list := catalog.List()
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i, want := range []string{"daily", "weekly", "monthly"} {
		if list[i].Token != want {
			t.Errorf("list[%d] = %q, want %q", i, list[i].Token, want)
		}
	}
}
