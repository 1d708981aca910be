package subscribe

import "testing"

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "254712345678", want: "254712345678"},
		{in: "+254 712 345 678", want: "254712345678"},
		{in: "254-712-345-678", want: "254712345678"},
		{in: "(254)712345678", want: "254712345678"},
		{in: "no digits here", want: ""},
	}

	for _, tt := range tests {
		if got := SanitizePhone(tt.in); got != tt.want {
			t.Errorf("SanitizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidSubscriberNumber(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{phone: "254712345678", want: true},
		{phone: "254799999999", want: true},
		{phone: "071234", want: false},
		{phone: "0712345678", want: false},
		{phone: "254812345678", want: false},
		{phone: "2547123456789", want: false},
		{phone: "25471234567", want: false},
		{phone: "", want: false},
	}

	for _, tt := range tests {
		if got := IsValidSubscriberNumber(tt.phone); got != tt.want {
			t.Errorf("IsValidSubscriberNumber(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}
