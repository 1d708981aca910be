package reconcile

// Result is a normalized payment outcome, decoded from the gateway
// callback or synthesized by Simulate. Code 0 means the payer completed
// the payment; any other code is a failure (cancelled, timed out,
// insufficient funds).
type Result struct {
	Code       int
	Desc       string
	Phone      string
	AmountKES  int64
	ReceiptID  string
	CheckoutID string
}

func (r Result) Succeeded() bool {
	return r.Code == 0
}

// Reference is the identifier stored with the subscription and used to
// detect redelivered callbacks. The receipt number is preferred; failed
// results carry only the checkout id.
func (r Result) Reference() string {
	if r.ReceiptID != "" {
		return r.ReceiptID
	}
	return r.CheckoutID
}
