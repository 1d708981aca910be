// Package messages holds every text the bot sends. Keeping them in one
// place makes wording changes reviewable without touching handler logic.
package messages

import "fmt"

const (
	Welcome = "Welcome to D'atrix! Use /subscribe to join the premium channel."

	Help = `Available commands:
/subscribe - start a channel subscription
/help - show this message`

	ChoosePlan = "Choose a subscription plan:"

	AlreadyPending = "You already have a subscription request in progress. Finish it or wait for it to expire."

	AskPhone = "Enter your M-Pesa phone number in the format 2547XXXXXXXX:"

	InvalidPhone = "That doesn't look like a valid number. Use the format 2547XXXXXXXX, e.g. 254712345678."

	PaymentPromptSent = "A payment prompt has been sent to your phone. Enter your M-Pesa PIN to complete the payment."

	PaymentRequestFailed = "We couldn't send the payment request. Please try again later."

	PaymentFailed = "Your payment was not completed. Use /subscribe to try again."

	RequestTimedOut = "Your subscription request timed out. Use /subscribe to start again."

	InviteFallback = "Payment received, but we couldn't create your invite link. Please contact support."

	SubscriptionExpired = "Your channel subscription has expired. Use /subscribe to renew."

	Unauthorized = "You are not authorized to use this command."

	NoSubscribers = "No subscribers found."

	SubscriberNotFound = "No subscription found for that user."

	BroadcastUsage = "Usage: /broadcast <message>"

	RemoveUsage = "Usage: /remove <user id or @username>"

	SimulateUsage = "Usage: /simulate <amount>"
)

func Invite(link string) string {
	return fmt.Sprintf("Payment received! Here is your invite link (single use, valid for 1 hour):\n%s", link)
}

func PlanButton(name string, amountKES int64) string {
	return fmt.Sprintf("%s - KES %d", name, amountKES)
}

func Removed(userID int64) string {
	return fmt.Sprintf("Removed subscription for user %d.", userID)
}

func SweepReport(removed int) string {
	return fmt.Sprintf("Expiry check done: %d subscription(s) removed.", removed)
}

func Broadcast(text string) string {
	return "📢 " + text
}

func BroadcastDone(sent, total int) string {
	return fmt.Sprintf("Broadcast delivered to %d of %d subscribers.", sent, total)
}
