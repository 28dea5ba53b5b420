package outreach

import "context"

// ProviderMessage is the provider's view of one SMS.
type ProviderMessage struct {
	ID     string
	Status string
	To     string
	From   string
	Body   string
}

// Provider is the SMS gateway surface the outreach service depends on.
type Provider interface {
	// SendText sends one SMS and returns the provider message id.
	SendText(ctx context.Context, to, body string) (string, error)
	// FetchMessage fetches a previously sent message by provider id.
	FetchMessage(ctx context.Context, id string) (*ProviderMessage, error)
}
