package outreach

import (
	"context"

	"github.com/cpapescrim1106/blueprintproject/internal/outreach/ringcentralclient"
)

// ringCentralProvider adapts the RingCentral client to the Provider
// interface the outreach service depends on.
type ringCentralProvider struct {
	client *ringcentralclient.Client
}

// NewRingCentralProvider wraps a configured RingCentral client as a Provider.
func NewRingCentralProvider(client *ringcentralclient.Client) Provider {
	return &ringCentralProvider{client: client}
}

func (p *ringCentralProvider) SendText(ctx context.Context, to, body string) (string, error) {
	return p.client.SendText(ctx, to, body)
}

func (p *ringCentralProvider) FetchMessage(ctx context.Context, id string) (*ProviderMessage, error) {
	msg, err := p.client.FetchMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProviderMessage{
		ID:     msg.ID,
		Status: msg.Status,
		To:     msg.To,
		From:   msg.From,
		Body:   msg.Body,
	}, nil
}
