package core

import "context"

// Client identifies who issued an import request, for logs.
type Client struct {
	IP        string
	UserAgent string
	RequestID string
}

type clientKey struct{}

// WithClient returns a copy of ctx carrying c.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFrom returns the Client stored in ctx, or the zero Client.
func ClientFrom(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}

// logAttrs returns the non-empty fields as slog key/value pairs.
func (c Client) logAttrs() []any {
	var attrs []any
	if c.IP != "" {
		attrs = append(attrs, "ip", c.IP)
	}
	if c.UserAgent != "" {
		attrs = append(attrs, "user_agent", c.UserAgent)
	}
	if c.RequestID != "" {
		attrs = append(attrs, "request_id", c.RequestID)
	}
	return attrs
}
