package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/catalog/internal/core"
)

// WithRequestMetadata records the caller of r in ctx for import logs.
// RemoteAddr is already the client address once TrustedRealIP has run.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.WithClient(ctx, core.Client{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
		RequestID: middleware.GetReqID(ctx),
	})
}
