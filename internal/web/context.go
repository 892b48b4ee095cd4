package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/erpimport/internal/core"
)

// withRequestMetadata adds the client address and the file name to the
// context so batch logs can name them.
func withRequestMetadata(ctx context.Context, r *http.Request, source string) context.Context {
	ctx = core.ContextWithIPAddress(ctx, r.RemoteAddr) // Already processed by TrustedRealIP
	if source != "" {
		ctx = core.ContextWithSource(ctx, source)
	}
	return ctx
}
