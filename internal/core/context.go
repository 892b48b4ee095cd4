package core

import "context"

type contextKey string

const (
	ctxKeySource    contextKey = "import_source"
	ctxKeyIPAddress contextKey = "import_ip"
)

// ContextWithSource records where the rows of a batch come from (file name).
func ContextWithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, ctxKeySource, source)
}

// ContextWithIPAddress records the address of the client that started a batch.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// SourceFromContext extracts the batch source from context.
func SourceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySource).(string); ok {
		return v
	}
	return ""
}

// IPAddressFromContext extracts the client address from context.
func IPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// batchLogFields returns the context attributes added to batch loggers.
func batchLogFields(ctx context.Context) []any {
	var fields []any
	if s := SourceFromContext(ctx); s != "" {
		fields = append(fields, "source", s)
	}
	if ip := IPAddressFromContext(ctx); ip != "" {
		fields = append(fields, "ip", ip)
	}
	return fields
}
