package internal

import "context"

const HeaderCorrelationId string = "Correlation-Id"

type ctxKeyCorrelationId struct{}

func CtxWithCorrelationId(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationId{}, correlationId)
}

func CorrelationIdFromCtx(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	item := ctx.Value(ctxKeyCorrelationId{})
	correlationId, ok := item.(string)
	if ok {
		return correlationId
	}
	return ""
}

// EnsureCorrelationId returns a context that's guaranteed to have a
// correlation id, generating one if necessary
func EnsureCorrelationId(ctx context.Context) (context.Context, string) {
	if correlationId := CorrelationIdFromCtx(ctx); correlationId != "" {
		return ctx, correlationId
	}
	correlationId := GenerateId()
	return CtxWithCorrelationId(ctx, correlationId), correlationId
}
