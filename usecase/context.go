package usecase

import (
	"context"

	"github.com/SalinCodes/VoxVision/domain/entities"
)

type requestKey struct{}

// WithRequest attaches the in-flight request so nested stages can record themselves
func WithRequest(ctx context.Context, req *entities.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}

// RequestFrom returns the request attached to ctx, or nil
func RequestFrom(ctx context.Context) *entities.Request {
	req, _ := ctx.Value(requestKey{}).(*entities.Request)
	return req
}
