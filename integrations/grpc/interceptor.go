// Package grpc provides credential validation interceptors for gRPC
// servers, built on the same validation core as the HTTP and hub
// transports.
package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gatherly/gatherly/auth"
)

// TokenChecker is the subset of auth.Middleware the interceptor
// needs.
type TokenChecker interface {
	CheckToken(ctx context.Context, token string) (*auth.Identity, error)
}

// ErrorHandler converts an authentication failure into the status
// error returned to the client.
type ErrorHandler func(err error) error

// DefaultErrorHandler answers every credential failure with
// codes.Unauthenticated and a generic message, mirroring the HTTP
// error handler's no-leakage rule.
func DefaultErrorHandler(err error) error {
	switch {
	case errors.Is(err, auth.ErrCredentialMissing), errors.Is(err, auth.ErrCredentialInvalid):
		return status.Error(codes.Unauthenticated, "invalid or missing credential")
	default:
		return status.Error(codes.Internal, "could not check credential")
	}
}

// Interceptor provides credential validation for gRPC servers.
type Interceptor struct {
	checker         TokenChecker
	tokenExtractor  TokenExtractor
	errorHandler    ErrorHandler
	excludedMethods map[string]bool
	logger          auth.Logger
}

// Option configures the Interceptor.
type Option func(*Interceptor)

// WithTokenExtractor overrides the metadata extractor.
func WithTokenExtractor(e TokenExtractor) Option {
	return func(i *Interceptor) {
		if e != nil {
			i.tokenExtractor = e
		}
	}
}

// WithErrorHandler overrides the failure-to-status mapping.
func WithErrorHandler(h ErrorHandler) Option {
	return func(i *Interceptor) {
		if h != nil {
			i.errorHandler = h
		}
	}
}

// WithExcludedMethods skips validation for the given full method
// names, e.g. "/gatherly.v1.Health/Check".
func WithExcludedMethods(methods ...string) Option {
	return func(i *Interceptor) {
		for _, m := range methods {
			i.excludedMethods[m] = true
		}
	}
}

// WithLogger sets an optional logger.
func WithLogger(logger auth.Logger) Option {
	return func(i *Interceptor) { i.logger = logger }
}

// New creates a gRPC interceptor around the given token checker.
func New(checker TokenChecker, opts ...Option) (*Interceptor, error) {
	if checker == nil {
		return nil, errors.New("token checker is required")
	}

	i := &Interceptor{
		checker:         checker,
		tokenExtractor:  MetadataTokenExtractor,
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// UnaryServerInterceptor validates the credential and attaches the
// identity to the handler's context.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if i.excludedMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		validatedCtx, err := i.validateRequest(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(validatedCtx, req)
	}
}

// StreamServerInterceptor validates the credential once at stream
// establishment; like the hub, messages on an accepted stream are not
// re-authenticated.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			return handler(srv, ss)
		}

		validatedCtx, err := i.validateRequest(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: validatedCtx})
	}
}

func (i *Interceptor) validateRequest(ctx context.Context, method string) (context.Context, error) {
	token, err := i.tokenExtractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Warnf("failed to extract token for %s: %v", method, err)
		}
		return ctx, i.errorHandler(auth.ErrCredentialInvalid)
	}

	identity, err := i.checker.CheckToken(ctx, token)
	if err != nil {
		if i.logger != nil {
			i.logger.Warnf("credential validation failed for %s: %v", method, err)
		}
		return ctx, i.errorHandler(err)
	}

	if identity != nil {
		ctx = auth.SetIdentity(ctx, identity)
	}
	return ctx, nil
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context carrying the identity.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
