package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signature algorithms. The service signs with a shared symmetric
// secret, so only the HMAC family is accepted.
const (
	HS256 = SignatureAlgorithm("HS256") // HMAC using SHA-256
	HS384 = SignatureAlgorithm("HS384") // HMAC using SHA-384
	HS512 = SignatureAlgorithm("HS512") // HMAC using SHA-512
)

// SignatureAlgorithm is a signature algorithm.
type SignatureAlgorithm string

var allowedSigningAlgorithms = map[SignatureAlgorithm]bool{
	HS256: true,
	HS384: true,
	HS512: true,
}

// Validator verifies bearer tokens. It is pure and safe for
// concurrent use; every call is a function of the token, the key and
// the clock.
type Validator struct {
	keyFunc            func(context.Context) (interface{}, error) // Required.
	signatureAlgorithm SignatureAlgorithm                         // Required.
	expectedIssuer     string                                     // Optional; empty disables the check.
	expectedAudience   string                                     // Optional; empty disables the check.
	allowedClockSkew   time.Duration                              // Optional; zero by default.
	clock              func() time.Time                           // Optional; time.Now by default.
}

// New sets up a new Validator with the required keyFunc
// and signatureAlgorithm as well as custom options.
func New(
	keyFunc func(context.Context) (interface{}, error),
	signatureAlgorithm SignatureAlgorithm,
	opts ...Option,
) (*Validator, error) {
	if keyFunc == nil {
		return nil, errors.New("keyFunc is required but was nil")
	}
	if _, ok := allowedSigningAlgorithms[signatureAlgorithm]; !ok {
		return nil, errors.New("unsupported signature algorithm")
	}

	v := &Validator{
		keyFunc:            keyFunc,
		signatureAlgorithm: signatureAlgorithm,
		clock:              time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// ValidateToken verifies the passed in token and returns its claims.
//
// Checks run in a fixed order: structure, signature, then time and
// claim checks. Signature verification cannot be disabled. Expiry is
// compared against now with the configured skew, which is zero unless
// WithAllowedClockSkew was given: a token whose expiry equals now is
// already expired.
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (interface{}, error) {
	if err := checkStructure(tokenString); err != nil {
		return nil, err
	}

	key, err := v.keyFunc(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting the key from the key func: %w", err)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{string(v.signatureAlgorithm)}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.allowedClockSkew),
		jwt.WithTimeFunc(v.clock),
	}
	if v.expectedIssuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.expectedIssuer))
	}
	if v.expectedAudience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.expectedAudience))
	}

	parser := jwt.NewParser(parserOpts...)

	registeredClaims := &jwt.RegisteredClaims{}
	if _, err := parser.ParseWithClaims(tokenString, registeredClaims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}); err != nil {
		return nil, classifyParseError(err)
	}

	if registeredClaims.Subject == "" {
		return nil, fmt.Errorf("%w: subject claim is required", ErrInvalidClaims)
	}

	validatedClaims := &ValidatedClaims{
		RegisteredClaims: RegisteredClaims{
			Issuer:    registeredClaims.Issuer,
			Subject:   registeredClaims.Subject,
			Audience:  registeredClaims.Audience,
			ID:        registeredClaims.ID,
			Expiry:    numericDateToUnixTime(registeredClaims.ExpiresAt),
			NotBefore: numericDateToUnixTime(registeredClaims.NotBefore),
			IssuedAt:  numericDateToUnixTime(registeredClaims.IssuedAt),
		},
	}

	return validatedClaims, nil
}

// checkStructure rejects anything that is not three non-empty
// dot-separated segments before any cryptographic work happens.
func checkStructure(tokenString string) error {
	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 {
		return fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(segments))
	}
	for _, segment := range segments {
		if segment == "" {
			return fmt.Errorf("%w: empty segment", ErrMalformedToken)
		}
	}
	return nil
}

// classifyParseError maps the library's parse errors onto this
// package's failure taxonomy. Expiry is checked before the general
// claims bucket because the library reports it as both.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	default:
		return fmt.Errorf("could not validate the token: %w", err)
	}
}

func numericDateToUnixTime(date *jwt.NumericDate) int64 {
	if date != nil {
		return date.Time.Unix()
	}
	return 0
}
