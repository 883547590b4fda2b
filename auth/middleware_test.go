package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly/validator"
)

var testSecret = []byte("middleware-test-secret")

func newTestValidator(t *testing.T) *validator.Validator {
	t.Helper()
	v, err := validator.New(
		func(context.Context) (interface{}, error) { return testSecret, nil },
		validator.HS256,
	)
	require.NoError(t, err)
	return v
}

func signTestToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func Test_CheckAuth(t *testing.T) {
	validToken := signTestToken(t, "u1", time.Now().Add(time.Hour))
	expiredToken := signTestToken(t, "u1", time.Now().Add(-time.Second))

	testCases := []struct {
		name           string
		options        []Option
		method         string
		authHeader     string
		wantStatusCode int
		wantBody       string
		wantSubject    string
	}{
		{
			name:           "it authenticates a valid token",
			method:         http.MethodGet,
			authHeader:     "Bearer " + validToken,
			wantStatusCode: http.StatusOK,
			wantSubject:    "u1",
		},
		{
			name:           "it rejects a missing token",
			method:         http.MethodGet,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"Unauthorized."}`,
		},
		{
			name:           "it rejects an expired token before the handler runs",
			method:         http.MethodGet,
			authHeader:     "Bearer " + expiredToken,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"Unauthorized."}`,
		},
		{
			name:           "it rejects garbage with the same generic body",
			method:         http.MethodGet,
			authHeader:     "Bearer not.a.token",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"Unauthorized."}`,
		},
		{
			name:           "it rejects a malformed Authorization header",
			method:         http.MethodGet,
			authHeader:     "Basic dXNlcjpwYXNz",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"Unauthorized."}`,
		},
		{
			name:           "it lets a missing token through when credentials are optional",
			options:        []Option{WithCredentialsOptional(true)},
			method:         http.MethodGet,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "it validates OPTIONS by default",
			method:         http.MethodOptions,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"Unauthorized."}`,
		},
		{
			name:           "it can skip OPTIONS",
			options:        []Option{WithValidateOnOptions(false)},
			method:         http.MethodOptions,
			wantStatusCode: http.StatusOK,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			m, err := New(newTestValidator(t), testCase.options...)
			require.NoError(t, err)

			handlerCalled := false
			var gotSubject string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				if identity, ok := IdentityFromContext(r.Context()); ok {
					gotSubject = identity.Subject()
				}
				w.WriteHeader(http.StatusOK)
			})

			request := httptest.NewRequest(testCase.method, "/api/events", nil)
			if testCase.authHeader != "" {
				request.Header.Set("Authorization", testCase.authHeader)
			}
			recorder := httptest.NewRecorder()

			m.CheckAuth(handler).ServeHTTP(recorder, request)

			response := recorder.Result()
			body, err := io.ReadAll(response.Body)
			require.NoError(t, err)

			assert.Equal(t, testCase.wantStatusCode, response.StatusCode)
			if testCase.wantBody != "" {
				assert.Equal(t, testCase.wantBody, string(body))
			}
			assert.Equal(t, testCase.wantStatusCode == http.StatusOK, handlerCalled)
			assert.Equal(t, testCase.wantSubject, gotSubject)
		})
	}
}

func Test_New(t *testing.T) {
	t.Run("it requires a validator", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrValidatorNil)
	})

	t.Run("it rejects nil required options", func(t *testing.T) {
		_, err := New(newTestValidator(t), WithErrorHandler(nil))
		assert.ErrorIs(t, err, ErrErrorHandlerNil)

		_, err = New(newTestValidator(t), WithTokenExtractor(nil))
		assert.ErrorIs(t, err, ErrTokenExtractorNil)
	})
}

func Test_CheckToken(t *testing.T) {
	m, err := New(newTestValidator(t))
	require.NoError(t, err)

	t.Run("missing token yields ErrCredentialMissing", func(t *testing.T) {
		_, err := m.CheckToken(context.Background(), "")
		assert.ErrorIs(t, err, ErrCredentialMissing)
	})

	t.Run("invalid token wraps the validation failure", func(t *testing.T) {
		_, err := m.CheckToken(context.Background(), "a.b.c")
		assert.ErrorIs(t, err, ErrCredentialInvalid)
		assert.ErrorIs(t, err, validator.ErrMalformedToken)
	})

	t.Run("valid token yields the identity", func(t *testing.T) {
		identity, err := m.CheckToken(context.Background(), signTestToken(t, "u42", time.Now().Add(time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, "u42", identity.Subject())
	})
}

func Test_DefaultErrorHandler(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		wantStatusCode int
	}{
		{name: "missing credential", err: ErrCredentialMissing, wantStatusCode: http.StatusUnauthorized},
		{name: "invalid credential", err: &invalidError{details: validator.ErrExpired}, wantStatusCode: http.StatusUnauthorized},
		{name: "anything else", err: io.ErrUnexpectedEOF, wantStatusCode: http.StatusInternalServerError},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			DefaultErrorHandler(recorder, request, testCase.err)

			assert.Equal(t, testCase.wantStatusCode, recorder.Result().StatusCode)
		})
	}
}
