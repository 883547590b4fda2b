package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly/auth"
	"github.com/gatherly/gatherly/validator"
)

var testSecret = []byte("hub-test-secret")

func newHubServer(t *testing.T) *httptest.Server {
	t.Helper()

	tokenValidator, err := validator.New(
		func(context.Context) (interface{}, error) { return testSecret, nil },
		validator.HS256,
	)
	require.NoError(t, err)

	authn, err := auth.New(tokenValidator,
		auth.WithTokenExtractor(auth.MultiTokenExtractor(
			auth.AuthHeaderTokenExtractor,
			auth.HubParameterTokenExtractor("/chat", "access_token"),
		)),
	)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.Handle("GET /chat/{event}", New(authn).Handler())

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + path
}

func tokenFor(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

// A valid access_token query parameter establishes the connection and
// binds the subject's identity to it.
func Test_HandshakeWithQueryToken(t *testing.T) {
	server := newHubServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(server, "/chat/e1?access_token="+tokenFor(t, "u1", time.Now().Add(time.Hour))), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"body": "hello"}))

	var got Message
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, "u1", got.From, "messages carry the identity bound at handshake")
	assert.Equal(t, "e1", got.Room)
	assert.Equal(t, "hello", got.Body)
}

func Test_HandshakeRejections(t *testing.T) {
	server := newHubServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	testCases := []struct {
		name string
		path string
	}{
		{name: "no credential", path: "/chat/e1"},
		{name: "expired credential", path: "/chat/e1?access_token=" + tokenFor(t, "u1", time.Now().Add(-time.Second))},
		{name: "garbage credential", path: "/chat/e1?access_token=not.a.token"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			conn, response, err := websocket.Dial(ctx, wsURL(server, testCase.path), nil)
			require.Error(t, err, "the connection must never upgrade")
			if conn != nil {
				conn.Close(websocket.StatusNormalClosure, "")
			}
			require.NotNil(t, response)
			assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
		})
	}
}

// Messages fan out to every member of the room, stamped with the
// sender's subject.
func Test_RoomBroadcast(t *testing.T) {
	server := newHubServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host, _, err := websocket.Dial(ctx, wsURL(server, "/chat/e1?access_token="+tokenFor(t, "u1", time.Now().Add(time.Hour))), nil)
	require.NoError(t, err)
	defer host.Close(websocket.StatusNormalClosure, "done")

	guest, _, err := websocket.Dial(ctx, wsURL(server, "/chat/e1?access_token="+tokenFor(t, "u2", time.Now().Add(time.Hour))), nil)
	require.NoError(t, err)
	defer guest.Close(websocket.StatusNormalClosure, "done")

	require.NoError(t, wsjson.Write(ctx, host, map[string]string{"body": "who brought snacks?"}))

	var got Message
	require.NoError(t, wsjson.Read(ctx, guest, &got))
	assert.Equal(t, "u1", got.From)
	assert.Equal(t, "who brought snacks?", got.Body)
}

// Rooms are isolated: members of another event see nothing.
func Test_RoomIsolation(t *testing.T) {
	server := newHubServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	speaker, _, err := websocket.Dial(ctx, wsURL(server, "/chat/e1?access_token="+tokenFor(t, "u1", time.Now().Add(time.Hour))), nil)
	require.NoError(t, err)
	defer speaker.Close(websocket.StatusNormalClosure, "done")

	bystander, _, err := websocket.Dial(ctx, wsURL(server, "/chat/e2?access_token="+tokenFor(t, "u2", time.Now().Add(time.Hour))), nil)
	require.NoError(t, err)
	defer bystander.Close(websocket.StatusNormalClosure, "done")

	require.NoError(t, wsjson.Write(ctx, speaker, map[string]string{"body": "e1 only"}))

	// The speaker hears their own message back; the bystander must not.
	var echo Message
	require.NoError(t, wsjson.Read(ctx, speaker, &echo))
	assert.Equal(t, "e1 only", echo.Body)

	readCtx, cancelRead := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancelRead()
	var leaked Message
	assert.Error(t, wsjson.Read(readCtx, bystander, &leaked), "no cross-room delivery")
}
