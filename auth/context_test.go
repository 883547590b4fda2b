package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly/validator"
)

func Test_IdentityContext(t *testing.T) {
	identity := NewIdentity(&validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: "u1"},
	})

	t.Run("round trips through the context", func(t *testing.T) {
		ctx := SetIdentity(context.Background(), identity)

		got, ok := IdentityFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "u1", got.Subject())
		assert.True(t, HasIdentity(ctx))
	})

	t.Run("absent on a bare context", func(t *testing.T) {
		got, ok := IdentityFromContext(context.Background())
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.False(t, HasIdentity(context.Background()))
	})
}
