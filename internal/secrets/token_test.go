package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestAdminTokenOrder(t *testing.T) {
	keyring.MockInit()
	acct := KeyringAccount(t.TempDir())

	t.Setenv(EnvAdminToken, "from-env")
	tok, src, err := AdminToken(acct)
	require.NoError(t, err)
	assert.Equal(t, FromEnv, src)
	assert.Equal(t, "from-env", tok)

	require.NoError(t, SetAdminToken(acct, "from-keyring"))
	tok, src, err = AdminToken(acct)
	require.NoError(t, err)
	assert.Equal(t, FromKeyring, src)
	assert.Equal(t, "from-keyring", tok)

	require.NoError(t, DeleteAdminToken(acct))
	t.Setenv(EnvAdminToken, "")
	tok, src, err = AdminToken(acct)
	require.NoError(t, err)
	assert.Equal(t, Generated, src)
	assert.Len(t, tok, 64)

	// the generated token sticks
	again, src, err := AdminToken(acct)
	require.NoError(t, err)
	assert.Equal(t, FromKeyring, src)
	assert.Equal(t, tok, again)
}

func TestSetAdminTokenRejectsEmpty(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, SetAdminToken("", "x"))
	assert.Error(t, SetAdminToken("acct", " "))
	assert.Error(t, DeleteAdminToken(""))
}
