package twitch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eitchugo/happyfool-bot/internal/crypto"
	"github.com/eitchugo/happyfool-bot/internal/db"
)

func newTestTokenManager(t *testing.T) *TokenManager {
	t.Helper()

	database, err := db.Open(":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	cipher := crypto.Cipher(strings.Repeat("ab", 32))
	return NewTokenManager(database, cipher, "client-id", "client-secret")
}

func TestTokenStoreRoundTrip(t *testing.T) {
	tm := newTestTokenManager(t)

	exists, err := tm.HasRecord("somechannel")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, tm.CreateOrUpdateStoreRecord("123", "somechannel", "access-1", "refresh-1"))

	exists, err = tm.HasRecord("somechannel")
	require.NoError(t, err)
	assert.True(t, exists)

	access, refresh, err := tm.readFromStore("somechannel")
	require.NoError(t, err)
	assert.Equal(t, "access-1", access)
	assert.Equal(t, "refresh-1", refresh)
}

func TestTokenRecordsAreEncryptedAtRest(t *testing.T) {
	tm := newTestTokenManager(t)
	require.NoError(t, tm.CreateOrUpdateStoreRecord("123", "somechannel", "access-1", "refresh-1"))

	var storedAccess, storedRefresh string
	err := tm.store.QueryRow(
		"SELECT access_token, refresh_token FROM channels WHERE login = ?", "somechannel",
	).Scan(&storedAccess, &storedRefresh)
	require.NoError(t, err)

	assert.NotContains(t, storedAccess, "access-1")
	assert.NotContains(t, storedRefresh, "refresh-1")
}

func TestCreateOrUpdateStoreRecordUpserts(t *testing.T) {
	tm := newTestTokenManager(t)

	require.NoError(t, tm.CreateOrUpdateStoreRecord("123", "somechannel", "access-1", "refresh-1"))
	require.NoError(t, tm.CreateOrUpdateStoreRecord("123", "somechannel", "access-2", "refresh-2"))

	var count int
	err := tm.store.QueryRow("SELECT COUNT(*) FROM channels WHERE id = ?", "123").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	access, refresh, err := tm.readFromStore("somechannel")
	require.NoError(t, err)
	assert.Equal(t, "access-2", access)
	assert.Equal(t, "refresh-2", refresh)
}

func TestUpdateStoreRecordRequiresExistingRow(t *testing.T) {
	tm := newTestTokenManager(t)

	err := tm.updateStoreRecord("ghost", "access", "refresh")
	assert.Error(t, err)
}
