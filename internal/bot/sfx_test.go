package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eitchugo/happyfool-bot/internal/db"
)

func requirePlayed(t *testing.T, player *fakePlayer, want string) {
	t.Helper()
	select {
	case got := <-player.plays:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("expected a sound to play")
	}
}

func requireNothingPlayed(t *testing.T, player *fakePlayer) {
	t.Helper()
	select {
	case got := <-player.plays:
		t.Fatalf("unexpected sound played: %s", got)
	default:
	}
}

func TestSFXAddBroadcasterOnly(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("alice", "!sfx add boom boom.mp3", moderatorBadge))
	assert.Empty(t, tb.chat.messages())

	tb.bot.HandleMessage(privMsg("streamer", "!sfx add boom boom.mp3", broadcasterBadge))
	assert.Equal(t, []string{"Som !boom adicionado"}, tb.chat.messages())
}

func TestSFXAddAppliesDefaults(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!sfx_add boom boom.mp3", broadcasterBadge))

	sfxCommand, err := db.NewSFXCommandStore(tb.db).GetByName("boom")
	require.NoError(t, err)
	require.NotNil(t, sfxCommand)
	assert.Equal(t, "boom.mp3", sfxCommand.AudioFile)
	assert.Equal(t, db.DefaultSFXCost, sfxCommand.Cost)
	assert.Equal(t, db.DefaultSFXUserCooldown, sfxCommand.UserCooldown)
	assert.Equal(t, db.DefaultSFXGlobalCooldown, sfxCommand.GlobalCooldown)
}

func TestSFXAddExplicitArguments(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!sfx add boom boom.mp3 100 30 120", broadcasterBadge))

	sfxCommand, err := db.NewSFXCommandStore(tb.db).GetByName("boom")
	require.NoError(t, err)
	require.NotNil(t, sfxCommand)
	assert.Equal(t, 100, sfxCommand.Cost)
	assert.Equal(t, 30, sfxCommand.UserCooldown)
	assert.Equal(t, 120, sfxCommand.GlobalCooldown)
}

func TestSFXRemove(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!sfx add boom boom.mp3", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("streamer", "!sfx_remove boom", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("streamer", "!sfx remove boom", broadcasterBadge))

	assert.Equal(t, []string{
		"Som !boom adicionado",
		"Som !boom removido",
		"Som !boom não existe",
	}, tb.chat.messages())
}

func TestSFXTriggerPlaysAndDebits(t *testing.T) {
	tb := newTestBot(t, testConfig(t))
	points := db.NewUserPointsStore(tb.db)
	require.NoError(t, points.IncrementPoints("alice", 200))

	tb.bot.HandleMessage(privMsg("streamer", "!sfx add boom boom.mp3 50", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("alice", "!boom", nil))
	requirePlayed(t, tb.player, "data/sfx/boom.mp3")

	balance, err := points.GetPoints("alice")
	require.NoError(t, err)
	assert.Equal(t, 150, balance)

	sfxCommand, err := db.NewSFXCommandStore(tb.db).GetByName("boom")
	require.NoError(t, err)
	assert.Equal(t, 1, sfxCommand.Count)
}

func TestSFXTriggerRejectionsAreSilent(t *testing.T) {
	tb := newTestBot(t, testConfig(t))
	points := db.NewUserPointsStore(tb.db)
	require.NoError(t, points.IncrementPoints("alice", 1000))
	require.NoError(t, points.IncrementPoints("bob", 1000))

	tb.bot.HandleMessage(privMsg("streamer", "!sfx add boom boom.mp3 50 60 120", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("alice", "!boom", nil))
	requirePlayed(t, tb.player, "data/sfx/boom.mp3")

	// Inside the global cooldown: rejected without a reply, no play,
	// no counter change, no debit.
	tb.bot.HandleMessage(privMsg("bob", "!boom", nil))
	requireNothingPlayed(t, tb.player)

	sfxCommand, err := db.NewSFXCommandStore(tb.db).GetByName("boom")
	require.NoError(t, err)
	assert.Equal(t, 1, sfxCommand.Count)

	balance, err := points.GetPoints("bob")
	require.NoError(t, err)
	assert.Equal(t, 1000, balance)

	assert.Equal(t, []string{"Som !boom adicionado"}, tb.chat.messages())

	tb.clock.Advance(121 * time.Second)
	tb.bot.HandleMessage(privMsg("bob", "!boom", nil))
	requirePlayed(t, tb.player, "data/sfx/boom.mp3")
}

func TestSFXTriggerInsufficientPoints(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!sfx add boom boom.mp3 50", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("alice", "!boom", nil))
	requireNothingPlayed(t, tb.player)

	assert.Equal(t, []string{"Som !boom adicionado"}, tb.chat.messages())
}

func TestDisableSFX(t *testing.T) {
	tb := newTestBot(t, testConfig(t))
	points := db.NewUserPointsStore(tb.db)
	require.NoError(t, points.IncrementPoints("alice", 1000))

	tb.bot.HandleMessage(privMsg("streamer", "!sfx add boom boom.mp3", broadcasterBadge))
	tb.bot.DisableSFX()

	tb.bot.HandleMessage(privMsg("alice", "!boom", nil))
	requireNothingPlayed(t, tb.player)
}

func TestSFXUsage(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!sfx", broadcasterBadge))
	assert.Equal(t, []string{"Uso correto: !sfx <add|remove>"}, tb.chat.messages())
}
