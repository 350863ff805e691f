package bot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaffleStartBroadcasterOnly(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("alice", "!raffle_start meow", nil))
	assert.Empty(t, tb.chat.messages())

	tb.bot.HandleMessage(privMsg("streamer", "!raffle_start meow", broadcasterBadge))
	assert.Equal(t, []string{"Raffle started. Word key: meow"}, tb.chat.messages())
}

func TestRaffleStartRequiresKeyword(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!raffle_start", broadcasterBadge))
	assert.Equal(t, []string{"Uso correto: !raffle start <word-key>"}, tb.chat.messages())

	// A start without keyword must not arm enrollment.
	tb.bot.HandleMessage(privMsg("alice", "", nil))
	assert.Empty(t, tb.bot.raffle.participants)
}

func TestRaffleEnrollment(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!raffle start meow", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("alice", "meow", nil))
	tb.bot.HandleMessage(privMsg("alice", "meow", nil))
	tb.bot.HandleMessage(privMsg("bob", "meow please", nil))
	tb.bot.HandleMessage(privMsg("carol", "meow", nil))

	assert.Equal(t, []string{"alice", "carol"}, tb.bot.raffle.participants,
		"keyword must match the whole message and enrollment must be idempotent")
}

func TestRaffleSubscriberOnly(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!raffle startsub meow", broadcasterBadge))
	require.Equal(t, []string{"Subscriber/VIP only Raffle started. Word key: meow"}, tb.chat.messages())

	tb.bot.HandleMessage(privMsg("alice", "meow", nil))
	tb.bot.HandleMessage(privMsg("bob", "meow", subscriberBadge))
	tb.bot.HandleMessage(privMsg("carol", "meow", map[string]int{"founder": 1}))

	assert.Equal(t, []string{"bob", "carol"}, tb.bot.raffle.participants)
}

func TestRaffleStopKeepsParticipants(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!raffle start meow", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("alice", "meow", nil))
	tb.bot.HandleMessage(privMsg("streamer", "!raffle stop", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("bob", "meow", nil))

	assert.Equal(t, []string{"alice"}, tb.bot.raffle.participants,
		"stop must freeze the pool, not clear it")
}

func TestRaffleStartResetsPreviousRound(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!raffle start meow", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("alice", "meow", nil))
	tb.bot.HandleMessage(privMsg("streamer", "!raffle start woof", broadcasterBadge))

	assert.Empty(t, tb.bot.raffle.participants)
	tb.bot.HandleMessage(privMsg("bob", "woof", nil))
	assert.Equal(t, []string{"bob"}, tb.bot.raffle.participants)
}

func TestRafflePickRemovesWinnerFromPool(t *testing.T) {
	cfg := testConfig(t)
	tb := newTestBot(t, cfg)

	tb.bot.HandleMessage(privMsg("streamer", "!raffle start meow", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("alice", "meow", nil))
	tb.bot.HandleMessage(privMsg("bob", "meow", nil))

	tb.bot.HandleMessage(privMsg("streamer", "!raffle pick", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("streamer", "!raffle pick", broadcasterBadge))

	assert.Empty(t, tb.bot.raffle.participants)
	assert.ElementsMatch(t, []string{"alice", "bob"}, tb.bot.raffle.picked,
		"the same participant must not be picked twice")

	data, err := os.ReadFile(filepath.Join(cfg.DataDir, "testchannel", "winners.csv"))
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "name,picked_at\n"))
	assert.Contains(t, content, "alice")
	assert.Contains(t, content, "bob")
}

func TestRafflePickEmptyPool(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!raffle start meow", broadcasterBadge))
	tb.bot.HandleMessage(privMsg("streamer", "!raffle pick", broadcasterBadge))

	messages := tb.chat.messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "No participants left in this raffle!", messages[1])
}

func TestRaffleUsage(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("streamer", "!raffle bogus", broadcasterBadge))
	assert.Equal(t, []string{"Uso correto: !raffle <start|startsub|stop|pick>"}, tb.chat.messages())
}
