package bot

import (
	"math/rand"
	"path/filepath"
	"sync"
	"testing"

	twitchIRC "github.com/gempir/go-twitch-irc/v4"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eitchugo/happyfool-bot/internal/config"
	"github.com/eitchugo/happyfool-bot/internal/db"
)

type fakeChat struct {
	mu    sync.Mutex
	said  []string
	users []string
}

func (c *fakeChat) Say(channel, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.said = append(c.said, text)
}

func (c *fakeChat) Userlist(channel string) ([]string, error) {
	return c.users, nil
}

func (c *fakeChat) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.said...)
}

type fakeStream struct {
	live bool
	err  error
}

func (s *fakeStream) IsLive(channel string) (bool, error) {
	return s.live, s.err
}

type fakePlayer struct {
	plays chan string
}

func (p *fakePlayer) PlaySound(path string, volume float64, scene string) error {
	p.plays <- path
	return nil
}

type testBot struct {
	bot    *Bot
	chat   *fakeChat
	stream *fakeStream
	player *fakePlayer
	clock  clockwork.FakeClock
	db     *db.DB
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	ranks, err := config.ParseRanks("Humano Maldito:0,Gatinho:600,Gato:1800")
	require.NoError(t, err)

	return &config.Config{
		Nick:     "happyfool",
		Channels: []string{"testchannel"},
		Prefix:   "!",
		DataDir:  t.TempDir(),

		PointsEnabled:       true,
		PointsName:          "gatos",
		PointsTimerQuantity: 10,
		PointsTimerInterval: 10,
		PointsRanks:         ranks,

		SFXEnabled:     true,
		SoundPath:      "data/sfx",
		SoundVolume:    0.3,
		SoundSceneName: "main",

		JokesFilename: filepath.Join(t.TempDir(), "piadas.txt"),
		JokesCooldown: 60,

		BetsEnabled:      true,
		BetsCommand:      "apostar",
		BetsAllInWord:    "tudo",
		BetsMinimumBet:   60,
		BetsDoubleChance: 45,
		BetsTripleChance: 5,
		BetsLoseChance:   50,
		BetsUserCooldown: 60,

		SlotsEnabled:      true,
		SlotsBet:          30,
		SlotsUserCooldown: 60,
		SlotsEmotes:       []string{"Kappa", "LUL"},
		SlotsSuperEmote:   "PogChamp",
	}
}

func newTestBot(t *testing.T, cfg *config.Config) *testBot {
	t.Helper()

	database, err := db.Open(":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	chat := &fakeChat{}
	stream := &fakeStream{}
	player := &fakePlayer{plays: make(chan string, 8)}
	clock := clockwork.NewFakeClock()
	rng := rand.New(rand.NewSource(1))

	return &testBot{
		bot:    New(cfg, chat, stream, player, database, clock, rng),
		chat:   chat,
		stream: stream,
		player: player,
		clock:  clock,
		db:     database,
	}
}

func privMsg(user, message string, badges map[string]int) twitchIRC.PrivateMessage {
	return twitchIRC.PrivateMessage{
		Channel: "testchannel",
		User:    twitchIRC.User{Name: user, Badges: badges},
		Message: message,
	}
}

var (
	subscriberBadge  = map[string]int{"subscriber": 1}
	moderatorBadge   = map[string]int{"moderator": 1}
	broadcasterBadge = map[string]int{"broadcaster": 1}
)

func TestHandleMessageSkipsOwnEcho(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("HappyFool", "!stat hello", nil))
	assert.Empty(t, tb.chat.messages())
}

func TestHandleMessageIgnoresPlainChat(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("alice", "just talking here", nil))
	tb.bot.HandleMessage(privMsg("alice", "mentioning !add mid-message", nil))
	assert.Empty(t, tb.chat.messages())
}

func TestBuiltinsMatchExactFirstTokenOnly(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	// "!stat?" is not the stat builtin. It normalizes to "stat" and
	// falls through to the custom command lookup, which finds nothing.
	tb.bot.HandleMessage(privMsg("alice", "!stat? hello", subscriberBadge))
	assert.Empty(t, tb.chat.messages())

	tb.bot.HandleMessage(privMsg("alice", "!stat hello", subscriberBadge))
	require.Len(t, tb.chat.messages(), 1)
	assert.Equal(t, "Comando !hello não existe", tb.chat.messages()[0])
}

func TestUnknownPrefixedCommandStaysSilent(t *testing.T) {
	tb := newTestBot(t, testConfig(t))

	tb.bot.HandleMessage(privMsg("alice", "!nosuchthing", nil))
	assert.Empty(t, tb.chat.messages())
}
