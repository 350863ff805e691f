// Package bot dispatches chat messages to the built-in command
// handlers, the custom text commands and the sfx triggers, and owns the
// in-memory state of the mini-games.
package bot

import (
	"math/rand"
	"strings"
	"time"

	twitchIRC "github.com/gempir/go-twitch-irc/v4"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/eitchugo/happyfool-bot/internal/config"
	"github.com/eitchugo/happyfool-bot/internal/db"
)

// Chat is the slice of the IRC client the bot needs: replying and
// listing connected chatters.
type Chat interface {
	Say(channel, text string)
	Userlist(channel string) ([]string, error)
}

// StreamInfo reports whether a channel is currently live.
type StreamInfo interface {
	IsLive(channel string) (bool, error)
}

// SoundPlayer plays an audio asset in a scene. PlaySound returns after
// playback ends.
type SoundPlayer interface {
	PlaySound(path string, volume float64, scene string) error
}

type handlerFunc func(m twitchIRC.PrivateMessage)

type Bot struct {
	cfg    *config.Config
	chat   Chat
	api    StreamInfo
	player SoundPlayer

	commands *db.UserCommandStore
	points   *db.UserPointsStore
	sfx      *db.SFXCommandStore

	clock clockwork.Clock
	rand  *rand.Rand

	builtins   map[string]handlerFunc
	cooldowns  *CooldownTracker
	raffle     raffleState
	sfxEnabled bool

	jokesLastUsed time.Time
}

func New(cfg *config.Config, chat Chat, api StreamInfo, player SoundPlayer, database *db.DB, clock clockwork.Clock, rng *rand.Rand) *Bot {
	b := &Bot{
		cfg:        cfg,
		chat:       chat,
		api:        api,
		player:     player,
		commands:   db.NewUserCommandStore(database),
		points:     db.NewUserPointsStore(database),
		sfx:        db.NewSFXCommandStore(database),
		clock:      clock,
		rand:       rng,
		cooldowns:  NewCooldownTracker(clock),
		sfxEnabled: cfg.SFXEnabled,
	}

	b.builtins = map[string]handlerFunc{
		"add":          b.handleAdd,
		"edit":         b.handleEdit,
		"delete":       b.handleDelete,
		"stat":         b.handleStat,
		"piadaruim":    b.handleJokes,
		"raffle":       b.handleRaffle,
		"raffle_start": b.handleRaffleStart,
		"raffle_stop":  b.handleRaffleStop,
		"raffle_pick":  b.handleRafflePick,
	}

	if cfg.PointsEnabled {
		b.builtins[cfg.PointsName] = b.handlePoints
	}
	if cfg.SFXEnabled {
		b.builtins["sfx"] = b.handleSFX
		b.builtins["sfx_add"] = b.handleSFXAdd
		b.builtins["sfx_remove"] = b.handleSFXRemove
	}
	if cfg.BetsEnabled {
		b.builtins[cfg.BetsCommand] = b.handleBets
	}
	if cfg.SlotsEnabled {
		b.builtins["slots"] = b.handleSlots
	}

	return b
}

// DisableSFX turns the sfx system off for the rest of the session,
// used when the scene-control backend cannot be reached.
func (b *Bot) DisableSFX() {
	b.sfxEnabled = false
}

// HandleMessage processes one inbound chat line. Built-in commands are
// matched by exact first token; unmatched commands fall back to the
// custom text commands and then the sfx commands. The raffle keyword
// check runs independently of command handling.
func (b *Bot) HandleMessage(m twitchIRC.PrivateMessage) {
	log.Infof("[#%s] <%s> %s", m.Channel, m.User.Name, m.Message)

	if strings.EqualFold(m.User.Name, b.cfg.Nick) {
		return
	}

	if token, found := strings.CutPrefix(firstField(m.Message), b.cfg.Prefix); found && token != "" {
		if handler, ok := b.builtins[token]; ok {
			handler(m)
		} else if command := IsolateCommand(b.cfg.Prefix, m.Message); command != "" {
			if !b.tryUserCommand(m, command) {
				b.trySFXCommand(m, command)
			}
		}
	}

	b.maybeEnrollRaffle(m)
}

func (b *Bot) say(channel, text string) {
	b.chat.Say(channel, text)
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// rest returns the message content after the first token.
func rest(s string) string {
	_, args := splitFirst(s)
	return args
}

// splitFirst splits off the first whitespace-delimited token.
func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	token, args, _ := strings.Cut(s, " ")
	return token, strings.TrimSpace(args)
}

func isSubscriber(m twitchIRC.PrivateMessage) bool {
	return m.User.Badges["subscriber"] > 0 || m.User.Badges["founder"] > 0
}

func isModerator(m twitchIRC.PrivateMessage) bool {
	return m.User.Badges["moderator"] > 0
}

func isBroadcaster(m twitchIRC.PrivateMessage) bool {
	return m.User.Badges["broadcaster"] > 0
}
