package bot

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	twitchIRC "github.com/gempir/go-twitch-irc/v4"
	log "github.com/sirupsen/logrus"

	"github.com/eitchugo/happyfool-bot/internal/db"
)

// handleSFX dispatches the sfx add/remove subcommands.
func (b *Bot) handleSFX(m twitchIRC.PrivateMessage) {
	sub, args := splitFirst(rest(m.Message))
	sub = IsolateCommand(b.cfg.Prefix, b.cfg.Prefix+sub)

	switch sub {
	case "add":
		b.sfxAdd(m, args)
	case "remove":
		b.sfxRemove(m, args)
	default:
		b.say(m.Channel, fmt.Sprintf("Uso correto: %ssfx <add|remove>", b.cfg.Prefix))
	}
}

func (b *Bot) handleSFXAdd(m twitchIRC.PrivateMessage) {
	b.sfxAdd(m, rest(m.Message))
}

func (b *Bot) handleSFXRemove(m twitchIRC.PrivateMessage) {
	b.sfxRemove(m, rest(m.Message))
}

// sfxAdd registers a sound command. Broadcaster only. The optional
// cost/cooldown arguments fall back to the stored defaults when
// missing or unparseable.
func (b *Bot) sfxAdd(m twitchIRC.PrivateMessage, args string) {
	if !isBroadcaster(m) {
		return
	}

	name, args := splitFirst(args)
	audioFile, args := splitFirst(args)
	name = IsolateCommand(b.cfg.Prefix, b.cfg.Prefix+name)
	if name == "" || audioFile == "" {
		b.say(m.Channel, fmt.Sprintf(
			"Uso correto: %ssfx add <comando> <audio_file> [cost] [user_cooldown] [global_cooldown]", b.cfg.Prefix,
		))
		return
	}

	costArg, args := splitFirst(args)
	userCooldownArg, args := splitFirst(args)
	globalCooldownArg, _ := splitFirst(args)
	cost := intOrDefault(costArg, db.DefaultSFXCost)
	userCooldown := intOrDefault(userCooldownArg, db.DefaultSFXUserCooldown)
	globalCooldown := intOrDefault(globalCooldownArg, db.DefaultSFXGlobalCooldown)

	sfxCommand, err := b.sfx.GetByName(name)
	if err != nil {
		log.Error(err)
		return
	}
	if sfxCommand != nil {
		b.say(m.Channel, fmt.Sprintf("Som %s%s já existe", b.cfg.Prefix, name))
		return
	}

	if err := b.sfx.Create(name, audioFile, cost, userCooldown, globalCooldown); err != nil {
		log.Error(err)
		return
	}
	b.say(m.Channel, fmt.Sprintf("Som %s%s adicionado", b.cfg.Prefix, name))
}

// sfxRemove deletes a sound command. Broadcaster only.
func (b *Bot) sfxRemove(m twitchIRC.PrivateMessage, args string) {
	if !isBroadcaster(m) {
		return
	}

	name, _ := splitFirst(args)
	name = IsolateCommand(b.cfg.Prefix, b.cfg.Prefix+name)
	if name == "" {
		b.say(m.Channel, fmt.Sprintf("Uso correto: %ssfx remove <comando>", b.cfg.Prefix))
		return
	}

	sfxCommand, err := b.sfx.GetByName(name)
	if err != nil {
		log.Error(err)
		return
	}
	if sfxCommand == nil {
		b.say(m.Channel, fmt.Sprintf("Som %s%s não existe", b.cfg.Prefix, name))
		return
	}

	if err := b.sfx.Delete(sfxCommand.ID); err != nil {
		log.Error(err)
		return
	}
	b.say(m.Channel, fmt.Sprintf("Som %s%s removido", b.cfg.Prefix, name))
}

// trySFXCommand plays a stored sound if the parsed command matches one.
// Cooldown and cost rejections are silent to keep a busy chat quiet.
// Counters and cooldown timestamps only change on success.
func (b *Bot) trySFXCommand(m twitchIRC.PrivateMessage, command string) bool {
	if !b.sfxEnabled {
		return false
	}

	sfxCommand, err := b.sfx.GetByName(command)
	if err != nil {
		log.Error(err)
		return false
	}
	if sfxCommand == nil {
		return false
	}

	user := m.User.Name
	globalCooldown := time.Duration(sfxCommand.GlobalCooldown) * time.Second
	userCooldown := time.Duration(sfxCommand.UserCooldown) * time.Second

	if !b.cooldowns.GlobalReady(command, globalCooldown) {
		log.Debugf("sfx %s rejected: global cooldown", command)
		return true
	}
	if !b.cooldowns.UserReady(user, command, userCooldown) {
		log.Debugf("sfx %s rejected for %s: user cooldown", command, user)
		return true
	}

	if b.cfg.PointsEnabled {
		points, err := b.points.GetPoints(user)
		if err != nil {
			log.Error(err)
			return true
		}
		if points < sfxCommand.Cost {
			log.Debugf("sfx %s rejected for %s: insufficient points", command, user)
			return true
		}
		if err := b.points.DecrementPoints(user, sfxCommand.Cost); err != nil {
			log.Error(err)
			return true
		}
	}

	if err := b.sfx.IncrementCounter(sfxCommand.ID); err != nil {
		log.Error(err)
	}
	b.cooldowns.Touch(user, command)

	// Playback blocks until the sound ends, so it must not hold up
	// the chat loop.
	soundPath := filepath.Join(b.cfg.SoundPath, sfxCommand.AudioFile)
	go func() {
		if err := b.player.PlaySound(soundPath, b.cfg.SoundVolume, b.cfg.SoundSceneName); err != nil {
			log.Errorf("error playing %s: %v", soundPath, err)
		}
	}()

	return true
}

func intOrDefault(s string, fallback int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return value
}
