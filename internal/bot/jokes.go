package bot

import (
	"os"
	"strings"
	"time"

	twitchIRC "github.com/gempir/go-twitch-irc/v4"
	log "github.com/sirupsen/logrus"
)

// handleJokes sends a random line from the jokes file, throttled by a
// global cooldown. A missing file is logged and skipped.
func (b *Bot) handleJokes(m twitchIRC.PrivateMessage) {
	now := b.clock.Now()
	cooldown := time.Duration(b.cfg.JokesCooldown) * time.Second
	if now.Sub(b.jokesLastUsed) <= cooldown {
		return
	}

	data, err := os.ReadFile(b.cfg.JokesFilename)
	if err != nil {
		log.Errorf("error reading jokes file: %v", err)
		return
	}

	var jokes []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			jokes = append(jokes, line)
		}
	}
	if len(jokes) == 0 {
		return
	}

	b.say(m.Channel, jokes[b.rand.Intn(len(jokes))])
	b.jokesLastUsed = now
}
