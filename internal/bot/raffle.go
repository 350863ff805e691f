package bot

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	twitchIRC "github.com/gempir/go-twitch-irc/v4"
	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
)

type raffleState struct {
	enabled        bool
	subscriberOnly bool
	keyword        string
	participants   []string
	picked         []string
	lastPick       string
}

// RaffleWinner is one line of the per-channel winners history file.
type RaffleWinner struct {
	Name     string    `csv:"name"`
	PickedAt time.Time `csv:"picked_at"`
}

// handleRaffle dispatches the raffle subcommands.
func (b *Bot) handleRaffle(m twitchIRC.PrivateMessage) {
	sub, args := splitFirst(rest(m.Message))
	sub = IsolateCommand(b.cfg.Prefix, b.cfg.Prefix+sub)

	switch sub {
	case "start":
		b.raffleStart(m, args, false)
	case "startsub":
		b.raffleStart(m, args, true)
	case "stop":
		b.raffleStop(m)
	case "pick":
		b.rafflePick(m)
	default:
		b.say(m.Channel, fmt.Sprintf("Uso correto: %sraffle <start|startsub|stop|pick>", b.cfg.Prefix))
	}
}

func (b *Bot) handleRaffleStart(m twitchIRC.PrivateMessage) {
	b.raffleStart(m, rest(m.Message), false)
}

func (b *Bot) handleRaffleStop(m twitchIRC.PrivateMessage) {
	b.raffleStop(m)
}

func (b *Bot) handleRafflePick(m twitchIRC.PrivateMessage) {
	b.rafflePick(m)
}

// raffleStart resets the participant and picked lists and arms the
// keyword. Broadcaster only.
func (b *Bot) raffleStart(m twitchIRC.PrivateMessage, args string, subscriberOnly bool) {
	if !isBroadcaster(m) {
		return
	}

	keyword, _ := splitFirst(args)
	if keyword == "" {
		b.say(m.Channel, fmt.Sprintf("Uso correto: %sraffle start <word-key>", b.cfg.Prefix))
		return
	}

	b.raffle = raffleState{
		enabled:        true,
		subscriberOnly: subscriberOnly,
		keyword:        keyword,
	}

	started := "Raffle started"
	if subscriberOnly {
		started = "Subscriber/VIP only Raffle started"
	}
	b.say(m.Channel, fmt.Sprintf("%s. Word key: %s", started, keyword))
}

// raffleStop disables enrollment without clearing history. Broadcaster
// only.
func (b *Bot) raffleStop(m twitchIRC.PrivateMessage) {
	if !isBroadcaster(m) {
		return
	}

	b.raffle.enabled = false
	b.say(m.Channel, "Raffle stopped.")
}

// rafflePick uniformly selects a participant, moves them to the picked
// list and records them in the winners file. Broadcaster only.
func (b *Bot) rafflePick(m twitchIRC.PrivateMessage) {
	if !isBroadcaster(m) {
		return
	}

	if len(b.raffle.participants) == 0 {
		b.say(m.Channel, "No participants left in this raffle!")
		return
	}

	index := b.rand.Intn(len(b.raffle.participants))
	winner := b.raffle.participants[index]
	b.raffle.participants = slices.Delete(b.raffle.participants, index, index+1)
	b.raffle.picked = append(b.raffle.picked, winner)
	b.raffle.lastPick = winner

	b.appendRaffleWinner(m.Channel, winner)
	b.say(m.Channel, fmt.Sprintf("Picked a participant from the raffle: %s.", winner))
}

// maybeEnrollRaffle adds the author to the participant list when the
// message matches the raffle keyword exactly. Idempotent per user.
func (b *Bot) maybeEnrollRaffle(m twitchIRC.PrivateMessage) {
	if !b.raffle.enabled || m.Message != b.raffle.keyword {
		return
	}
	if b.raffle.subscriberOnly && !isSubscriber(m) {
		return
	}
	if slices.Contains(b.raffle.participants, m.User.Name) {
		return
	}

	b.raffle.participants = append(b.raffle.participants, m.User.Name)
	log.Infof("%s joined the raffle", m.User.Name)
}

// appendRaffleWinner keeps a per-channel audit trail of picks that
// survives restarts, unlike the in-memory raffle state.
func (b *Bot) appendRaffleWinner(channel, name string) {
	dirPath := filepath.Join(b.cfg.DataDir, channel)
	if err := os.MkdirAll(dirPath, os.ModePerm); err != nil {
		log.Errorf("error creating %s directory: %v", dirPath, err)
		return
	}

	filePath := filepath.Join(dirPath, "winners.csv")
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Error(err)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		log.Error(err)
		return
	}

	winners := []RaffleWinner{{Name: name, PickedAt: time.Now()}}
	if fi.Size() == 0 {
		err = gocsv.MarshalFile(&winners, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(&winners, f)
	}
	if err != nil {
		log.Error(err)
	}
}
