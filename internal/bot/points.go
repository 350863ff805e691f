package bot

import (
	"fmt"
	"strconv"

	twitchIRC "github.com/gempir/go-twitch-irc/v4"
	log "github.com/sirupsen/logrus"

	"github.com/eitchugo/happyfool-bot/internal/config"
)

// Rank returns the label of the last rank table entry whose threshold
// is <= points, iterating the table in configured order.
func Rank(ranks []config.Rank, points int) string {
	result := "Sem rank"
	for _, rank := range ranks {
		if points >= rank.MinPoints {
			result = rank.Label
		}
	}
	return result
}

// AccrueLoyalty credits every connected chatter with the configured
// point quantity and with accrual minutes equal to the interval. A
// channel that is not live is skipped entirely for the tick.
func (b *Bot) AccrueLoyalty() {
	for _, channel := range b.cfg.Channels {
		live, err := b.api.IsLive(channel)
		if err != nil {
			log.Errorf("error checking live status for %s: %v", channel, err)
			continue
		}
		if !live {
			continue
		}

		users, err := b.chat.Userlist(channel)
		if err != nil {
			log.Errorf("error listing chatters for %s: %v", channel, err)
			continue
		}

		for _, user := range users {
			if err := b.points.IncrementPoints(user, b.cfg.PointsTimerQuantity); err != nil {
				log.Error(err)
				continue
			}
			if err := b.points.IncrementMinutes(user, b.cfg.PointsTimerInterval); err != nil {
				log.Error(err)
			}
		}
	}
}

// handlePoints shows the caller's balance, or runs the broadcaster-only
// add/remove adjustments.
func (b *Bot) handlePoints(m twitchIRC.PrivateMessage) {
	sub, args := splitFirst(rest(m.Message))
	sub = IsolateCommand(b.cfg.Prefix, b.cfg.Prefix+sub)

	if isBroadcaster(m) && (sub == "add" || sub == "remove") {
		b.adjustPoints(m, sub, args)
		return
	}

	b.showPoints(m)
}

func (b *Bot) adjustPoints(m twitchIRC.PrivateMessage, sub, args string) {
	user, quantityArg := splitFirst(args)
	quantity, err := strconv.Atoi(quantityArg)
	if user == "" || err != nil {
		b.say(m.Channel, fmt.Sprintf("Uso correto: %s%s %s <user> <quantity>", b.cfg.Prefix, b.cfg.PointsName, sub))
		return
	}

	if sub == "add" {
		if err := b.points.IncrementPoints(user, quantity); err != nil {
			log.Error(err)
			return
		}
		b.say(m.Channel, fmt.Sprintf("Adicionados %d %s para %s...", quantity, b.cfg.PointsName, user))
		return
	}

	if err := b.points.DecrementPoints(user, quantity); err != nil {
		log.Error(err)
		return
	}
	b.say(m.Channel, fmt.Sprintf("Removidos %d %s de %s...", quantity, b.cfg.PointsName, user))
}

func (b *Bot) showPoints(m twitchIRC.PrivateMessage) {
	user := m.User.Name

	points, err := b.points.GetPoints(user)
	if err != nil {
		log.Error(err)
		return
	}
	minutes, err := b.points.GetMinutes(user)
	if err != nil {
		log.Error(err)
		return
	}

	b.say(m.Channel, fmt.Sprintf(
		"%s, você tem %d %s e é [%s]. Horas na live: %dh",
		user, points, b.cfg.PointsName, Rank(b.cfg.PointsRanks, points), minutes/60,
	))
}
