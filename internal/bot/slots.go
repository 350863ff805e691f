package bot

import (
	"fmt"
	"time"

	twitchIRC "github.com/gempir/go-twitch-irc/v4"
	log "github.com/sirupsen/logrus"
)

const slotsCooldownKey = "slots"

// handleSlots spins the three-reel slot machine for a fixed stake. The
// reel is the configured symbols plus the super symbol appended at the
// end.
func (b *Bot) handleSlots(m twitchIRC.PrivateMessage) {
	user := m.User.Name
	cooldown := time.Duration(b.cfg.SlotsUserCooldown) * time.Second

	if !b.cooldowns.UserReady(user, slotsCooldownKey, cooldown) {
		log.Debugf("slots rejected for %s: user cooldown", user)
		return
	}
	b.cooldowns.TouchUser(user, slotsCooldownKey)

	userPoints, err := b.points.GetPoints(user)
	if err != nil {
		log.Error(err)
		return
	}

	stake := b.cfg.SlotsBet
	if stake > userPoints {
		b.say(m.Channel, fmt.Sprintf(
			"%s, você não tem %s suficientes para apostar isso!", user, b.cfg.PointsName,
		))
		return
	}

	if err := b.points.DecrementPoints(user, stake); err != nil {
		log.Error(err)
		return
	}

	reel := make([]string, 0, len(b.cfg.SlotsEmotes)+1)
	reel = append(reel, b.cfg.SlotsEmotes...)
	reel = append(reel, b.cfg.SlotsSuperEmote)

	draws := []string{
		reel[b.rand.Intn(len(reel))],
		reel[b.rand.Intn(len(reel))],
		reel[b.rand.Intn(len(reel))],
	}

	win, resultMsg := scoreSlots(draws, b.cfg.SlotsSuperEmote, stake, b.cfg.PointsName)
	if win > 0 {
		if err := b.points.IncrementPoints(user, win); err != nil {
			log.Error(err)
			return
		}
	}

	b.say(m.Channel, fmt.Sprintf("Slots deu: [ %s %s %s ] %s", draws[0], draws[1], draws[2], resultMsg))
}

// scoreSlots evaluates the payout by position order: three super
// symbols pay x5, three of an ordinary symbol pay x3, any pair pays x2.
// The first matching rule wins.
func scoreSlots(draws []string, superEmote string, stake int, pointsName string) (int, string) {
	for _, symbol := range draws {
		count := 0
		for _, other := range draws {
			if other == symbol {
				count++
			}
		}

		switch {
		case count == 3 && symbol == superEmote:
			win := stake * 5
			return win, fmt.Sprintf("JACKPOT!!! Ganhou %d %s!!! Kreygasm", win, pointsName)
		case count == 3:
			win := stake * 3
			return win, fmt.Sprintf("Triplo! Ganhou %d %s! CoolCat", win, pointsName)
		case count == 2:
			win := stake * 2
			return win, fmt.Sprintf("Dobro! Ganhou %d %s. BloodTrail", win, pointsName)
		}
	}

	return 0, fmt.Sprintf("Só perdeu %d %s. LUL", stake, pointsName)
}
