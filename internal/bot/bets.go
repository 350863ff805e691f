package bot

import (
	"fmt"
	"strconv"
	"time"

	twitchIRC "github.com/gempir/go-twitch-irc/v4"
	log "github.com/sirupsen/logrus"
)

const betsCooldownKey = "bets"

// betMultiplier maps a [1,100] draw onto an outcome multiplier:
// 0 for a loss, 2 for a double payout, 3 for a triple payout.
func betMultiplier(draw, loseChance, tripleChance int) int {
	if draw <= loseChance {
		return 0
	}
	if draw < 100-tripleChance {
		return 2
	}
	return 3
}

// handleBets runs one wager. The user cooldown is refreshed before the
// stake is validated, so a rejected bet still restarts the cooldown.
// Outcome bands over a [1,100] draw: [1,lose] total loss,
// (lose,100-triple) double payout, [100-triple,100] triple payout.
func (b *Bot) handleBets(m twitchIRC.PrivateMessage) {
	user := m.User.Name
	cooldown := time.Duration(b.cfg.BetsUserCooldown) * time.Second

	if !b.cooldowns.UserReady(user, betsCooldownKey, cooldown) {
		log.Debugf("bet rejected for %s: user cooldown", user)
		return
	}
	b.cooldowns.TouchUser(user, betsCooldownKey)

	userPoints, err := b.points.GetPoints(user)
	if err != nil {
		log.Error(err)
		return
	}

	stake := b.cfg.BetsMinimumBet
	if arg, _ := splitFirst(rest(m.Message)); arg != "" {
		if arg == b.cfg.BetsAllInWord {
			stake = userPoints
		} else if value, err := strconv.Atoi(arg); err == nil {
			stake = value
		}
	}

	if stake < b.cfg.BetsMinimumBet {
		b.say(m.Channel, fmt.Sprintf(
			"%s, você tem que apostar no mínimo %d %s!", user, b.cfg.BetsMinimumBet, b.cfg.PointsName,
		))
		return
	}
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

	draw := b.rand.Intn(100) + 1
	multiplier := betMultiplier(draw, b.cfg.BetsLoseChance, b.cfg.BetsTripleChance)
	if multiplier == 0 {
		total := userPoints - stake
		b.say(m.Channel, fmt.Sprintf(
			"%s, você perdeu %d %s. LUL Agora você tem %d %s!",
			user, stake, b.cfg.PointsName, total, b.cfg.PointsName,
		))
		return
	}

	win := stake * multiplier
	emote := "Clap"
	if multiplier == 3 {
		emote = "HYPERCLAP"
	}

	if err := b.points.IncrementPoints(user, win); err != nil {
		log.Error(err)
		return
	}

	// Displayed total comes from the pre-bet snapshot, not a fresh
	// read. Accrual landing between debit and credit is not shown.
	total := userPoints - stake + win
	b.say(m.Channel, fmt.Sprintf(
		"%s, você ganhou %d %s. %s Agora você tem %d %s!",
		user, win, b.cfg.PointsName, emote, total, b.cfg.PointsName,
	))
}
