// Package config loads and validates the bot configuration from the
// environment. A .env file is overlaid by the caller before Load runs.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// Rank is one entry of the ordered rank table. Entries are evaluated in
// the configured order and the last threshold <= points wins.
type Rank struct {
	Label     string
	MinPoints int
}

type Config struct {
	Debug bool `envconfig:"HF_DEBUG" default:"false"`

	// --- Twitch ---
	Nick         string   `envconfig:"HF_NICK" required:"true"`
	Channels     []string `envconfig:"HF_CHANNELS" required:"true"`
	Prefix       string   `envconfig:"HF_PREFIX" default:"!"`
	ClientID     string   `envconfig:"HF_CLIENT_ID"`
	ClientSecret string   `envconfig:"HF_CLIENT_SECRET"`
	AccessToken  string   `envconfig:"HF_ACCESS_TOKEN"`
	RefreshToken string   `envconfig:"HF_REFRESH_TOKEN"`
	RedirectURI  string   `envconfig:"HF_REDIRECT_URI" default:"http://localhost:3000/auth"`

	// --- Storage ---
	DatabasePath string `envconfig:"HF_DATABASE_PATH" default:"data/happyfool.db"`
	DataDir      string `envconfig:"HF_DATA_DIR" default:"data"`
	CipherKey    string `envconfig:"HF_CIPHER_KEY"`
	SessionKey   string `envconfig:"HF_SESSION_KEY"`

	// --- Auth helper server ---
	AuthServerEnabled bool `envconfig:"HF_AUTH_SERVER_ENABLED" default:"false"`
	AuthServerPort    int  `envconfig:"HF_AUTH_SERVER_PORT" default:"3000"`

	// --- Points / loyalty ---
	PointsEnabled       bool   `envconfig:"HF_POINTS_ENABLED" default:"true"`
	PointsName          string `envconfig:"HF_POINTS_NAME" default:"gatos"`
	PointsTimerQuantity int    `envconfig:"HF_POINTS_TIMER_QUANTITY" default:"10"`
	PointsTimerInterval int    `envconfig:"HF_POINTS_TIMER_INTERVAL" default:"10"`
	PointsRanksRaw      string `envconfig:"HF_POINTS_RANKS" default:"Humano Maldito:0,Gatinho:600,Gato:1800,Gatão:5400,Pantera:16200,Odin Todo-Peludão:50000,Guppy:100000"`
	PointsRanks         []Rank `envconfig:"-"`

	// --- SFX ---
	SFXEnabled bool `envconfig:"HF_SFX_ENABLED" default:"true"`

	// --- Jokes ---
	JokesFilename string `envconfig:"HF_JOKES_FILENAME" default:"data/piadas.txt"`
	JokesCooldown int    `envconfig:"HF_JOKES_COOLDOWN" default:"60"`

	// --- Bets ---
	BetsEnabled      bool   `envconfig:"HF_BETS_ENABLED" default:"false"`
	BetsCommand      string `envconfig:"HF_BETS_COMMAND" default:"apostar"`
	BetsAllInWord    string `envconfig:"HF_BETS_ALL_IN_WORD" default:"tudo"`
	BetsMinimumBet   int    `envconfig:"HF_BETS_MINIMUM_BET" default:"60"`
	BetsDoubleChance int    `envconfig:"HF_BETS_DOUBLE_CHANCE" default:"45"`
	BetsTripleChance int    `envconfig:"HF_BETS_TRIPLE_CHANCE" default:"5"`
	BetsLoseChance   int    `envconfig:"HF_BETS_LOSE_CHANCE" default:"50"`
	BetsUserCooldown int    `envconfig:"HF_BETS_USER_COOLDOWN" default:"60"`

	// --- Slots ---
	SlotsEnabled      bool     `envconfig:"HF_SLOTS_ENABLED" default:"false"`
	SlotsBet          int      `envconfig:"HF_SLOTS_BET" default:"30"`
	SlotsUserCooldown int      `envconfig:"HF_SLOTS_USER_COOLDOWN" default:"60"`
	SlotsEmotes       []string `envconfig:"HF_SLOTS_EMOTES" default:"Kappa,KappaPride,DansGame,LUL,BloodTrail"`
	SlotsSuperEmote   string   `envconfig:"HF_SLOTS_SUPER_EMOTE" default:"PogChamp"`

	// --- OBS websocket ---
	OBSEnabled     bool    `envconfig:"HF_OBS_ENABLED" default:"false"`
	OBSHost        string  `envconfig:"HF_OBS_HOST" default:"localhost"`
	OBSPort        int     `envconfig:"HF_OBS_PORT" default:"4444"`
	OBSPassword    string  `envconfig:"HF_OBS_PASSWORD"`
	SoundPath      string  `envconfig:"HF_SOUND_PATH" default:"data/sfx"`
	SoundVolume    float64 `envconfig:"HF_SOUND_VOLUME" default:"0.3"`
	SoundSceneName string  `envconfig:"HF_SOUND_SCENE_NAME" default:"main"`
}

// Load reads the environment into a Config, parses the rank table and
// enforces the cross-feature constraints.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	ranks, err := ParseRanks(cfg.PointsRanksRaw)
	if err != nil {
		return nil, fmt.Errorf("error parsing rank table: %w", err)
	}
	cfg.PointsRanks = ranks

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints. Bets and slots both ride on
// the points system, so they are forced off when points are disabled.
// An odds triple that does not sum to 100 is replaced by the 45/5/50
// defaults instead of failing startup.
func (c *Config) Validate() error {
	if c.Prefix == "" {
		return fmt.Errorf("command prefix must not be empty")
	}
	if c.PointsTimerInterval <= 0 || c.PointsTimerQuantity < 0 {
		return fmt.Errorf("invalid points timer settings")
	}

	if c.BetsEnabled && !c.PointsEnabled {
		log.Warn("Bets require the points system. Disabling bets")
		c.BetsEnabled = false
	}
	if c.SlotsEnabled && !c.PointsEnabled {
		log.Warn("Slots require the points system. Disabling slots")
		c.SlotsEnabled = false
	}

	if c.BetsDoubleChance+c.BetsTripleChance+c.BetsLoseChance != 100 {
		log.Warnf(
			"Bets odds %d/%d/%d don't sum to 100, using defaults 45/5/50",
			c.BetsDoubleChance, c.BetsTripleChance, c.BetsLoseChance,
		)
		c.BetsDoubleChance = 45
		c.BetsTripleChance = 5
		c.BetsLoseChance = 50
	}

	if c.SFXEnabled && !c.OBSEnabled {
		log.Warn("SFX have no playback backend without OBS. Disabling sfx")
		c.SFXEnabled = false
	}

	return nil
}

// ParseRanks parses an ordered "Label:minimum,Label:minimum" list.
// Order is significant and preserved.
func ParseRanks(s string) ([]Rank, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ranks := make([]Rank, 0, len(parts))
	for _, part := range parts {
		label, minimum, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("bad rank entry %q", part)
		}

		minPoints, err := strconv.Atoi(strings.TrimSpace(minimum))
		if err != nil {
			return nil, fmt.Errorf("bad rank minimum %q: %w", minimum, err)
		}

		ranks = append(ranks, Rank{Label: strings.TrimSpace(label), MinPoints: minPoints})
	}

	return ranks, nil
}
