package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/eitchugo/happyfool-bot/internal/bot"
	"github.com/eitchugo/happyfool-bot/internal/config"
	"github.com/eitchugo/happyfool-bot/internal/crypto"
	"github.com/eitchugo/happyfool-bot/internal/db"
	"github.com/eitchugo/happyfool-bot/internal/obs"
	"github.com/eitchugo/happyfool-bot/internal/twitch"
	"github.com/eitchugo/happyfool-bot/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}

	cipher := crypto.Cipher(cfg.CipherKey)
	tokenManager := twitch.NewTokenManager(database, cipher, cfg.ClientID, cfg.ClientSecret)

	// Seed the token store from the environment on first run.
	if cfg.AccessToken != "" {
		exists, err := tokenManager.HasRecord(cfg.Nick)
		if err != nil {
			log.Fatal(err)
		}
		if !exists {
			err = tokenManager.CreateOrUpdateStoreRecord(cfg.Nick, cfg.Nick, cfg.AccessToken, cfg.RefreshToken)
			if err != nil {
				log.Fatal(err)
			}
		}
	}

	accessToken, refreshToken, err := tokenManager.EnsureValidTokens(cfg.Nick)
	if err != nil {
		log.Fatal(err)
	}

	apiClient, err := twitch.NewAPIClient(cfg.ClientID, cfg.ClientSecret, accessToken, refreshToken)
	if err != nil {
		log.Fatal(err)
	}

	ircClient, err := twitch.NewIRCClient(cfg.Nick, tokenManager)
	if err != nil {
		log.Fatal(err)
	}

	clock := clockwork.NewRealClock()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var player bot.SoundPlayer
	obsConnected := false
	if cfg.OBSEnabled {
		obsClient := obs.NewClient(cfg.OBSHost, cfg.OBSPort, cfg.OBSPassword, clock)
		if err := obsClient.Connect(); err != nil {
			log.Errorf("Couldn't enable OBS websocket system. Disabling sfx feature: %v", err)
		} else {
			log.Info("Connected to OBS websocket")
			player = obsClient
			obsConnected = true
		}
	}

	b := bot.New(cfg, ircClient, apiClient, player, database, clock, rng)
	if !obsConnected {
		b.DisableSFX()
	}

	ircClient.OnPrivateMessage(b.HandleMessage)
	ircClient.OnConnect(func() {
		log.Infof("Successfully logged in as: %s. Bot is running!", cfg.Nick)
	})
	ircClient.Join(cfg.Channels...)

	if cfg.PointsEnabled {
		accrual := cron.New()
		_, err := accrual.AddFunc(fmt.Sprintf("@every %dm", cfg.PointsTimerInterval), b.AccrueLoyalty)
		if err != nil {
			log.Fatal(err)
		}
		accrual.Start()
	}

	if cfg.AuthServerEnabled {
		web.StartAuthServer(cfg, tokenManager)
	}

	if err := ircClient.Connect(); err != nil {
		log.Fatal("Error connecting to Twitch: ", err)
	}
}
