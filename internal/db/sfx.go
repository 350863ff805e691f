package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Stored defaults applied when sfx_add omits the optional arguments.
const (
	DefaultSFXCost           = 60
	DefaultSFXUserCooldown   = 60
	DefaultSFXGlobalCooldown = 60
)

// SFXCommand binds a command name to an audio asset gated by cost and
// per-user/global cooldowns (in seconds).
type SFXCommand struct {
	ID             int64
	Name           string
	Timestamp      time.Time
	Count          int
	AudioFile      string
	Cost           int
	UserCooldown   int
	GlobalCooldown int
}

type SFXCommandStore struct {
	db *DB
}

func NewSFXCommandStore(db *DB) *SFXCommandStore {
	return &SFXCommandStore{db: db}
}

func (s *SFXCommandStore) Create(name, audioFile string, cost, userCooldown, globalCooldown int) error {
	_, err := s.db.Exec(
		`INSERT INTO sfx_commands (name, timestamp, audio_file, cost, user_cooldown, global_cooldown)
		VALUES (?, ?, ?, ?, ?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339), audioFile, cost, userCooldown, globalCooldown,
	)
	if err != nil {
		return fmt.Errorf("error creating sfx command %s: %w", name, err)
	}
	return nil
}

// GetByName returns nil without error when the command does not exist.
func (s *SFXCommandStore) GetByName(name string) (*SFXCommand, error) {
	return s.get("SELECT id, name, timestamp, count, audio_file, cost, user_cooldown, global_cooldown FROM sfx_commands WHERE name = ?", name)
}

func (s *SFXCommandStore) GetByID(id int64) (*SFXCommand, error) {
	return s.get("SELECT id, name, timestamp, count, audio_file, cost, user_cooldown, global_cooldown FROM sfx_commands WHERE id = ?", id)
}

func (s *SFXCommandStore) get(query string, arg any) (*SFXCommand, error) {
	var (
		command   SFXCommand
		timestamp string
	)

	err := s.db.QueryRow(query, arg).Scan(
		&command.ID, &command.Name, &timestamp, &command.Count,
		&command.AudioFile, &command.Cost, &command.UserCooldown, &command.GlobalCooldown,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting sfx command: %w", err)
	}

	command.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
	return &command, nil
}

func (s *SFXCommandStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM sfx_commands WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting sfx command: %w", err)
	}
	return nil
}

func (s *SFXCommandStore) IncrementCounter(id int64) error {
	_, err := s.db.Exec("UPDATE sfx_commands SET count = count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error incrementing sfx counter: %w", err)
	}
	return nil
}
