package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UserCommand is a user-defined name -> reply-text mapping.
type UserCommand struct {
	ID        int64
	Name      string
	Timestamp time.Time
	Count     int
	Creator   string
	Text      string
}

type UserCommandStore struct {
	db *DB
}

func NewUserCommandStore(db *DB) *UserCommandStore {
	return &UserCommandStore{db: db}
}

func (s *UserCommandStore) Create(name, creator, text string) error {
	_, err := s.db.Exec(
		"INSERT INTO user_commands (name, timestamp, creator, text) VALUES (?, ?, ?, ?)",
		name, time.Now().UTC().Format(time.RFC3339), creator, text,
	)
	if err != nil {
		return fmt.Errorf("error creating command %s: %w", name, err)
	}
	return nil
}

// GetByName returns nil without error when the command does not exist.
func (s *UserCommandStore) GetByName(name string) (*UserCommand, error) {
	return s.get("SELECT id, name, timestamp, count, creator, text FROM user_commands WHERE name = ?", name)
}

func (s *UserCommandStore) GetByID(id int64) (*UserCommand, error) {
	return s.get("SELECT id, name, timestamp, count, creator, text FROM user_commands WHERE id = ?", id)
}

func (s *UserCommandStore) get(query string, arg any) (*UserCommand, error) {
	var (
		command   UserCommand
		timestamp string
	)

	err := s.db.QueryRow(query, arg).Scan(
		&command.ID, &command.Name, &timestamp, &command.Count, &command.Creator, &command.Text,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting command: %w", err)
	}

	command.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
	return &command, nil
}

func (s *UserCommandStore) GetAll() ([]UserCommand, error) {
	rows, err := s.db.Query("SELECT id, name, timestamp, count, creator, text FROM user_commands ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("error listing commands: %w", err)
	}
	defer rows.Close()

	var commands []UserCommand
	for rows.Next() {
		var (
			command   UserCommand
			timestamp string
		)
		if err := rows.Scan(&command.ID, &command.Name, &timestamp, &command.Count, &command.Creator, &command.Text); err != nil {
			return nil, fmt.Errorf("error scanning command: %w", err)
		}
		command.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
		commands = append(commands, command)
	}

	return commands, rows.Err()
}

func (s *UserCommandStore) Update(id int64, text string) error {
	_, err := s.db.Exec("UPDATE user_commands SET text = ? WHERE id = ?", text, id)
	if err != nil {
		return fmt.Errorf("error updating command: %w", err)
	}
	return nil
}

func (s *UserCommandStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM user_commands WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting command: %w", err)
	}
	return nil
}

func (s *UserCommandStore) IncrementCounter(id int64) error {
	_, err := s.db.Exec("UPDATE user_commands SET count = count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error incrementing command counter: %w", err)
	}
	return nil
}
