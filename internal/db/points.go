package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// UserPoints is a chatter's loyalty balance. Rows are created lazily on
// the first mutation.
type UserPoints struct {
	ID      int64
	User    string
	Minutes int
	Points  int
}

type UserPointsStore struct {
	db *DB
}

func NewUserPointsStore(db *DB) *UserPointsStore {
	return &UserPointsStore{db: db}
}

func (s *UserPointsStore) Add(user string) error {
	_, err := s.db.Exec("INSERT INTO user_points (user) VALUES (?) ON CONFLICT(user) DO NOTHING", user)
	if err != nil {
		return fmt.Errorf("error adding user %s: %w", user, err)
	}
	return nil
}

// Get returns nil without error when the user has no row yet.
func (s *UserPointsStore) Get(user string) (*UserPoints, error) {
	var record UserPoints
	err := s.db.QueryRow(
		"SELECT id, user, minutes, points FROM user_points WHERE user = ?", user,
	).Scan(&record.ID, &record.User, &record.Minutes, &record.Points)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting user %s: %w", user, err)
	}
	return &record, nil
}

func (s *UserPointsStore) Delete(user string) error {
	_, err := s.db.Exec("DELETE FROM user_points WHERE user = ?", user)
	if err != nil {
		return fmt.Errorf("error deleting user %s: %w", user, err)
	}
	return nil
}

// GetPoints returns 0 for unknown users.
func (s *UserPointsStore) GetPoints(user string) (int, error) {
	record, err := s.Get(user)
	if err != nil {
		return 0, err
	}
	if record == nil {
		return 0, nil
	}
	return record.Points, nil
}

// GetMinutes returns accumulated watch minutes, 0 for unknown users.
func (s *UserPointsStore) GetMinutes(user string) (int, error) {
	record, err := s.Get(user)
	if err != nil {
		return 0, err
	}
	if record == nil {
		return 0, nil
	}
	return record.Minutes, nil
}

func (s *UserPointsStore) IncrementPoints(user string, quantity int) error {
	return s.upsert(user, "UPDATE user_points SET points = points + ? WHERE user = ?", quantity)
}

func (s *UserPointsStore) IncrementMinutes(user string, quantity int) error {
	return s.upsert(user, "UPDATE user_points SET minutes = minutes + ? WHERE user = ?", quantity)
}

// DecrementPoints floors the stored balance at 0.
func (s *UserPointsStore) DecrementPoints(user string, quantity int) error {
	return s.upsert(user, "UPDATE user_points SET points = MAX(points - ?, 0) WHERE user = ?", quantity)
}

func (s *UserPointsStore) upsert(user, query string, quantity int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT INTO user_points (user) VALUES (?) ON CONFLICT(user) DO NOTHING", user); err != nil {
		return fmt.Errorf("error ensuring user %s: %w", user, err)
	}

	if _, err := tx.Exec(query, quantity, user); err != nil {
		return fmt.Errorf("error updating user %s: %w", user, err)
	}

	return tx.Commit()
}
