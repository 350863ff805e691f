// Package db is the persistence gateway over sqlite. Every exported
// operation is one transactional unit.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	wrapper := &DB{DB: db}

	_, err = wrapper.Exec(`
		PRAGMA foreign_keys = ON;

		CREATE TABLE IF NOT EXISTS user_commands (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			timestamp TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			creator TEXT NOT NULL,
			text TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sfx_commands (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			timestamp TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			audio_file TEXT NOT NULL,
			cost INTEGER NOT NULL DEFAULT 60,
			user_cooldown INTEGER NOT NULL DEFAULT 60,
			global_cooldown INTEGER NOT NULL DEFAULT 60
		);

		CREATE TABLE IF NOT EXISTS user_points (
			id INTEGER PRIMARY KEY,
			user TEXT NOT NULL UNIQUE,
			minutes INTEGER NOT NULL DEFAULT 0,
			points INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS channels (
			id TEXT PRIMARY KEY,
			login TEXT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	return wrapper, nil
}
