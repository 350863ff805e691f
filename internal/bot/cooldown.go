package bot

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// CooldownTracker keeps last-used timestamps per command (global) and
// per user per command. State is in-memory only and resets with the
// process.
type CooldownTracker struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	global map[string]time.Time
	user   map[string]map[string]time.Time
}

func NewCooldownTracker(clock clockwork.Clock) *CooldownTracker {
	return &CooldownTracker{
		clock:  clock,
		global: make(map[string]time.Time),
		user:   make(map[string]map[string]time.Time),
	}
}

// GlobalReady reports whether the command's global cooldown has passed.
// Commands never used before are always ready.
func (t *CooldownTracker) GlobalReady(command string, cooldown time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clock.Now().Sub(t.global[command]) >= cooldown
}

// UserReady reports whether the user's cooldown for the command has
// passed.
func (t *CooldownTracker) UserReady(user, command string, cooldown time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clock.Now().Sub(t.user[user][command]) >= cooldown
}

// Touch refreshes both the global and the user timestamps for command.
func (t *CooldownTracker) Touch(user, command string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	t.global[command] = now
	t.touchUserLocked(user, command, now)
}

// TouchUser refreshes only the user timestamp for command.
func (t *CooldownTracker) TouchUser(user, command string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touchUserLocked(user, command, t.clock.Now())
}

func (t *CooldownTracker) touchUserLocked(user, command string, now time.Time) {
	if t.user[user] == nil {
		t.user[user] = make(map[string]time.Time)
	}
	t.user[user][command] = now
}
