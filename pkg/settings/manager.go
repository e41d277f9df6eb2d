package settings

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	DefaultDbName = "./recordsbot.db"

	BestLap    = "BestLap"
	TopSpeed   = "TopSpeed"
	BestSector = "BestSector"

	// DefaultDelay is the feed users see until they pick one ("live"
	// means the immediate feed).
	DefaultDelay = "live"
)

type TelegramUser struct {
	ID     string
	Name   string
	ChatID string
}

// Notifications holds which record kinds a user wants to be notified of.
type Notifications map[string]bool

func AllEnabled() Notifications {
	return Notifications{
		BestLap:    true,
		TopSpeed:   true,
		BestSector: true,
	}
}

func AllDisabled() Notifications {
	return Notifications{
		BestLap:    false,
		TopSpeed:   false,
		BestSector: false,
	}
}

func (n Notifications) BestLapSymbol() string {
	return symbolStatus(n[BestLap])
}

func (n Notifications) TopSpeedSymbol() string {
	return symbolStatus(n[TopSpeed])
}

func (n Notifications) BestSectorSymbol() string {
	return symbolStatus(n[BestSector])
}

func (n Notifications) String() string {
	status := []string{}
	status = append(status, fmt.Sprintf("%s Notificación de %q", symbolStatus(n[BestLap]), BestLap))
	status = append(status, fmt.Sprintf("%s Notificación de %q", symbolStatus(n[TopSpeed]), TopSpeed))
	status = append(status, fmt.Sprintf("%s Notificación de %q", symbolStatus(n[BestSector]), BestSector))
	return strings.Join(status, "\n")
}

func symbolStatus(enabled bool) string {
	if enabled {
		return "🔔"
	}
	return "🔕"
}

func enabledInt(enabled bool) int {
	if enabled {
		return 1
	}
	return 0
}

func (n *Notifications) setRecordEnabledFlag(kind string, enabled bool) {
	(*n)[kind] = enabled
}

// Manager persists per-user record notification toggles and the
// preferred feed delay in sqlite.
type Manager struct {
	db *sql.DB
	mu sync.Mutex
}

func NewManager(dbName string) (*Manager, error) {
	if dbName == "" {
		dbName = DefaultDbName
	}
	db, err := sql.Open("sqlite3", dbName)
	if err != nil {
		return nil, errors.Wrapf(err, "opening database %s", dbName)
	}

	if _, err := db.Exec(buildCreateNotificationsTable()); err != nil {
		return nil, errors.Wrap(err, "initializing database")
	}

	return &Manager{
		db: db,
	}, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.Close()
}

func (m *Manager) ToggleNotificationForRecord(userID, chatID, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, delay, err := m.listUserSettings(userID)
	if err != nil {
		return err
	}

	n.setRecordEnabledFlag(kind, !n[kind])
	query, args := buildUpsertUserCommand(userID, chatID, n, delay)
	if _, err := m.db.Exec(query, args...); err != nil {
		return errors.Wrapf(err, "updating notifications for user %s", userID)
	}
	return nil
}

func (m *Manager) ListNotifications(userID string) (Notifications, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, _, err := m.listUserSettings(userID)
	return n, err
}

// ListUsersForRecord returns every user who enabled notifications for
// the given record kind.
func (m *Manager) ListUsersForRecord(kind string) ([]TelegramUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	query, read, err := buildSelectUsersForRecordCommand(kind)
	if err != nil {
		return nil, err
	}
	rows, err := m.db.Query(query)
	if err != nil {
		return nil, errors.Wrapf(err, "listing users for %s", kind)
	}
	return read(rows)
}

func (m *Manager) SetPreferredDelay(userID, chatID, delay string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, _, err := m.listUserSettings(userID)
	if err != nil {
		return err
	}
	query, args := buildUpsertUserCommand(userID, chatID, n, delay)
	if _, err := m.db.Exec(query, args...); err != nil {
		return errors.Wrapf(err, "updating delay for user %s", userID)
	}
	return nil
}

func (m *Manager) GetPreferredDelay(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, delay, err := m.listUserSettings(userID)
	return delay, err
}

func (m *Manager) listUserSettings(userID string) (Notifications, string, error) {
	query, read := buildSelectUserCommand()
	rows, err := m.db.Query(query, userID)
	if err != nil {
		return AllDisabled(), DefaultDelay, errors.Wrapf(err, "reading settings for user %s", userID)
	}
	return read(rows)
}
