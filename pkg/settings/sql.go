package settings

import (
	"database/sql"

	"github.com/pkg/errors"
)

func buildCreateNotificationsTable() string {
	return `CREATE TABLE IF NOT EXISTS notifications (
		userid TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		chatid TEXT NOT NULL,
		bestlap INTEGER,
		topspeed INTEGER,
		bestsector INTEGER,
		delay TEXT);`
}

func buildSelectUserCommand() (string, func(*sql.Rows) (Notifications, string, error)) {
	return `SELECT bestlap, topspeed, bestsector, delay FROM notifications WHERE userid = ?`, processSelectUserRows
}

func processSelectUserRows(rows *sql.Rows) (Notifications, string, error) {
	defer rows.Close()

	n := AllDisabled()
	delay := DefaultDelay
	// only can be one row
	if rows.Next() {
		var bestlap int
		var topspeed int
		var bestsector int
		var userDelay sql.NullString
		if err := rows.Scan(&bestlap, &topspeed, &bestsector, &userDelay); err != nil {
			return n, delay, err
		}
		n.setRecordEnabledFlag(BestLap, bestlap == 1)
		n.setRecordEnabledFlag(TopSpeed, topspeed == 1)
		n.setRecordEnabledFlag(BestSector, bestsector == 1)
		if userDelay.Valid && userDelay.String != "" {
			delay = userDelay.String
		}
		return n, delay, nil
	}
	return n, delay, rows.Err()
}

func buildSelectUsersForRecordCommand(kind string) (string, func(rows *sql.Rows) ([]TelegramUser, error), error) {
	var column string
	switch kind {
	case BestLap:
		column = "bestlap"
	case TopSpeed:
		column = "topspeed"
	case BestSector:
		column = "bestsector"
	default:
		return "", nil, errors.Errorf("unknown record kind %q", kind)
	}
	return `SELECT userid, name, chatid FROM notifications WHERE ` + column + ` = 1`, processSelectUsersRows, nil
}

func processSelectUsersRows(rows *sql.Rows) ([]TelegramUser, error) {
	defer rows.Close()

	users := make([]TelegramUser, 0)
	for rows.Next() {
		var id string
		var name string
		var chatid string
		if err := rows.Scan(&id, &name, &chatid); err != nil {
			return users, err
		}
		users = append(users, TelegramUser{
			ID:     id,
			Name:   name,
			ChatID: chatid,
		})
	}
	return users, rows.Err()
}

func buildUpsertUserCommand(userID, chatID string, n Notifications, delay string) (string, []any) {
	query := `INSERT OR REPLACE INTO notifications
		(userid, name, chatid, bestlap, topspeed, bestsector, delay)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	args := []any{
		userID,
		userID,
		chatID,
		enabledInt(n[BestLap]),
		enabledInt(n[TopSpeed]),
		enabledInt(n[BestSector]),
		delay,
	}
	return query, args
}
