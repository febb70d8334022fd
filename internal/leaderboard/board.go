// Package leaderboard serves ranked standings, reading through a Redis
// projection when one is configured and from the store otherwise.
package leaderboard

import (
	"fmt"
	"strings"
	"time"
)

// Board selects which standings to rank.
type Board string

const (
	BoardAllTime Board = "all-time"
	BoardDaily   Board = "daily"
	BoardWeekly  Board = "weekly"
	BoardTopic   Board = "topic"
)

// DefaultLimit is the size of the visible board.
const DefaultLimit = 10

// ParseBoard parses a board name. The empty string is BoardAllTime.
func ParseBoard(s string) (Board, error) {
	switch b := Board(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BoardAllTime, nil
	case BoardAllTime, BoardDaily, BoardWeekly, BoardTopic:
		return b, nil
	}
	return "", fmt.Errorf("unknown board %q", s)
}

// Query identifies one board. Topic is required for BoardTopic and
// ignored otherwise.
type Query struct {
	Board Board
	Topic string
	Limit int
}

func (q Query) normalize() (Query, error) {
	if q.Board == "" {
		q.Board = BoardAllTime
	}
	if _, err := ParseBoard(string(q.Board)); err != nil {
		return q, err
	}
	if q.Board == BoardTopic && q.Topic == "" {
		return q, fmt.Errorf("topic board needs a topic")
	}
	if q.Board != BoardTopic {
		q.Topic = ""
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	return q, nil
}

// Entry is one ranked row.
type Entry struct {
	Rank               int    `json:"rank"`
	UID                string `json:"uid"`
	Username           string `json:"username"`
	Score              int    `json:"score"`
	CompletedExercises int    `json:"completed_exercises"`
}

// View is the visible board plus the viewer's own row when it falls
// outside it.
type View struct {
	Board   Board   `json:"board"`
	Topic   string  `json:"topic,omitempty"`
	Entries []Entry `json:"entries"`
	Self    *Entry  `json:"self,omitempty"`
}

// Window boundaries are UTC. Weeks start on Monday.
func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func weekStart(t time.Time) time.Time {
	d := dayStart(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// since returns the lower bound for time-windowed boards.
func (q Query) since(now time.Time) time.Time {
	switch q.Board {
	case BoardDaily:
		return dayStart(now)
	case BoardWeekly:
		return weekStart(now)
	}
	return time.Time{}
}

// key names the Redis projection for q at now.
func (q Query) key(now time.Time) string {
	switch q.Board {
	case BoardDaily:
		return keyPrefix + "daily:" + dayStart(now).Format("2006-01-02")
	case BoardWeekly:
		y, w := weekStart(now).ISOWeek()
		return fmt.Sprintf("%sweekly:%d-W%02d", keyPrefix, y, w)
	case BoardTopic:
		return keyPrefix + "topic:" + q.Topic
	}
	return keyPrefix + "all-time"
}

// ttl bounds how long a windowed projection outlives its window.
func (q Query) ttl() time.Duration {
	switch q.Board {
	case BoardDaily:
		return 48 * time.Hour
	case BoardWeekly:
		return 8 * 24 * time.Hour
	}
	return 0
}
