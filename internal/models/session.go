package models

import "time"

// ClassSession is one persisted calendar instance of a class, uniquely
// identified by (class_id, session_date, session_time). Rows are created
// lazily on the first check-in for that date and time.
type ClassSession struct {
	ID          int64     `json:"id"`
	ClassID     int64     `json:"class_id"`
	SessionDate time.Time `json:"session_date"`
	SessionTime string    `json:"session_time"`
	CreatedAt   time.Time `json:"created_at"`
}
