package models

import "time"

type Member struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     *string   `json:"email"`
	QRToken   string    `json:"qr_token"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
