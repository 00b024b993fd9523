// Package admin backs the club admin panel.
package admin

import (
	"context"
	"errors"
	"time"

	"backend-velohub/internal/auth"
	"backend-velohub/internal/db"
)

var (
	ErrNotFound    = errors.New("member not found")
	ErrInvalidRole = errors.New("role must be member or admin")
)

type Member struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Stats struct {
	Members     int `json:"members"`
	Events      int `json:"events"`
	Routes      int `json:"routes"`
	RideSession int `json:"ride_sessions"`
	Photos      int `json:"photos"`
}

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Members(ctx context.Context) ([]Member, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, email, username, full_name, role, created_at
		FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Email, &m.Username, &m.FullName, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Service) SetRole(ctx context.Context, userID, role string) error {
	if role != auth.RoleMember && role != auth.RoleAdmin {
		return ErrInvalidRole
	}
	tag, err := s.db.Exec(ctx, `UPDATE users SET role=$2, updated_at=now() WHERE id=$1`, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM routes),
			(SELECT COUNT(*) FROM ride_sessions),
			(SELECT COUNT(*) FROM gallery_photos)
	`).Scan(&st.Members, &st.Events, &st.Routes, &st.RideSession, &st.Photos)
	return st, err
}
