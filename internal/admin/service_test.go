package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

var errQuery = errors.New("query failed")

func TestMembersAndSetRole(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)

	mock.ExpectQuery(`SELECT id, email, username, full_name, role, created_at`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "full_name", "role", "created_at"}).
			AddRow("user-1", "a@club.test", "anna", "Anna", "admin", time.Now()).
			AddRow("user-2", "b@club.test", "ben", "Ben", "member", time.Now()))
	members, err := svc.Members(context.Background())
	if err != nil || len(members) != 2 || members[0].Role != "admin" {
		t.Fatalf("members: %v", err)
	}

	mock.ExpectExec(`UPDATE users SET role`).WithArgs("user-2", "admin").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	if err := svc.SetRole(context.Background(), "user-2", "admin"); err != nil {
		t.Fatalf("set role: %v", err)
	}

	mock.ExpectExec(`UPDATE users SET role`).WithArgs("ghost", "member").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	if err := svc.SetRole(context.Background(), "ghost", "member"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found")
	}

	if err := svc.SetRole(context.Background(), "user-2", "owner"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected invalid role")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStats(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(pgxmock.NewRows([]string{"members", "events", "routes", "rides", "photos"}).AddRow(40, 6, 12, 80, 150))

	stats, err := NewService(mock).Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Members != 40 || stats.RideSession != 80 || stats.Photos != 150 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestServiceErrors(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)
	mock.ExpectQuery(`FROM users ORDER BY`).WillReturnError(errQuery)
	if _, err := svc.Members(context.Background()); err == nil {
		t.Fatalf("expected members error")
	}
	mock.ExpectExec(`UPDATE users SET role`).WillReturnError(errQuery)
	if err := svc.SetRole(context.Background(), "user-1", "member"); !errors.Is(err, errQuery) {
		t.Fatalf("expected set role error")
	}
	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errQuery)
	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatalf("expected stats error")
	}
}
