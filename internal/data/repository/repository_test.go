package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cinema-ticketing/internal/data/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"go.uber.org/zap"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

// anyArgs matches n positional arguments of any value.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestMovieFilterClause(t *testing.T) {
	minRating := 7.5
	tests := []struct {
		name     string
		filter   MovieFilter
		wantSQL  string
		wantArgs []any
		wantNext int
	}{
		{"empty", MovieFilter{}, "", nil, 1},
		{"genre", MovieFilter{Genre: "sci"}, " AND genre ILIKE $1", []any{"%sci%"}, 2},
		{"both", MovieFilter{Genre: "drama", MinRating: &minRating},
			" AND genre ILIKE $1 AND rating >= $2", []any{"%drama%", 7.5}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			args, next := tt.filter.filterClause(&b, nil)
			if b.String() != tt.wantSQL {
				t.Errorf("sql = %q, want %q", b.String(), tt.wantSQL)
			}
			if next != tt.wantNext {
				t.Errorf("next = %d, want %d", next, tt.wantNext)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("arg %d = %v, want %v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestMovieCountAll_WithFilter(t *testing.T) {
	mock := newMock(t)
	repo := NewMovieRepository(mock, zap.NewNop())

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM movies`).
		WithArgs("%action%").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(3)))

	total, err := repo.CountAll(context.Background(), MovieFilter{Genre: "action"})
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

func TestHallFindByID(t *testing.T) {
	mock := newMock(t)
	repo := NewHallRepository(mock, zap.NewNop())
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("FROM halls").
		WithArgs(id).
		WillReturnRows(mock.NewRows([]string{"id", "name", "capacity", "created_at", "updated_at"}).
			AddRow(id, "Hall 1", 100, now, now))

	hall, err := repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if hall == nil || hall.Capacity != 100 || hall.Name != "Hall 1" {
		t.Errorf("unexpected hall %+v", hall)
	}
}

func TestHallFindByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewHallRepository(mock, zap.NewNop())

	mock.ExpectQuery("FROM halls").WithArgs(anyArgs(1)...).WillReturnError(pgx.ErrNoRows)

	hall, err := repo.FindByID(context.Background(), uuid.New())
	if err != nil || hall != nil {
		t.Fatalf("got %v, %v; want nil, nil", hall, err)
	}
}

func TestHallCreate_Duplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewHallRepository(mock, zap.NewNop())

	mock.ExpectExec("INSERT INTO halls").
		WithArgs(anyArgs(5)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "halls_name_key"})

	err := repo.Create(context.Background(), &entity.Hall{Name: "Hall 1", Capacity: 10})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
}

func TestReviewCreate_Duplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock, zap.NewNop())

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(anyArgs(6)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_user_movie_key"})

	err := repo.Create(context.Background(), &entity.Review{UserID: uuid.New(), MovieID: uuid.New(), Rating: 8})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
}

func TestAuthTokenFindValid_MalformedToken(t *testing.T) {
	mock := newMock(t)
	repo := NewAuthTokenRepository(mock, zap.NewNop())

	token, err := repo.FindValid(context.Background(), "not-a-uuid")
	if err != nil || token != nil {
		t.Fatalf("got %v, %v; want nil, nil", token, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAuthTokenDeleteExpired(t *testing.T) {
	mock := newMock(t)
	repo := NewAuthTokenRepository(mock, zap.NewNop())

	mock.ExpectExec("DELETE FROM auth_tokens").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := repo.DeleteExpired(context.Background())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 4 {
		t.Errorf("deleted = %d, want 4", n)
	}
}

func TestClassifyPgError(t *testing.T) {
	plain := errors.New("plain")
	if got := classifyPgError(plain); got != plain {
		t.Errorf("non-pg error changed: %v", got)
	}

	fk := classifyPgError(&pgconn.PgError{Code: "23503", ConstraintName: "tickets_user_id_fkey"})
	if !errors.Is(fk, ErrMissingReference) {
		t.Errorf("23503 not classified: %v", fk)
	}
	if ConstraintName(fk) != "tickets_user_id_fkey" {
		t.Errorf("constraint = %q", ConstraintName(fk))
	}

	other := &pgconn.PgError{Code: "40001"}
	if got := classifyPgError(other); errors.Is(got, ErrDuplicate) || errors.Is(got, ErrMissingReference) {
		t.Errorf("serialization failure misclassified: %v", got)
	}
}
