// Package seed loads demo users, halls, movies and sessions.
package seed

import (
	"context"
	"fmt"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type demoUser struct {
	username, email, password string
	role                      entity.UserRole
}

var users = []demoUser{
	{"admin", "admin@cinema.com", "admin123", entity.RoleAdmin},
	{"cashier", "cashier@cinema.com", "cashier123", entity.RoleCashier},
	{"viewer1", "viewer1@cinema.com", "viewer123", entity.RoleViewer},
	{"viewer2", "viewer2@cinema.com", "viewer123", entity.RoleViewer},
}

var halls = []struct {
	name     string
	capacity int
}{
	{"Hall 1", 100},
	{"Hall 2", 150},
	{"Hall 3", 80},
	{"IMAX Hall", 200},
}

var movies = []entity.Movie{
	{Title: "Avengers: Endgame", Genre: "action", Duration: 181, Rating: 8.4, Description: "The epic finale of the Avengers saga"},
	{Title: "Joker", Genre: "drama", Duration: 122, Rating: 8.5, Description: "The origin story of the most famous villain"},
	{Title: "Spider-Man: No Way Home", Genre: "action", Duration: 148, Rating: 8.2, Description: "Spider-Man and the multiverse"},
	{Title: "Dune", Genre: "sci-fi", Duration: 155, Rating: 8.0, Description: "Denis Villeneuve's science fiction epic"},
	{Title: "No Time to Die", Genre: "action", Duration: 163, Rating: 7.3, Description: "Daniel Craig's last James Bond film"},
	{Title: "Parasite", Genre: "thriller", Duration: 132, Rating: 8.6, Description: "The Korean thriller that won the Oscar"},
	{Title: "The Shape of Water", Genre: "fantasy", Duration: 123, Rating: 7.3, Description: "Guillermo del Toro's romantic fantasy"},
	{Title: "Interstellar", Genre: "sci-fi", Duration: 169, Rating: 8.6, Description: "Christopher Nolan's space odyssey"},
	{Title: "Once Upon a Time in Hollywood", Genre: "comedy", Duration: 161, Rating: 7.6, Description: "Quentin Tarantino's comedy drama"},
	{Title: "Green Book", Genre: "drama", Duration: 130, Rating: 8.2, Description: "A drama about friendship and prejudice"},
}

// sessions index into movies and halls
var sessions = []struct {
	movie, hall int
	after       time.Duration
	price       float64
}{
	{0, 0, 2 * time.Hour, 350},
	{0, 0, 6 * time.Hour, 400},
	{1, 1, 3 * time.Hour, 300},
	{2, 3, 4 * time.Hour, 500},
	{3, 2, 5 * time.Hour, 450},
}

// Run inserts whatever demo data is missing. Sessions are only created on an
// empty schedule, so running it twice does not double them.
func Run(ctx context.Context, repo *repository.Repository, bcryptCost int, log *zap.Logger) error {
	log = log.With(zap.String("component", "seed"))

	if err := seedUsers(ctx, repo, bcryptCost, log); err != nil {
		return err
	}

	hallIDs, err := seedHalls(ctx, repo, log)
	if err != nil {
		return err
	}

	movieIDs, err := seedMovies(ctx, repo, log)
	if err != nil {
		return err
	}

	if err := seedSessions(ctx, repo, movieIDs, hallIDs, log); err != nil {
		return err
	}

	log.Info("Database seeded")
	return nil
}

func seedUsers(ctx context.Context, repo *repository.Repository, cost int, log *zap.Logger) error {
	for _, u := range users {
		existing, err := repo.User.FindByUsername(ctx, u.username)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
		if existing != nil {
			continue
		}

		hash, err := utils.HashPassword(u.password, cost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.username, err)
		}

		now := time.Now()
		user := &entity.User{
			Base:         entity.NewBase(now),
			Username:     u.username,
			Email:        u.email,
			PasswordHash: hash,
			Role:         u.role,
		}
		if err := repo.User.Create(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
		log.Info("Created user", zap.String("username", u.username), zap.String("role", string(u.role)))
	}
	return nil
}

func seedHalls(ctx context.Context, repo *repository.Repository, log *zap.Logger) ([]uuid.UUID, error) {
	existing, err := repo.Hall.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed halls: %w", err)
	}
	byName := make(map[string]uuid.UUID, len(existing))
	for _, h := range existing {
		byName[h.Name] = h.ID
	}

	ids := make([]uuid.UUID, len(halls))
	for i, h := range halls {
		if id, ok := byName[h.name]; ok {
			ids[i] = id
			continue
		}

		now := time.Now()
		hall := &entity.Hall{
			BaseNoDelete: entity.NewBaseNoDelete(now),
			Name:         h.name,
			Capacity:     h.capacity,
		}
		if err := repo.Hall.Create(ctx, hall); err != nil {
			return nil, fmt.Errorf("seed hall %s: %w", h.name, err)
		}
		ids[i] = hall.ID
		log.Info("Created hall", zap.String("name", h.name), zap.Int("capacity", h.capacity))
	}
	return ids, nil
}

func seedMovies(ctx context.Context, repo *repository.Repository, log *zap.Logger) ([]uuid.UUID, error) {
	existing, err := repo.Movie.FindAll(ctx, 0, utils.MaxPerPage, repository.MovieFilter{})
	if err != nil {
		return nil, fmt.Errorf("seed movies: %w", err)
	}
	byTitle := make(map[string]uuid.UUID, len(existing))
	for _, m := range existing {
		byTitle[m.Title] = m.ID
	}

	ids := make([]uuid.UUID, len(movies))
	for i, m := range movies {
		if id, ok := byTitle[m.Title]; ok {
			ids[i] = id
			continue
		}

		now := time.Now()
		movie := m
		movie.Base = entity.NewBase(now)
		if err := repo.Movie.Create(ctx, &movie); err != nil {
			return nil, fmt.Errorf("seed movie %s: %w", m.Title, err)
		}
		ids[i] = movie.ID
		log.Info("Created movie", zap.String("title", m.Title))
	}
	return ids, nil
}

func seedSessions(ctx context.Context, repo *repository.Repository, movieIDs, hallIDs []uuid.UUID, log *zap.Logger) error {
	count, err := repo.Session.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("seed sessions: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, s := range sessions {
		session := &entity.Session{
			BaseNoDelete: entity.NewBaseNoDelete(now),
			MovieID:      movieIDs[s.movie],
			HallID:       hallIDs[s.hall],
			StartTime:    now.Add(s.after).Truncate(time.Minute),
			Price:        s.price,
		}
		if err := repo.Session.Create(ctx, session); err != nil {
			return fmt.Errorf("seed session: %w", err)
		}
		log.Info("Created session",
			zap.String("session_id", session.ID.String()),
			zap.Time("start_time", session.StartTime))
	}
	return nil
}
