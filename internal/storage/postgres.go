package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelter-training/maps-trainer/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository.
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Lessons ---

// SeedLessons inserts the catalog, skipping lessons whose id already exists.
// ON CONFLICT DO NOTHING makes concurrent first loads safe: at most one
// insert per lesson id ever succeeds. Returns the number of rows inserted.
func (r *PostgresRepository) SeedLessons(ctx context.Context, lessons []*models.Lesson) (int, error) {
	inserted := 0

	for _, lesson := range lessons {
		contentJSON, err := json.Marshal(lesson.Content)
		if err != nil {
			return inserted, fmt.Errorf("failed to marshal lesson content: %w", err)
		}

		query := `
			INSERT INTO lessons (id, title, description, difficulty, category, content, points, display_order, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`

		result, err := r.pool.Exec(ctx, query,
			lesson.ID,
			lesson.Title,
			lesson.Description,
			lesson.Difficulty,
			lesson.Category,
			contentJSON,
			lesson.Points,
			lesson.Order,
			lesson.IsActive,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed lesson %s: %w", lesson.ID, err)
		}

		inserted += int(result.RowsAffected())
	}

	return inserted, nil
}

// ListActiveLessons returns active lessons ordered by display order.
func (r *PostgresRepository) ListActiveLessons(ctx context.Context) ([]*models.Lesson, error) {
	query := `
		SELECT id, title, description, difficulty, category, content, points, display_order, is_active
		FROM lessons
		WHERE is_active = true
		ORDER BY display_order ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*models.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lessons: %w", err)
	}

	return lessons, nil
}

// GetLessonByID retrieves a lesson by its exact id.
func (r *PostgresRepository) GetLessonByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := `
		SELECT id, title, description, difficulty, category, content, points, display_order, is_active
		FROM lessons
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	lesson, err := scanLesson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return lesson, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (*models.Lesson, error) {
	var lesson models.Lesson
	var contentJSON []byte

	err := row.Scan(
		&lesson.ID,
		&lesson.Title,
		&lesson.Description,
		&lesson.Difficulty,
		&lesson.Category,
		&contentJSON,
		&lesson.Points,
		&lesson.Order,
		&lesson.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan lesson: %w", err)
	}

	if err := json.Unmarshal(contentJSON, &lesson.Content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lesson content: %w", err)
	}

	return &lesson, nil
}

// --- Users ---

// CreateUser inserts a new user account.
func (r *PostgresRepository) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, "email", email)
}

// GetUserByID retrieves a user by id.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, "id", id)
}

func (r *PostgresRepository) getUser(ctx context.Context, field, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE %s = $1
	`, field)

	var u models.User
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// --- Volunteers ---

// CreateVolunteer inserts a new volunteer record.
func (r *PostgresRepository) CreateVolunteer(ctx context.Context, v *models.Volunteer) error {
	query := `
		INSERT INTO volunteers (id, user_id, name, email, join_date, total_score, completed_lessons, badges)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		v.ID,
		v.UserID,
		v.Name,
		v.Email,
		v.JoinDate,
		v.TotalScore,
		v.CompletedLessons,
		v.Badges,
	)
	if err != nil {
		return fmt.Errorf("failed to create volunteer: %w", err)
	}

	return nil
}

// GetVolunteerByUserID retrieves the volunteer record for a user.
func (r *PostgresRepository) GetVolunteerByUserID(ctx context.Context, userID string) (*models.Volunteer, error) {
	query := `
		SELECT id, user_id, name, email, join_date, total_score, completed_lessons, badges
		FROM volunteers
		WHERE user_id = $1
	`

	var v models.Volunteer
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&v.ID,
		&v.UserID,
		&v.Name,
		&v.Email,
		&v.JoinDate,
		&v.TotalScore,
		&v.CompletedLessons,
		&v.Badges,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get volunteer: %w", err)
	}

	return &v, nil
}

// TopVolunteers returns volunteers ranked by total score descending. Ties
// break on join date then id so the order is stable across calls.
func (r *PostgresRepository) TopVolunteers(ctx context.Context, limit int) ([]*models.Volunteer, error) {
	query := `
		SELECT id, user_id, name, email, join_date, total_score, completed_lessons, badges
		FROM volunteers
		ORDER BY total_score DESC, join_date ASC, id ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top volunteers: %w", err)
	}
	defer rows.Close()

	var volunteers []*models.Volunteer
	for rows.Next() {
		var v models.Volunteer
		err := rows.Scan(
			&v.ID,
			&v.UserID,
			&v.Name,
			&v.Email,
			&v.JoinDate,
			&v.TotalScore,
			&v.CompletedLessons,
			&v.Badges,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan volunteer: %w", err)
		}
		volunteers = append(volunteers, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating volunteers: %w", err)
	}

	return volunteers, nil
}

// --- Progress ---

// SaveCompletion appends a progress entry and updates the volunteer summary
// in one transaction. The volunteer row is re-read with FOR UPDATE and apply
// runs against that locked copy, so a concurrent completion for the same
// volunteer waits for this one to commit and then sees its effects.
func (r *PostgresRepository) SaveCompletion(ctx context.Context, entry *models.ProgressEntry, volunteerID string, apply func(v *models.Volunteer)) (*models.Volunteer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lockVolunteer := `
		SELECT id, user_id, name, email, join_date, total_score, completed_lessons, badges
		FROM volunteers
		WHERE id = $1
		FOR UPDATE
	`
	var v models.Volunteer
	err = tx.QueryRow(ctx, lockVolunteer, volunteerID).Scan(
		&v.ID,
		&v.UserID,
		&v.Name,
		&v.Email,
		&v.JoinDate,
		&v.TotalScore,
		&v.CompletedLessons,
		&v.Badges,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("volunteer not found: %s", volunteerID)
		}
		return nil, fmt.Errorf("failed to lock volunteer: %w", err)
	}

	apply(&v)

	insertEntry := `
		INSERT INTO progress_entries (id, volunteer_id, lesson_id, score, time_spent_seconds, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(ctx, insertEntry,
		entry.ID,
		entry.VolunteerID,
		entry.LessonID,
		entry.Score,
		entry.TimeSpent,
		entry.CompletedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to insert progress entry: %w", err)
	}

	updateVolunteer := `
		UPDATE volunteers
		SET total_score = $2, completed_lessons = $3, badges = $4
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, updateVolunteer, v.ID, v.TotalScore, v.CompletedLessons, v.Badges); err != nil {
		return nil, fmt.Errorf("failed to update volunteer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}

	return &v, nil
}

// ListProgress returns the completion history for a volunteer, newest first.
func (r *PostgresRepository) ListProgress(ctx context.Context, volunteerID string) ([]*models.ProgressEntry, error) {
	query := `
		SELECT id, volunteer_id, lesson_id, score, time_spent_seconds, completed_at
		FROM progress_entries
		WHERE volunteer_id = $1
		ORDER BY completed_at DESC
	`

	rows, err := r.pool.Query(ctx, query, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	var entries []*models.ProgressEntry
	for rows.Next() {
		var e models.ProgressEntry
		err := rows.Scan(
			&e.ID,
			&e.VolunteerID,
			&e.LessonID,
			&e.Score,
			&e.TimeSpent,
			&e.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress entries: %w", err)
	}

	return entries, nil
}
