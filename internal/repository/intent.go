package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/gmaragao/profAI/internal/models"
)

// IntentRepository persists classified intents.
type IntentRepository interface {
	Save(ctx context.Context, intent *models.ClassifiedIntent) error
	GetLastClassified(ctx context.Context) (*models.ClassifiedIntent, error)
	List(ctx context.Context) ([]*models.ClassifiedIntent, error)
}

type intentRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewIntentRepository creates a repository over the given database.
func NewIntentRepository(db *sqlx.DB, logger *zap.Logger) IntentRepository {
	return &intentRepository{db: db, logger: logger}
}

// Save inserts one classified intent, assigning its id and store timestamps.
// Re-classification of the same post is tolerated: post_id is deliberately not
// unique, so re-processing inserts a second row rather than failing.
func (r *intentRepository) Save(ctx context.Context, intent *models.ClassifiedIntent) error {
	if intent.ID == "" {
		intent.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	intent.CreatedAt = now
	intent.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO classified_intents (
			id, user_id, course_id, summarized_input, forum_id, post_id,
			intent, source, external_created_at, external_updated_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		intent.ID,
		intent.UserID,
		intent.CourseID,
		intent.SummarizedInput,
		intent.ForumID,
		intent.PostID,
		intent.Intent,
		intent.Source,
		intent.ExternalCreatedAt,
		intent.ExternalUpdatedAt,
		intent.CreatedAt,
		intent.UpdatedAt,
	)
	if err != nil {
		return err
	}

	r.logger.Debug("Classified intent saved",
		zap.String("id", intent.ID),
		zap.String("post_id", intent.PostID),
		zap.String("intent", intent.Intent))

	return nil
}

// GetLastClassified returns the stored intent with the newest external
// creation timestamp, or nil when the store is empty. The orchestrator's
// update watermark is derived from this record.
func (r *intentRepository) GetLastClassified(ctx context.Context) (*models.ClassifiedIntent, error) {
	var intent models.ClassifiedIntent
	query := r.db.Rebind(`
		SELECT id, user_id, course_id, summarized_input, forum_id, post_id,
		       intent, source, external_created_at, external_updated_at,
		       created_at, updated_at
		FROM classified_intents
		ORDER BY external_created_at DESC
		LIMIT 1`)

	err := r.db.GetContext(ctx, &intent, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &intent, nil
}

// List returns all stored intents, newest first.
func (r *intentRepository) List(ctx context.Context) ([]*models.ClassifiedIntent, error) {
	var intents []*models.ClassifiedIntent
	query := r.db.Rebind(`
		SELECT id, user_id, course_id, summarized_input, forum_id, post_id,
		       intent, source, external_created_at, external_updated_at,
		       created_at, updated_at
		FROM classified_intents
		ORDER BY external_created_at DESC`)

	if err := r.db.SelectContext(ctx, &intents, query); err != nil {
		return nil, err
	}

	return intents, nil
}
