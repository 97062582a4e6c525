package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/gmaragao/profAI/internal/models"
)

// ActionRepository persists action decisions and their execution outcomes.
type ActionRepository interface {
	Save(ctx context.Context, action *models.Action) error
	UpdateOutcome(ctx context.Context, id string, wasActionTaken bool, actionSuccessful *bool, updatedAt time.Time) error
	GetByDateRange(ctx context.Context, from, to time.Time) ([]*models.Action, error)
}

type actionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewActionRepository creates a repository over the given database.
func NewActionRepository(db *sqlx.DB, logger *zap.Logger) ActionRepository {
	return &actionRepository{db: db, logger: logger}
}

// actionRow is the flat database shape of an Action; metadata is stored as a
// JSON text column.
type actionRow struct {
	ID               string     `db:"id"`
	ActionToBeTaken  string     `db:"action_to_be_taken"`
	Reason           string     `db:"reason"`
	Priority         float64    `db:"priority"`
	Confidence       float64    `db:"confidence"`
	Content          string     `db:"content"`
	Metadata         string     `db:"metadata"`
	MemorySummary    string     `db:"memory_summary"`
	WasActionTaken   bool       `db:"was_action_taken"`
	ActionSuccessful *bool      `db:"action_successful"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at"`
}

func (row actionRow) toModel() (*models.Action, error) {
	action := &models.Action{
		ID:               row.ID,
		ActionToBeTaken:  row.ActionToBeTaken,
		Reason:           row.Reason,
		Priority:         row.Priority,
		Confidence:       row.Confidence,
		Content:          row.Content,
		MemorySummary:    row.MemorySummary,
		WasActionTaken:   row.WasActionTaken,
		ActionSuccessful: row.ActionSuccessful,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}

	if err := json.Unmarshal([]byte(row.Metadata), &action.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode action metadata: %w", err)
	}

	return action, nil
}

// Save inserts one action decision. New actions always start not-taken with an
// unknown outcome; the caller's Action is updated in place with the assigned
// id and timestamps.
func (r *actionRepository) Save(ctx context.Context, action *models.Action) error {
	if action.ID == "" {
		action.ID = uuid.New().String()
	}
	action.WasActionTaken = false
	action.ActionSuccessful = nil
	action.CreatedAt = time.Now().UTC()
	action.UpdatedAt = nil

	metadata, err := json.Marshal(action.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode action metadata: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO actions (
			id, action_to_be_taken, reason, priority, confidence, content,
			metadata, memory_summary, was_action_taken, action_successful,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = r.db.ExecContext(ctx, query,
		action.ID,
		action.ActionToBeTaken,
		action.Reason,
		action.Priority,
		action.Confidence,
		action.Content,
		string(metadata),
		action.MemorySummary,
		action.WasActionTaken,
		action.ActionSuccessful,
		action.CreatedAt,
		action.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save action: %w", err)
	}

	r.logger.Debug("Action saved",
		zap.String("id", action.ID),
		zap.String("action", action.ActionToBeTaken))

	return nil
}

// UpdateOutcome records the result of one execution attempt.
func (r *actionRepository) UpdateOutcome(ctx context.Context, id string, wasActionTaken bool, actionSuccessful *bool, updatedAt time.Time) error {
	query := r.db.Rebind(`
		UPDATE actions
		SET was_action_taken = ?, action_successful = ?, updated_at = ?
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, wasActionTaken, actionSuccessful, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update action outcome: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("action %s not found", id)
	}

	return nil
}

// GetByDateRange returns the actions created between from and to, inclusive.
func (r *actionRepository) GetByDateRange(ctx context.Context, from, to time.Time) ([]*models.Action, error) {
	var rows []actionRow
	query := r.db.Rebind(`
		SELECT id, action_to_be_taken, reason, priority, confidence, content,
		       metadata, memory_summary, was_action_taken, action_successful,
		       created_at, updated_at
		FROM actions
		WHERE created_at >= ? AND created_at <= ?
		ORDER BY created_at ASC`)

	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to query actions by date range: %w", err)
	}

	actions := make([]*models.Action, 0, len(rows))
	for _, row := range rows {
		action, err := row.toModel()
		if err != nil {
			r.logger.Error("Skipping malformed action row", zap.String("id", row.ID), zap.Error(err))
			continue
		}
		actions = append(actions, action)
	}

	return actions, nil
}
