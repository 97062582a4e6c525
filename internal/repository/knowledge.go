package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/gmaragao/profAI/internal/models"
)

// KnowledgeRepository stores and retrieves the course material and metadata
// entries backing the professor agent's lookup tools. Retrieval is a plain
// keyword match; it stands in for the course's real search backend.
type KnowledgeRepository interface {
	Save(ctx context.Context, entry *models.KnowledgeEntry) error
	SearchMaterial(ctx context.Context, query string) ([]models.KnowledgeEntry, error)
	SearchMetadata(ctx context.Context, query string) ([]models.KnowledgeEntry, error)
}

type knowledgeRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewKnowledgeRepository creates a repository over the given database.
func NewKnowledgeRepository(db *sqlx.DB, logger *zap.Logger) KnowledgeRepository {
	return &knowledgeRepository{db: db, logger: logger}
}

// Save inserts one knowledge entry.
func (r *knowledgeRepository) Save(ctx context.Context, entry *models.KnowledgeEntry) error {
	entry.CreatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		INSERT INTO knowledge_entries (course_id, kind, title, content, created_at)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		entry.CourseID, entry.Kind, entry.Title, entry.Content, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save knowledge entry: %w", err)
	}

	return nil
}

// SearchMaterial looks up course subject content matching the query.
func (r *knowledgeRepository) SearchMaterial(ctx context.Context, query string) ([]models.KnowledgeEntry, error) {
	return r.search(ctx, "material", query)
}

// SearchMetadata looks up course structure and scheduling entries matching the
// query.
func (r *knowledgeRepository) SearchMetadata(ctx context.Context, query string) ([]models.KnowledgeEntry, error) {
	return r.search(ctx, "metadata", query)
}

func (r *knowledgeRepository) search(ctx context.Context, kind, query string) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	stmt := r.db.Rebind(`
		SELECT id, course_id, kind, title, content, created_at
		FROM knowledge_entries
		WHERE kind = ? AND (title LIKE ? OR content LIKE ?)
		ORDER BY created_at DESC
		LIMIT 5`)

	pattern := "%" + query + "%"
	if err := r.db.SelectContext(ctx, &entries, stmt, kind, pattern, pattern); err != nil {
		return nil, fmt.Errorf("failed to search knowledge entries: %w", err)
	}

	r.logger.Debug("Knowledge search",
		zap.String("kind", kind),
		zap.String("query", query),
		zap.Int("hits", len(entries)))

	return entries, nil
}
