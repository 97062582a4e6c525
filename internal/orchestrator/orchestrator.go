package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/gmaragao/profAI/internal/models"
	"github.com/gmaragao/profAI/internal/moodle"
)

// watermarkPad is added to the newest stored external timestamp before asking
// the LMS for updates. It guards against re-fetching the boundary post when
// the update feed has second-level granularity; it is a heuristic, not an
// exactly-once guarantee.
const watermarkPad = time.Minute

// bootstrapWindow is how far back the first run looks when the store is empty.
const bootstrapWindow = 24 * time.Hour

// LMSClient is the slice of the Moodle client the pipeline consumes.
type LMSClient interface {
	GetUpdatesSince(ctx context.Context, courseID int64, sinceEpoch int64) ([]moodle.UpdateDetail, error)
	GetForumPosts(ctx context.Context, discussionID int64) (*moodle.ForumPostsResponse, error)
	CreateAnswerOnPost(ctx context.Context, postID int64, message, subject string) (*moodle.CreatePostResult, error)
}

// IntentClassifier turns one raw update into a classified intent.
type IntentClassifier interface {
	Classify(ctx context.Context, input models.ClassifierInput) (*models.ClassifiedIntent, error)
}

// ActionAgent decides an action for one classified intent. It returns the raw
// JSON text of its decision; parsing happens here in the orchestrator.
type ActionAgent interface {
	Invoke(ctx context.Context, intent *models.ClassifiedIntent) (string, error)
}

// IntentStore is the persistence surface for classified intents.
type IntentStore interface {
	Save(ctx context.Context, intent *models.ClassifiedIntent) error
	GetLastClassified(ctx context.Context) (*models.ClassifiedIntent, error)
}

// ActionStore is the persistence surface for action records.
type ActionStore interface {
	Save(ctx context.Context, action *models.Action) error
	UpdateOutcome(ctx context.Context, id string, wasActionTaken bool, actionSuccessful *bool, updatedAt time.Time) error
}

// Notifier is an optional side channel informing the instructor about executed
// and failed actions.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Config for the orchestrator.
type Config struct {
	CourseID  int64
	PostDelay time.Duration // courtesy pause before each LMS write
	ReplyOnly bool          // reserved; replies are the only executed action today
}

// Orchestrator is the pipeline core: it discovers new LMS updates, classifies
// them, decides and executes actions, and records outcomes. It keeps no state
// of its own; the watermark lives in the intent store and outcome flags on the
// action records, which makes the pipeline crash-resumable.
type Orchestrator struct {
	lms        LMSClient
	classifier IntentClassifier
	agent      ActionAgent
	intents    IntentStore
	actions    ActionStore
	notifier   Notifier
	logger     *zap.Logger
	cfg        Config
}

// New creates an orchestrator. notifier may be nil.
func New(
	lms LMSClient,
	classifier IntentClassifier,
	agent ActionAgent,
	intents IntentStore,
	actions ActionStore,
	notifier Notifier,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		lms:        lms,
		classifier: classifier,
		agent:      agent,
		intents:    intents,
		actions:    actions,
		notifier:   notifier,
		logger:     logger,
		cfg:        cfg,
	}
}

// sinceTimestamp derives the update watermark from the newest stored intent.
func (o *Orchestrator) sinceTimestamp(ctx context.Context) (int64, error) {
	last, err := o.intents.GetLastClassified(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read last classified intent: %w", err)
	}

	if last != nil {
		since := last.ExternalCreatedAt.Add(watermarkPad)
		o.logger.Info("Last classified intent found",
			zap.Time("external_created_at", last.ExternalCreatedAt),
			zap.Time("since", since))
		return since.Unix(), nil
	}

	since := time.Now().Add(-bootstrapWindow)
	o.logger.Info("No classified intents stored, using bootstrap window",
		zap.Time("since", since))
	return since.Unix(), nil
}

// GetUpdatesAndClassify discovers updates since the watermark and classifies
// each one, in LMS order, one at a time.
//
// The returned slice reflects what was classified, not what was durably saved:
// a persistence failure for one item is logged and the item stays in the
// result. A classifier failure aborts the remaining batch; the next run
// retries from the unchanged watermark.
func (o *Orchestrator) GetUpdatesAndClassify(ctx context.Context) ([]*models.ClassifiedIntent, error) {
	if o.cfg.CourseID == 0 {
		return nil, fmt.Errorf("course id is not configured")
	}

	since, err := o.sinceTimestamp(ctx)
	if err != nil {
		return nil, err
	}

	updates, err := o.lms.GetUpdatesSince(ctx, o.cfg.CourseID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updates: %w", err)
	}

	o.logger.Info("New updates retrieved", zap.Int("count", len(updates)))

	classified := make([]*models.ClassifiedIntent, 0, len(updates))
	for _, update := range updates {
		input := models.ClassifierInput{
			UserID:    update.AuthorID,
			CourseID:  o.cfg.CourseID,
			InputText: update.Content,
			ForumID:   update.ModuleID,
			PostID:    update.ID,
			Source:    update.TypeName,
			Subject:   update.Subject,
			Message:   update.Content,
			CreatedAt: update.CreatedAt,
			UpdatedAt: update.UpdatedAt,
		}

		intent, err := o.classifier.Classify(ctx, input)
		if err != nil {
			return classified, fmt.Errorf("failed to classify update %d: %w", update.ID, err)
		}

		classified = append(classified, intent)

		if err := o.intents.Save(ctx, intent); err != nil {
			o.logger.Error("Error saving classified intent",
				zap.String("post_id", intent.PostID),
				zap.Error(err))
		}
	}

	return classified, nil
}

// ClassifyDiscussion classifies and persists every post of one discussion.
// Same partial-failure semantics as GetUpdatesAndClassify.
func (o *Orchestrator) ClassifyDiscussion(ctx context.Context, discussionID int64) ([]*models.ClassifiedIntent, error) {
	discussion, err := o.lms.GetForumPosts(ctx, discussionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discussion %d: %w", discussionID, err)
	}

	classified := make([]*models.ClassifiedIntent, 0, len(discussion.Posts))
	for _, post := range discussion.Posts {
		input := models.ClassifierInput{
			CourseID:  discussion.CourseID,
			InputText: post.Message,
			ForumID:   discussion.ForumID,
			PostID:    post.ID,
			Source:    "forum_post",
			Subject:   post.Subject,
			Message:   post.Message,
			CreatedAt: strconv.FormatInt(post.TimeCreated, 10),
		}
		if post.Author != nil {
			input.UserID = post.Author.ID
		}
		if post.TimeModified > 0 {
			input.UpdatedAt = strconv.FormatInt(post.TimeModified, 10)
		}

		intent, err := o.classifier.Classify(ctx, input)
		if err != nil {
			return classified, fmt.Errorf("failed to classify post %d: %w", post.ID, err)
		}

		classified = append(classified, intent)

		if err := o.intents.Save(ctx, intent); err != nil {
			o.logger.Error("Error saving classified intent",
				zap.String("post_id", intent.PostID),
				zap.Error(err))
		}
	}

	return classified, nil
}

// GetActionToBeTaken asks the action agent what to do about one classified
// intent. A malformed (non-JSON) agent answer is an error and propagates.
func (o *Orchestrator) GetActionToBeTaken(ctx context.Context, intent *models.ClassifiedIntent) (*models.Action, error) {
	raw, err := o.agent.Invoke(ctx, intent)
	if err != nil {
		return nil, fmt.Errorf("action agent failed: %w", err)
	}

	var action models.Action
	if err := json.Unmarshal([]byte(raw), &action); err != nil {
		return nil, fmt.Errorf("failed to parse action agent response: %w", err)
	}

	return &action, nil
}

// GenerateActions runs one full pipeline pass: classify new updates, decide an
// action per intent, persist it, execute forum replies, and record outcomes.
//
// A classification whose save failed still flows into the action stage: the
// returned batch from GetUpdatesAndClassify is processed as-is. This mirrors
// the accepted inconsistency of the original pipeline and is pinned by tests.
func (o *Orchestrator) GenerateActions(ctx context.Context) error {
	classified, err := o.GetUpdatesAndClassify(ctx)
	if err != nil {
		return err
	}

	if len(classified) == 0 {
		o.logger.Info("No classified updates found, skipping action generation")
		return nil
	}

	for _, intent := range classified {
		action, err := o.GetActionToBeTaken(ctx, intent)
		if err != nil {
			// Agent invocation and response parsing are the only failures
			// that abort the batch.
			return err
		}

		if err := o.actions.Save(ctx, action); err != nil {
			o.logger.Error("Error saving action",
				zap.String("action", action.ActionToBeTaken),
				zap.String("post_id", intent.PostID),
				zap.Error(err))
			continue
		}

		o.dispatchAction(ctx, action)
	}

	return nil
}

// dispatchAction executes the side effect of one saved action. Only
// create_forum_post is executable today; every other value, including action
// strings the agent invented, falls through to the no-op branch and the record
// keeps its initial not-taken state.
func (o *Orchestrator) dispatchAction(ctx context.Context, action *models.Action) {
	switch action.ActionToBeTaken {
	case models.ActionCreateForumPost:
		o.executeForumReply(ctx, action)
	case models.ActionSendDirectMessage, models.ActionCreateAnnouncement, models.ActionGradeFeedback, models.ActionNoAction:
		o.logger.Info("Action recorded without execution",
			zap.String("action", action.ActionToBeTaken),
			zap.String("id", action.ID))
	default:
		o.logger.Warn("Unknown action type from agent, treating as no_action",
			zap.String("action", action.ActionToBeTaken),
			zap.String("id", action.ID))
	}
}

// executeForumReply posts the action's content as a reply and records the
// outcome. Both success and failure are terminal; there is no retry.
func (o *Orchestrator) executeForumReply(ctx context.Context, action *models.Action) {
	if o.cfg.PostDelay > 0 {
		time.Sleep(o.cfg.PostDelay)
	}

	success := false

	postID, err := strconv.ParseInt(action.Metadata.PostID, 10, 64)
	if err != nil {
		o.logger.Error("Invalid post id on action metadata",
			zap.String("post_id", action.Metadata.PostID),
			zap.Error(err))
		o.recordOutcome(ctx, action, success)
		return
	}

	result, err := o.lms.CreateAnswerOnPost(ctx, postID, action.Content, "PROF AI Response: ")
	switch {
	case err != nil:
		o.logger.Error("Failed to create forum post", zap.Int64("post_id", postID), zap.Error(err))
	case result.StatusCode == 200 || result.StatusCode == 201:
		success = true
		o.logger.Info("Successfully created forum post",
			zap.Int64("reply_post_id", result.PostID),
			zap.Int64("parent_post_id", postID))
	default:
		payload, _ := json.Marshal(result)
		o.logger.Error("Failed to create forum post",
			zap.Int64("post_id", postID),
			zap.Int("status", result.StatusCode),
			zap.String("payload", string(payload)))
	}

	o.recordOutcome(ctx, action, success)
}

func (o *Orchestrator) recordOutcome(ctx context.Context, action *models.Action, success bool) {
	if err := o.actions.UpdateOutcome(ctx, action.ID, true, &success, time.Now().UTC()); err != nil {
		o.logger.Error("Failed to update action outcome",
			zap.String("id", action.ID),
			zap.Error(err))
	}

	if o.notifier != nil {
		status := "failed"
		if success {
			status = "executed"
		}
		o.notifier.Notify(ctx, fmt.Sprintf(
			"Action %s %s for post %s (intent: %s)",
			action.ActionToBeTaken, status, action.Metadata.PostID, action.Metadata.Intent))
	}
}
