package models

import "time"

// Known action types the professor agent may decide on. The agent answers with a
// free-form string; anything outside this set is treated as no_action at dispatch.
const (
	ActionCreateForumPost    = "create_forum_post"
	ActionSendDirectMessage  = "send_direct_message"
	ActionCreateAnnouncement = "create_announcement"
	ActionGradeFeedback      = "grade_feedback"
	ActionNoAction           = "no_action"
)

// ClassifierInput is the record handed to the intent classifier for one LMS update.
type ClassifierInput struct {
	UserID    int64  `json:"userId"`
	CourseID  int64  `json:"courseId"`
	InputText string `json:"inputText"`
	ForumID   int64  `json:"forumId"`
	PostID    int64  `json:"postId"`
	Source    string `json:"source"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ClassifiedIntent is the durable result of classifying one forum update.
//
// ExternalCreatedAt/ExternalUpdatedAt mirror the LMS timestamps, not insert time.
// The update watermark is derived from ExternalCreatedAt of the newest stored row,
// so classification must carry the LMS time through unchanged.
type ClassifiedIntent struct {
	ID                string     `json:"id" db:"id"`
	UserID            string     `json:"userId" db:"user_id"`
	CourseID          string     `json:"courseId" db:"course_id"`
	SummarizedInput   string     `json:"summarizedInput" db:"summarized_input"`
	ForumID           string     `json:"forumId" db:"forum_id"`
	PostID            string     `json:"postId" db:"post_id"`
	Intent            string     `json:"intent" db:"intent"`
	Source            string     `json:"source" db:"source"`
	ExternalCreatedAt time.Time  `json:"externalCreatedAt" db:"external_created_at"`
	ExternalUpdatedAt *time.Time `json:"externalUpdatedAt,omitempty" db:"external_updated_at"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

// ActionMetadata is the denormalized intent context carried on every action.
type ActionMetadata struct {
	UserID   string `json:"userId"`
	CourseID string `json:"courseId"`
	ForumID  string `json:"forumId"`
	PostID   string `json:"postId"`
	Intent   string `json:"intent"`
	Source   string `json:"source"`
}

// Action is a durable pedagogical decision made for one classified intent.
//
// Lifecycle: created with WasActionTaken=false and ActionSuccessful=nil; updated
// exactly once after an execution attempt for actionable types; never touched
// again for no_action.
type Action struct {
	ID               string         `json:"id" db:"id"`
	ActionToBeTaken  string         `json:"actionToBeTaken" db:"action_to_be_taken"`
	Reason           string         `json:"reason" db:"reason"`
	Priority         float64        `json:"priority" db:"priority"`
	Confidence       float64        `json:"confidence" db:"confidence"`
	Content          string         `json:"content" db:"content"`
	Metadata         ActionMetadata `json:"metadata" db:"-"`
	MemorySummary    string         `json:"memorySummary" db:"memory_summary"`
	WasActionTaken   bool           `json:"wasActionTaken" db:"was_action_taken"`
	ActionSuccessful *bool          `json:"actionSuccessful" db:"action_successful"`
	CreatedAt        time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt        *time.Time     `json:"updatedAt" db:"updated_at"`
}

// KnowledgeEntry is a retrievable chunk of course material or metadata backing
// the professor agent's lookup tools.
type KnowledgeEntry struct {
	ID        int64     `json:"id" db:"id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	Kind      string    `json:"kind" db:"kind"` // "material" or "metadata"
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
