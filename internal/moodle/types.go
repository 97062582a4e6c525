package moodle

// UpdatesResponse is the body of core_course_get_updates_since.
type UpdatesResponse struct {
	Instances []UpdateInstance `json:"instances"`
	Warnings  []Warning        `json:"warnings"`
}

// UpdateInstance groups the update events reported for one course module.
type UpdateInstance struct {
	ContextLevel string         `json:"contextlevel"` // typically "module"
	ID           int64          `json:"id"`           // course module id
	Updates      []ModuleUpdate `json:"updates"`
}

// ModuleUpdate is a single named update event with the affected item ids.
type ModuleUpdate struct {
	Name        string  `json:"name"` // e.g. "discussions"
	TimeUpdated int64   `json:"timeupdated"`
	ItemIDs     []int64 `json:"itemids,omitempty"`
}

// Warning is Moodle's soft-error shape, returned alongside normal payloads.
type Warning struct {
	Item        string `json:"item,omitempty"`
	ItemID      int64  `json:"itemid,omitempty"`
	WarningCode string `json:"warningcode"`
	Message     string `json:"message"`
}

// ForumPostResponse is the body of mod_forum_get_discussion_post.
type ForumPostResponse struct {
	Post     ForumPost `json:"post"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// ForumPostsResponse is the body of mod_forum_get_discussion_posts.
type ForumPostsResponse struct {
	Posts    []ForumPost `json:"posts"`
	ForumID  int64       `json:"forumid"`
	CourseID int64       `json:"courseid"`
	Warnings []Warning   `json:"warnings,omitempty"`
}

// ForumPost is a single forum post. Only the fields the pipeline consumes are
// modeled; Moodle returns considerably more.
type ForumPost struct {
	ID           int64       `json:"id"`
	Subject      string      `json:"subject"`
	Message      string      `json:"message"`
	Author       *PostAuthor `json:"author,omitempty"`
	DiscussionID int64       `json:"discussionid"`
	HasParent    bool        `json:"hasparent"`
	ParentID     *int64      `json:"parentid,omitempty"`
	TimeCreated  int64       `json:"timecreated"`
	TimeModified int64       `json:"timemodified"`
}

// PostAuthor identifies the author of a forum post.
type PostAuthor struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullname"`
}

// EnrolledUser is one participant of a course (core_enrol_get_enrolled_users).
type EnrolledUser struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullname"`
	Email    string `json:"email,omitempty"`
	Roles    []Role `json:"roles,omitempty"`
}

// Role is a Moodle role assignment on an enrolled user.
type Role struct {
	RoleID    int64  `json:"roleid"`
	Name      string `json:"name"`
	ShortName string `json:"shortname"`
}

// CreatePostResult is the outcome of mod_forum_add_discussion_post, combined
// with the HTTP status of the request so callers can record success or failure.
type CreatePostResult struct {
	PostID     int64     `json:"postid"`
	Warnings   []Warning `json:"warnings,omitempty"`
	StatusCode int       `json:"-"`
}

// UpdateDetail is the resolved body of one changed item, ready for
// classification. Only forum discussion updates are translated into this shape.
type UpdateDetail struct {
	ID             int64
	Subject        string
	Content        string
	AuthorFullName string
	AuthorID       int64
	TimeCreated    int64
	TimeModified   int64 // zero when the LMS reports no modification time
	ModuleID       int64
	TypeName       string
	CreatedAt      string
	UpdatedAt      string
}
