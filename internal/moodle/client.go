package moodle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Client talks to the Moodle web-service REST API.
type Client struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	logger       *zap.Logger
	requestDelay time.Duration
}

// Config for the Moodle client.
type Config struct {
	BaseURL      string
	Token        string
	RequestDelay time.Duration // pause before each detail/write call
}

// NewClient creates a new Moodle web-service client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       logger,
		requestDelay: cfg.RequestDelay,
	}
}

// wsException is Moodle's error shape. The API reports failures inside a 200
// response, so every body is probed for it before decoding the real payload.
type wsException struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

// call performs one web-service request and decodes the JSON body into out.
// It returns the HTTP status code so writers can record non-2xx outcomes.
func (c *Client) call(ctx context.Context, method, wsfunction string, params map[string]string, out interface{}) (int, error) {
	endpoint := c.baseURL + "/webservice/rest/server.php"

	values := url.Values{}
	values.Set("wstoken", c.token)
	values.Set("wsfunction", wsfunction)
	values.Set("moodlewsrestformat", "json")
	for k, v := range params {
		values.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("moodle request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read moodle response: %w", err)
	}

	var exc wsException
	if err := json.Unmarshal(body, &exc); err == nil && exc.Exception != "" {
		c.logger.Error("Moodle API exception",
			zap.String("wsfunction", wsfunction),
			zap.String("errorcode", exc.ErrorCode),
			zap.String("message", exc.Message))
		return resp.StatusCode, fmt.Errorf("moodle API exception: %s", exc.Message)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return resp.StatusCode, fmt.Errorf("moodle returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode moodle response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// GetForumPosts fetches all posts of one discussion.
func (c *Client) GetForumPosts(ctx context.Context, discussionID int64) (*ForumPostsResponse, error) {
	var resp ForumPostsResponse
	_, err := c.call(ctx, http.MethodGet, "mod_forum_get_discussion_posts", map[string]string{
		"discussionid": strconv.FormatInt(discussionID, 10),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forum posts: %w", err)
	}
	return &resp, nil
}

// GetEnrolledUsers fetches the participants of a course.
func (c *Client) GetEnrolledUsers(ctx context.Context, courseID int64) ([]EnrolledUser, error) {
	var users []EnrolledUser
	_, err := c.call(ctx, http.MethodGet, "core_enrol_get_enrolled_users", map[string]string{
		"courseid": strconv.FormatInt(courseID, 10),
	}, &users)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enrolled users: %w", err)
	}
	return users, nil
}

// GetUpdatesSince asks the LMS what changed in a course since the given epoch
// timestamp and resolves every changed item to its detail. Detail calls run
// sequentially with a fixed delay in between to bound request rate on the LMS.
// Only forum discussion details become UpdateDetail records; other recognized
// module types are fetched and dropped, unknown types are logged and skipped.
func (c *Client) GetUpdatesSince(ctx context.Context, courseID int64, sinceEpoch int64) ([]UpdateDetail, error) {
	var resp UpdatesResponse
	_, err := c.call(ctx, http.MethodGet, "core_course_get_updates_since", map[string]string{
		"courseid":            strconv.FormatInt(courseID, 10),
		"since":               strconv.FormatInt(sinceEpoch, 10),
		"filter[discussions]": "",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updates since %d: %w", sinceEpoch, err)
	}

	var details []UpdateDetail

	for _, instance := range resp.Instances {
		for _, update := range instance.Updates {
			moduleType := ParseModuleType(update.Name)
			if moduleType == ModuleUnknown {
				c.logger.Warn("Skipping unsupported module type",
					zap.String("name", update.Name),
					zap.Int64("instance_id", instance.ID))
				continue
			}

			for _, itemID := range update.ItemIDs {
				if c.requestDelay > 0 {
					time.Sleep(c.requestDelay)
				}

				detail, err := c.fetchItemDetail(ctx, moduleType, instance.ID, itemID)
				if err != nil {
					return nil, err
				}
				if detail != nil {
					details = append(details, *detail)
				}
			}
		}
	}

	c.logger.Info("Resolved course updates",
		zap.Int64("course_id", courseID),
		zap.Int64("since", sinceEpoch),
		zap.Int("detail_count", len(details)))

	return details, nil
}

// fetchItemDetail resolves one changed item. It returns nil for module types
// whose details the pipeline does not translate into classifier input.
func (c *Client) fetchItemDetail(ctx context.Context, moduleType ModuleType, moduleID, itemID int64) (*UpdateDetail, error) {
	req, ok := detailRequestFor(moduleType, itemID)
	if !ok {
		return nil, nil
	}

	if moduleType != ModuleDiscussions {
		// Fetched for completeness but not classified today.
		var raw json.RawMessage
		if _, err := c.call(ctx, http.MethodGet, req.Function, req.Params, &raw); err != nil {
			return nil, fmt.Errorf("failed to fetch %s detail for item %d: %w", moduleType, itemID, err)
		}
		return nil, nil
	}

	var resp ForumPostResponse
	if _, err := c.call(ctx, http.MethodGet, req.Function, req.Params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch forum post %d: %w", itemID, err)
	}

	detail := &UpdateDetail{
		ID:           resp.Post.ID,
		Subject:      resp.Post.Subject,
		Content:      resp.Post.Message,
		TimeCreated:  resp.Post.TimeCreated,
		TimeModified: resp.Post.TimeModified,
		ModuleID:     moduleID,
		TypeName:     "forum",
		CreatedAt:    time.Unix(resp.Post.TimeCreated, 0).UTC().Format(time.RFC3339),
	}
	if resp.Post.Author != nil {
		detail.AuthorID = resp.Post.Author.ID
		detail.AuthorFullName = resp.Post.Author.FullName
	}
	if resp.Post.TimeModified > 0 {
		detail.UpdatedAt = time.Unix(resp.Post.TimeModified, 0).UTC().Format(time.RFC3339)
	}

	return detail, nil
}

// CreateAnswerOnPost posts a reply to an existing forum post.
func (c *Client) CreateAnswerOnPost(ctx context.Context, postID int64, message, subject string) (*CreatePostResult, error) {
	if c.requestDelay > 0 {
		time.Sleep(c.requestDelay)
	}

	c.logger.Info("Creating answer on post", zap.Int64("post_id", postID))

	var result CreatePostResult
	status, err := c.call(ctx, http.MethodPost, "mod_forum_add_discussion_post", map[string]string{
		"postid":  strconv.FormatInt(postID, 10),
		"message": message,
		"subject": subject,
	}, &result)
	result.StatusCode = status
	if err != nil {
		return &result, fmt.Errorf("failed to create forum post answer: %w", err)
	}

	return &result, nil
}
