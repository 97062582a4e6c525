package orchestrator

import (
	"context"
	"time"

	"github.com/gmaragao/profAI/internal/models"
	"github.com/gmaragao/profAI/internal/moodle"
)

type fakeLMS struct {
	getUpdatesSince    func(ctx context.Context, courseID, since int64) ([]moodle.UpdateDetail, error)
	getForumPosts      func(ctx context.Context, discussionID int64) (*moodle.ForumPostsResponse, error)
	createAnswerOnPost func(ctx context.Context, postID int64, message, subject string) (*moodle.CreatePostResult, error)
}

func (f *fakeLMS) GetUpdatesSince(ctx context.Context, courseID, since int64) ([]moodle.UpdateDetail, error) {
	return f.getUpdatesSince(ctx, courseID, since)
}

func (f *fakeLMS) GetForumPosts(ctx context.Context, discussionID int64) (*moodle.ForumPostsResponse, error) {
	return f.getForumPosts(ctx, discussionID)
}

func (f *fakeLMS) CreateAnswerOnPost(ctx context.Context, postID int64, message, subject string) (*moodle.CreatePostResult, error) {
	return f.createAnswerOnPost(ctx, postID, message, subject)
}

type fakeClassifier struct {
	classify func(ctx context.Context, input models.ClassifierInput) (*models.ClassifiedIntent, error)
}

func (f *fakeClassifier) Classify(ctx context.Context, input models.ClassifierInput) (*models.ClassifiedIntent, error) {
	return f.classify(ctx, input)
}

type fakeAgent struct {
	invoke func(ctx context.Context, intent *models.ClassifiedIntent) (string, error)
}

func (f *fakeAgent) Invoke(ctx context.Context, intent *models.ClassifiedIntent) (string, error) {
	return f.invoke(ctx, intent)
}

type fakeIntentStore struct {
	save              func(ctx context.Context, intent *models.ClassifiedIntent) error
	getLastClassified func(ctx context.Context) (*models.ClassifiedIntent, error)
}

func (f *fakeIntentStore) Save(ctx context.Context, intent *models.ClassifiedIntent) error {
	if f.save == nil {
		return nil
	}
	return f.save(ctx, intent)
}

func (f *fakeIntentStore) GetLastClassified(ctx context.Context) (*models.ClassifiedIntent, error) {
	if f.getLastClassified == nil {
		return nil, nil
	}
	return f.getLastClassified(ctx)
}

type outcomeUpdate struct {
	id               string
	wasActionTaken   bool
	actionSuccessful *bool
}

type fakeActionStore struct {
	save    func(ctx context.Context, action *models.Action) error
	saved   []*models.Action
	updates []outcomeUpdate
}

func (f *fakeActionStore) Save(ctx context.Context, action *models.Action) error {
	if f.save != nil {
		if err := f.save(ctx, action); err != nil {
			return err
		}
	}
	f.saved = append(f.saved, action)
	return nil
}

func (f *fakeActionStore) UpdateOutcome(ctx context.Context, id string, wasActionTaken bool, actionSuccessful *bool, updatedAt time.Time) error {
	f.updates = append(f.updates, outcomeUpdate{id: id, wasActionTaken: wasActionTaken, actionSuccessful: actionSuccessful})
	return nil
}
