package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rizqiaditya/stories/models"
	"github.com/rizqiaditya/stories/storage"
	"github.com/rizqiaditya/stories/utils"
)

// ErrStoryNotFound is returned when an id does not resolve to a stored story.
var ErrStoryNotFound = errors.New("story not found")

// CreateStoryInput carries the validated, optional fields of a new story.
type CreateStoryInput struct {
	Caption  *string
	Location string
}

// StoryStats aggregates engagement for one story.
type StoryStats struct {
	Views         int64 `json:"views"`
	CommentsCount int64 `json:"commentsCount"`
}

// StoryService implements the story lifecycle.
type StoryService interface {
	ListVisible(ctx context.Context) ([]models.Story, error)
	ListArchived(ctx context.Context) ([]models.Story, error)
	GetByID(ctx context.Context, id string) (*models.Story, error)
	Create(ctx context.Context, photo storage.FileRef, in CreateStoryInput) (*models.Story, error)
	DeleteByID(ctx context.Context, id string) error

	AddComment(ctx context.Context, storyID, comment string) (*models.StoryComment, error)
	ListComments(ctx context.Context, storyID string) ([]models.StoryComment, error)
	RecordView(ctx context.Context, storyID string, at time.Time) error
	Stats(ctx context.Context, storyID string) (StoryStats, error)
	ArchiveExpired(ctx context.Context, now time.Time) (int64, error)
}

// DefaultStoryTTL is how long a new story stays visible when no lifetime is configured.
const DefaultStoryTTL = 24 * time.Hour

type storyService struct {
	db    *gorm.DB
	ttl   time.Duration
	files storage.FileStore
	now   func() time.Time
}

// NewStoryService returns a gorm backed StoryService. files may be nil, in which case
// photos are left on disk when a story is deleted. A non-positive ttl falls back to DefaultStoryTTL.
func NewStoryService(db *gorm.DB, ttl time.Duration, files storage.FileStore) StoryService {
	if ttl <= 0 {
		ttl = DefaultStoryTTL
	}
	return &storyService{db: db, ttl: ttl, files: files, now: time.Now}
}

func (s *storyService) ListVisible(ctx context.Context) ([]models.Story, error) {
	stories := []models.Story{}
	if err := s.db.WithContext(ctx).Where("is_visible = ?", true).Order("created_at DESC").Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("list visible stories: %w", err)
	}
	return stories, nil
}

func (s *storyService) ListArchived(ctx context.Context) ([]models.Story, error) {
	stories := []models.Story{}
	if err := s.db.WithContext(ctx).Where("is_visible = ?", false).Order("expired_at DESC").Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("list archived stories: %w", err)
	}
	return stories, nil
}

func (s *storyService) GetByID(ctx context.Context, id string) (*models.Story, error) {
	if !validID(id) {
		return nil, ErrStoryNotFound
	}
	var story models.Story
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&story).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, fmt.Errorf("load story %s: %w", id, err)
	}
	return &story, nil
}

func (s *storyService) Create(ctx context.Context, photo storage.FileRef, in CreateStoryInput) (*models.Story, error) {
	if photo.URL == "" {
		return nil, errors.New("create story: photo url is empty")
	}
	now := s.now()
	story := models.Story{
		PhotoURL:  photo.URL,
		PhotoPath: photo.Path,
		Location:  in.Location,
		IsVisible: true,
		ExpiredAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if in.Caption != nil && *in.Caption != "" {
		caption := *in.Caption
		story.Caption = &caption
	}
	if err := s.db.WithContext(ctx).Create(&story).Error; err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}
	return &story, nil
}

func (s *storyService) DeleteByID(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrStoryNotFound
	}
	var story models.Story
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&story).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStoryNotFound
			}
			return err
		}
		if err := tx.Where("story_id = ?", id).Delete(&models.StoryComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id = ?", id).Delete(&models.StoryView{}).Error; err != nil {
			return err
		}
		return tx.Delete(&story).Error
	})
	if err != nil {
		if errors.Is(err, ErrStoryNotFound) {
			return err
		}
		return fmt.Errorf("delete story %s: %w", id, err)
	}

	if s.files != nil && story.PhotoPath != "" {
		if err := s.files.Remove(storage.FileRef{Path: story.PhotoPath, URL: story.PhotoURL}); err != nil {
			utils.Sugar.Warnf("story %s deleted but photo removal failed: %v", id, err)
		}
	}
	return nil
}

func (s *storyService) AddComment(ctx context.Context, storyID, comment string) (*models.StoryComment, error) {
	if _, err := s.GetByID(ctx, storyID); err != nil {
		return nil, err
	}
	c := models.StoryComment{StoryID: storyID, Comment: comment}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &c, nil
}

func (s *storyService) ListComments(ctx context.Context, storyID string) ([]models.StoryComment, error) {
	if _, err := s.GetByID(ctx, storyID); err != nil {
		return nil, err
	}
	comments := []models.StoryComment{}
	if err := s.db.WithContext(ctx).Where("story_id = ?", storyID).Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// RecordView bumps the per-day counter of a story with an atomic upsert.
func (s *storyService) RecordView(ctx context.Context, storyID string, at time.Time) error {
	local := at.In(time.Local)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "story_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("story_views.count + 1"), "updated_at": at}),
	}).Create(&models.StoryView{Date: day, StoryID: storyID, Count: 1}).Error
}

func (s *storyService) Stats(ctx context.Context, storyID string) (StoryStats, error) {
	var st StoryStats
	if _, err := s.GetByID(ctx, storyID); err != nil {
		return st, err
	}
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.StoryView{}).Where("story_id = ?", storyID).
		Select("COALESCE(SUM(count),0)").Scan(&st.Views).Error; err != nil {
		return st, fmt.Errorf("sum views: %w", err)
	}
	if err := db.Model(&models.StoryComment{}).Where("story_id = ?", storyID).Count(&st.CommentsCount).Error; err != nil {
		return st, fmt.Errorf("count comments: %w", err)
	}
	return st, nil
}

// ArchiveExpired hides every visible story whose expiry is at or before now.
func (s *storyService) ArchiveExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Story{}).
		Where("is_visible = ? AND expired_at <= ?", true, now).
		Update("is_visible", false)
	if res.Error != nil {
		return 0, fmt.Errorf("archive expired stories: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
