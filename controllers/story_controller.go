package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rizqiaditya/stories/services"
	"github.com/rizqiaditya/stories/storage"
	"github.com/rizqiaditya/stories/utils"
	"github.com/rizqiaditya/stories/validators"
)

const (
	photoField = "photo"

	cacheKeyPrefix   = "cache:stories:"
	cacheKeyVisible  = cacheKeyPrefix + "visible"
	cacheKeyArchived = cacheKeyPrefix + "archive"
	cacheKeyDetail   = cacheKeyPrefix + "detail:"
)

// CommentBody documents the comment request payload.
type CommentBody struct {
	Comment string `json:"comment" example:"Nice view!"`
}

// StoryController exposes the story lifecycle over HTTP.
type StoryController struct {
	svc   services.StoryService
	files storage.FileStore
	cache *utils.Cache
}

// NewStoryController creates a StoryController. cache may be nil.
func NewStoryController(svc services.StoryService, files storage.FileStore, cache *utils.Cache) *StoryController {
	return &StoryController{svc: svc, files: files, cache: cache}
}

// InvalidateCache drops every cached story response.
func (s *StoryController) InvalidateCache() {
	s.cache.InvalidateByPrefix(cacheKeyPrefix)
}

// ListStories returns the visible stories.
// @Summary      Get all visible stories
// @Tags         Stories
// @Produce      json
// @Success      200  {object}  utils.JSONResponse{data=[]models.Story}
// @Failure      500  {object}  utils.JSONResponse
// @Router       /api/stories [get]
func (s *StoryController) ListStories(ctx *gin.Context) {
	if s.serveCached(ctx, cacheKeyVisible) {
		return
	}
	stories, err := s.svc.ListVisible(ctx.Request.Context())
	if err != nil {
		s.fail(ctx, err, 50001, "failed to fetch stories")
		return
	}
	s.respondCached(ctx, cacheKeyVisible, "Stories fetched successfully", stories)
}

// ListArchivedStories returns stories that are no longer visible.
// @Summary      Get archived stories
// @Tags         Stories
// @Produce      json
// @Success      200  {object}  utils.JSONResponse{data=[]models.Story}
// @Failure      500  {object}  utils.JSONResponse
// @Router       /api/stories/archive [get]
func (s *StoryController) ListArchivedStories(ctx *gin.Context) {
	if s.serveCached(ctx, cacheKeyArchived) {
		return
	}
	stories, err := s.svc.ListArchived(ctx.Request.Context())
	if err != nil {
		s.fail(ctx, err, 50002, "failed to fetch archived stories")
		return
	}
	s.respondCached(ctx, cacheKeyArchived, "Archived stories fetched successfully", stories)
}

// GetStory returns one story by id.
// @Summary      Get story by ID
// @Tags         Stories
// @Produce      json
// @Param        id   path      string  true  "Story ID"  example(3f1c2a9e-5b7d-4c1e-9a2b-6d8e0f1a2b3c)
// @Success      200  {object}  utils.JSONResponse{data=models.Story}
// @Failure      404  {object}  utils.JSONResponse
// @Router       /api/stories/{id} [get]
func (s *StoryController) GetStory(ctx *gin.Context) {
	id := ctx.Param("id")
	if s.serveCached(ctx, cacheKeyDetail+id) {
		return
	}
	story, err := s.svc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		s.fail(ctx, err, 50003, "failed to fetch story")
		return
	}
	s.respondCached(ctx, cacheKeyDetail+id, "Story fetched successfully", story)
}

// CreateStory stores the uploaded photo, validates the remaining form fields and creates the story.
// The stages run strictly in that order; a stage failure ends the request.
// @Summary      Create new story
// @Tags         Stories
// @Accept       multipart/form-data
// @Produce      json
// @Param        photo     formData  file    true   "Story photo (jpeg, png, gif, webp)"
// @Param        caption   formData  string  false  "Caption, at most 500 characters"  example(So much going on lately)
// @Param        location  formData  string  false  "Location"  example(Malang, Indonesia)
// @Success      201  {object}  utils.JSONResponse{data=models.Story}
// @Failure      400  {object}  utils.JSONResponse{errors=[]validators.FieldViolation}
// @Failure      413  {object}  utils.JSONResponse
// @Failure      429  {object}  utils.JSONResponse
// @Router       /api/stories [post]
func (s *StoryController) CreateStory(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	// 1. upload intake
	fh, err := ctx.FormFile(photoField)
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid multipart payload")
		return
	}
	ref, err := s.files.Save(reqCtx, photoField, fh)
	if err != nil {
		s.fail(ctx, err, 50010, "failed to store photo")
		return
	}

	// 2. validation of the non-file fields
	var form validators.Payload
	if ctx.Request.MultipartForm != nil {
		form = validators.FormPayload(ctx.Request.MultipartForm.Value)
	}
	payload, err := validators.CreateStory.Validate(form)
	if err != nil {
		s.discard(ref)
		s.fail(ctx, err, 50011, "failed to validate story")
		return
	}

	// 3. execute
	story, err := s.svc.Create(reqCtx, ref, services.CreateStoryInput{
		Caption:  payload.OptionalString("caption"),
		Location: payload.String("location"),
	})
	if err != nil {
		s.discard(ref)
		s.fail(ctx, err, 50012, "failed to create story")
		return
	}

	s.InvalidateCache()
	utils.Created(ctx, "Story created successfully", story)
}

// DeleteStory permanently removes a story.
// @Summary      Delete story
// @Tags         Stories
// @Produce      json
// @Param        id   path      string  true  "Story ID"
// @Success      200  {object}  utils.JSONResponse
// @Failure      404  {object}  utils.JSONResponse
// @Router       /api/stories/{id} [delete]
func (s *StoryController) DeleteStory(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := s.svc.DeleteByID(ctx.Request.Context(), id); err != nil {
		s.fail(ctx, err, 50004, "failed to delete story")
		return
	}
	s.InvalidateCache()
	utils.Success(ctx, "Story deleted successfully", nil)
}

// CommentOnStory adds a comment from a JSON body {"comment": "..."}.
// @Summary      Comment on a story
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Story ID"
// @Param        body  body      controllers.CommentBody  true  "Comment"
// @Success      201   {object}  utils.JSONResponse{data=models.StoryComment}
// @Failure      400   {object}  utils.JSONResponse{errors=[]validators.FieldViolation}
// @Failure      404   {object}  utils.JSONResponse
// @Router       /api/stories/{id}/comments [post]
func (s *StoryController) CommentOnStory(ctx *gin.Context) {
	var body validators.Payload
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	payload, err := validators.CommentOnStory.Validate(body)
	if err != nil {
		s.fail(ctx, err, 50020, "failed to validate comment")
		return
	}

	comment := utils.Sanitize(payload.String("comment"))
	if comment == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "comment cannot be empty")
		return
	}

	created, err := s.svc.AddComment(ctx.Request.Context(), ctx.Param("id"), comment)
	if err != nil {
		s.fail(ctx, err, 50021, "failed to create comment")
		return
	}
	utils.Created(ctx, "Comment created successfully", created)
}

// ListComments returns the comments of a story, oldest first.
// @Summary      List story comments
// @Tags         Comments
// @Produce      json
// @Param        id   path      string  true  "Story ID"
// @Success      200  {object}  utils.JSONResponse{data=[]models.StoryComment}
// @Failure      404  {object}  utils.JSONResponse
// @Router       /api/stories/{id}/comments [get]
func (s *StoryController) ListComments(ctx *gin.Context) {
	comments, err := s.svc.ListComments(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		s.fail(ctx, err, 50022, "failed to fetch comments")
		return
	}
	utils.Success(ctx, "Comments fetched successfully", comments)
}

// GetStoryStats returns view and comment counts of a story.
// @Summary      Story statistics
// @Tags         Stories
// @Produce      json
// @Param        id   path      string  true  "Story ID"
// @Success      200  {object}  utils.JSONResponse{data=services.StoryStats}
// @Failure      404  {object}  utils.JSONResponse
// @Router       /api/stories/{id}/stats [get]
func (s *StoryController) GetStoryStats(ctx *gin.Context) {
	stats, err := s.svc.Stats(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		s.fail(ctx, err, 50023, "failed to fetch story stats")
		return
	}
	utils.Success(ctx, "Story stats fetched successfully", stats)
}

// fail translates err into the response envelope. Unclassified errors are logged and
// reported with internalCode and internalMsg only.
func (s *StoryController) fail(ctx *gin.Context, err error, internalCode int, internalMsg string) {
	var verr *validators.ValidationError
	var uerr *storage.UploadError
	switch {
	case errors.As(err, &verr):
		utils.Logger.Debug("payload rejected",
			zap.String("schema", verr.Schema),
			zap.Int("violations", len(verr.Violations)),
			zap.String("path", ctx.Request.URL.Path),
		)
		utils.Fail(ctx, http.StatusBadRequest, 40010, "validation failed", verr.Violations)
	case errors.As(err, &uerr):
		switch uerr.Code {
		case storage.UploadTooLarge:
			utils.Error(ctx, http.StatusRequestEntityTooLarge, 40022, uerr.Msg)
		case storage.UploadUnsupportedType:
			utils.Error(ctx, http.StatusBadRequest, 40023, uerr.Msg)
		default:
			utils.Error(ctx, http.StatusBadRequest, 40021, uerr.Field+" is required")
		}
	case errors.Is(err, services.ErrStoryNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "story not found")
	default:
		utils.Logger.Error(internalMsg,
			zap.Error(err),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
		)
		utils.Error(ctx, http.StatusInternalServerError, internalCode, internalMsg)
	}
}

func (s *StoryController) discard(ref storage.FileRef) {
	if err := s.files.Remove(ref); err != nil {
		utils.Sugar.Warnf("failed to discard photo %s: %v", ref.Path, err)
	}
}

func (s *StoryController) serveCached(ctx *gin.Context, key string) bool {
	b, ok := s.cache.GetBytes(key)
	if !ok {
		return false
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
	return true
}

func (s *StoryController) respondCached(ctx *gin.Context, key, message string, data interface{}) {
	resp := utils.JSONResponse{Success: true, Message: message, Data: data}
	s.cache.SetJSON(key, resp)
	utils.Respond(ctx, http.StatusOK, resp)
}
