package validators

const (
	// MaxCaptionLength bounds a story caption after trimming.
	MaxCaptionLength = 500
	// MaxCommentLength bounds a story comment after trimming.
	MaxCommentLength = 500
)

// CreateStory validates the non-file fields of a story upload.
var CreateStory = NewSchema("create_story",
	Rule{Field: "location", AllowEmpty: true},
	Rule{Field: "caption", Nullable: true, AllowEmpty: true, Trim: true, MinLen: 1, MaxLen: MaxCaptionLength},
)

// CommentOnStory validates a comment body.
var CommentOnStory = NewSchema("comment_on_story",
	Rule{Field: "comment", Required: true, Trim: true, MinLen: 1, MaxLen: MaxCommentLength},
)
