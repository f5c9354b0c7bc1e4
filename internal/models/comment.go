package models

import "gorm.io/gorm"

// Comment represents a comment on a post (PostgreSQL). PostID and UserID hold
// MongoDB ObjectIDs as hex strings.
type Comment struct {
	gorm.Model
	PostID  string `json:"post_id" gorm:"size:24;index"`
	UserID  string `json:"user_id" gorm:"size:24;index"`
	Content string `json:"content" gorm:"type:text"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	Comment
	Author UserCompact `json:"author"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
