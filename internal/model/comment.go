package model

import "time"

// Comment keeps its creation time as a time.Time and its update time as
// seconds since the Unix epoch
type Comment struct {
	ID        uint32 `gorm:"column:id;primaryKey;autoIncrement"`
	ArticleID uint32 `gorm:"column:article_id;not null;index:idx_comment_article"`
	Body      string `gorm:"column:body;type:VARCHAR2(1000);not null"`

	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime:false" timestamp:"create"`
	UpdatedAt int64     `gorm:"column:updated_at;not null;autoUpdateTime:false" timestamp:"update;type:epoch"`
}

// TableName specifies the table name for Comment
func (*Comment) TableName() string {
	return "article_comment"
}

// NewComment creates a new Comment for the given article
func NewComment(articleID uint32, body string) *Comment {
	return &Comment{
		ArticleID: articleID,
		Body:      body,
	}
}
