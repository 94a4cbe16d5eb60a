package model

// Article is a post whose timestamps live in the embedded Timestamps
type Article struct {
	// Primary key - Oracle IDENTITY (auto-increment)
	ID uint32 `gorm:"column:id;primaryKey;autoIncrement"`

	Title   string `gorm:"column:title;type:VARCHAR2(200);not null"`
	Content string `gorm:"column:content;type:VARCHAR2(4000)"`

	Comments []Comment `gorm:"foreignKey:ArticleID"`

	Timestamps
}

// TableName specifies the table name for Article
func (*Article) TableName() string {
	return "article"
}

// NewArticle creates a new Article instance
func NewArticle(title, content string) *Article {
	return &Article{
		Title:   title,
		Content: content,
	}
}
