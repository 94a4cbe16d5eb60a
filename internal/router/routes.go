package router

import (
	"github.com/gin-gonic/gin"

	"github.com/changhyeonkim/gorm-timestamp/internal/article"
	"github.com/changhyeonkim/gorm-timestamp/internal/comment"
	"github.com/changhyeonkim/gorm-timestamp/internal/config"
	"github.com/changhyeonkim/gorm-timestamp/internal/meta"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/database"
)

// Setup configures all application-specific routes using dependency injection
func Setup(router *gin.Engine, cfg *config.Config, db *database.DB) {
	// Meta handler (health check)
	metaHandler := meta.NewHandler(cfg, db)
	router.GET("/health", metaHandler.Health)

	// repository
	articleRepository := article.NewArticleRepository()
	commentRepository := comment.NewCommentRepository()

	// service
	articleService := article.NewArticleService(db.DB, articleRepository)
	commentService := comment.NewCommentService(db.DB, commentRepository, articleRepository)

	// handler
	articleHandler := article.NewArticleHandler(articleService)
	commentHandler := comment.NewCommentHandler(commentService)

	// API v1 routes
	articleV1 := router.Group("/api/v1/articles")
	{
		articleV1.POST("", articleHandler.Create)
		articleV1.GET("/:id", articleHandler.Get)
		articleV1.PATCH("/:id", articleHandler.Update)
		articleV1.POST("/:id/comments", commentHandler.Create)
	}

	commentV1 := router.Group("/api/v1/comments")
	{
		commentV1.PATCH("/:id", commentHandler.Update)
	}
}
