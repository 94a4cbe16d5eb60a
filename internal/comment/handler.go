package comment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sharedContext "github.com/changhyeonkim/gorm-timestamp/internal/shared/context"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/handler"
)

type CommentHandler struct {
	commentService *CommentService
}

func NewCommentHandler(commentService *CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create handles POST /articles/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	articleID, ok := sharedContext.RequireIDParam(c, sharedContext.IDParam)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	response, err := h.commentService.Create(c.Request.Context(), articleID, &req)
	if err != nil {
		handler.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Update handles PATCH /comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, ok := sharedContext.RequireIDParam(c, sharedContext.IDParam)
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	response, err := h.commentService.Update(c.Request.Context(), commentID, &req)
	if err != nil {
		handler.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
