package article

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sharedContext "github.com/changhyeonkim/gorm-timestamp/internal/shared/context"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/handler"
)

type ArticleHandler struct {
	articleService *ArticleService
}

func NewArticleHandler(articleService *ArticleService) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
	}
}

func (h *ArticleHandler) Create(c *gin.Context) {
	var req CreateArticleRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	response, err := h.articleService.Create(c.Request.Context(), &req)
	if err != nil {
		handler.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *ArticleHandler) Get(c *gin.Context) {
	articleID, ok := sharedContext.RequireIDParam(c, sharedContext.IDParam)
	if !ok {
		return
	}

	response, err := h.articleService.Get(c.Request.Context(), articleID)
	if err != nil {
		handler.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ArticleHandler) Update(c *gin.Context) {
	articleID, ok := sharedContext.RequireIDParam(c, sharedContext.IDParam)
	if !ok {
		return
	}

	var req UpdateArticleRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	response, err := h.articleService.Update(c.Request.Context(), articleID, &req)
	if err != nil {
		handler.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
