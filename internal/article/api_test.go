package article_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/changhyeonkim/gorm-timestamp/internal/article"
	"github.com/changhyeonkim/gorm-timestamp/internal/model"
	sharedError "github.com/changhyeonkim/gorm-timestamp/internal/shared/error"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/testutil"
)

const (
	createdAt = "2024-03-09 14:30:15"
	oneMinute = "2024-03-09 14:31:15"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	clock  *clockwork.FakeClock
}

// setupTestEnvironment creates all dependencies needed for article handler tests
func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()

	// Setup test database with a controllable clock
	clock := clockwork.NewFakeClockAt(testutil.TestNow)
	db, _ := testutil.SetupTestDBWithClock(t, clock)
	t.Cleanup(func() {
		testutil.CleanupTestDB(t, db)
	})

	// Setup dependencies
	articleRepository := article.NewArticleRepository()
	articleService := article.NewArticleService(db, articleRepository)
	articleHandler := article.NewArticleHandler(articleService)

	router := testutil.SetupTestRouter()
	router.POST("/api/v1/articles", articleHandler.Create)
	router.GET("/api/v1/articles/:id", articleHandler.Get)
	router.PATCH("/api/v1/articles/:id", articleHandler.Update)

	return &testEnv{router: router, db: db, clock: clock}
}

func (e *testEnv) createArticle(t *testing.T, body any) article.ArticleResponse {
	t.Helper()

	recorder := testutil.ExecuteRequest(t, e.router, testutil.TestRequest{
		Method: http.MethodPost,
		URL:    "/api/v1/articles",
		Body:   body,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var response article.ArticleResponse
	testutil.ParseResponse(t, recorder, &response)
	return response
}

func (e *testEnv) patchArticle(t *testing.T, id uint32, body any) article.ArticleResponse {
	t.Helper()

	recorder := testutil.ExecuteRequest(t, e.router, testutil.TestRequest{
		Method: http.MethodPatch,
		URL:    fmt.Sprintf("/api/v1/articles/%d", id),
		Body:   body,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var response article.ArticleResponse
	testutil.ParseResponse(t, recorder, &response)
	return response
}

func TestCreateArticle_StampsBothTimestamps(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)

	// When
	response := env.createArticle(t, article.CreateArticleRequest{
		Title:   "Hello",
		Content: "World",
	})

	// Then
	assert.NotZero(t, response.ID)
	assert.Equal(t, "Hello", response.Title)
	assert.Equal(t, createdAt, response.Timestamps["createTime"])
	assert.Equal(t, createdAt, response.Timestamps["updateTime"])
}

func TestCreateArticle_KeepsImportedCreateTime(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)
	imported := "2001-01-01 09:00:00"

	// When
	response := env.createArticle(t, article.CreateArticleRequest{
		Title:      "Imported",
		CreateTime: &imported,
	})

	// Then
	assert.Equal(t, imported, response.Timestamps["createTime"])
	assert.Equal(t, createdAt, response.Timestamps["updateTime"])

	var stored model.Article
	require.NoError(t, env.db.First(&stored, response.ID).Error)
	assert.True(t, stored.CreateTime.Equal(time.Date(2001, 1, 1, 9, 0, 0, 0, time.UTC)))
}

func TestCreateArticle_ValidationError(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)
	badTime := "yesterday"

	testCases := []struct {
		name string
		body any
	}{
		{name: "Missing title", body: map[string]string{"content": "no title"}},
		{name: "Blank title", body: article.CreateArticleRequest{Title: "   "}},
		{name: "Malformed createTime", body: article.CreateArticleRequest{Title: "t", CreateTime: &badTime}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// When
			recorder := testutil.ExecuteRequest(t, env.router, testutil.TestRequest{
				Method: http.MethodPost,
				URL:    "/api/v1/articles",
				Body:   tc.body,
			})

			// Then
			assert.Equal(t, http.StatusBadRequest, recorder.Code)

			var errorResponse sharedError.ErrorResponse
			testutil.ParseResponse(t, recorder, &errorResponse)
			assert.Equal(t, "ERROR-001", errorResponse.Code)
		})
	}
}

func TestUpdateArticle_StampsUpdateTimeOnly(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)
	created := env.createArticle(t, article.CreateArticleRequest{Title: "Before"})
	env.clock.Advance(time.Minute)

	// When
	title := "After"
	response := env.patchArticle(t, created.ID, article.UpdateArticleRequest{Title: &title})

	// Then
	assert.Equal(t, "After", response.Title)
	assert.Equal(t, createdAt, response.Timestamps["createTime"])
	assert.Equal(t, oneMinute, response.Timestamps["updateTime"])
}

func TestUpdateArticle_ManualUpdateTimeWins(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)
	created := env.createArticle(t, article.CreateArticleRequest{Title: "Before"})
	env.clock.Advance(time.Minute)

	// When
	title := "After"
	manual := "2020-05-05 05:05:05"
	response := env.patchArticle(t, created.ID, article.UpdateArticleRequest{
		Title:      &title,
		UpdateTime: &manual,
	})

	// Then
	assert.Equal(t, manual, response.Timestamps["updateTime"])

	var stored model.Article
	require.NoError(t, env.db.First(&stored, created.ID).Error)
	assert.True(t, stored.UpdateTime.Equal(time.Date(2020, 5, 5, 5, 5, 5, 0, time.UTC)))
}

func TestUpdateArticle_EmptyPatchChangesNothing(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)
	created := env.createArticle(t, article.CreateArticleRequest{Title: "Same"})
	env.clock.Advance(time.Minute)

	// When
	response := env.patchArticle(t, created.ID, map[string]any{})

	// Then
	assert.Equal(t, createdAt, response.Timestamps["updateTime"])

	var stored model.Article
	require.NoError(t, env.db.First(&stored, created.ID).Error)
	assert.True(t, stored.UpdateTime.Equal(testutil.TestNow))
}

func TestGetArticle(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)
	created := env.createArticle(t, article.CreateArticleRequest{Title: "Read me"})

	// When
	recorder := testutil.ExecuteRequest(t, env.router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("/api/v1/articles/%d", created.ID),
	})

	// Then
	require.Equal(t, http.StatusOK, recorder.Code)
	var response article.ArticleResponse
	testutil.ParseResponse(t, recorder, &response)
	assert.Equal(t, created, response)
}

func TestGetArticle_NotFound(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)

	// When
	recorder := testutil.ExecuteRequest(t, env.router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    "/api/v1/articles/999",
	})

	// Then
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	var errorResponse sharedError.ErrorResponse
	testutil.ParseResponse(t, recorder, &errorResponse)
	assert.Equal(t, "ARTICLE-001", errorResponse.Code)
}

func TestGetArticle_InvalidID(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)

	// When
	recorder := testutil.ExecuteRequest(t, env.router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    "/api/v1/articles/abc",
	})

	// Then
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var errorResponse sharedError.ErrorResponse
	testutil.ParseResponse(t, recorder, &errorResponse)
	assert.Equal(t, "ERROR-004", errorResponse.Code)
}
