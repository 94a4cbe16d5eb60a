package comment_test

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
	"github.com/changhyeonkim/gorm-timestamp/internal/comment"
	"github.com/changhyeonkim/gorm-timestamp/internal/model"
	sharedError "github.com/changhyeonkim/gorm-timestamp/internal/shared/error"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/testutil"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	clock  *clockwork.FakeClock
}

// setupTestEnvironment creates all dependencies needed for comment handler tests
func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()

	clock := clockwork.NewFakeClockAt(testutil.TestNow)
	db, _ := testutil.SetupTestDBWithClock(t, clock)
	t.Cleanup(func() {
		testutil.CleanupTestDB(t, db)
	})

	articleRepository := article.NewArticleRepository()
	commentRepository := comment.NewCommentRepository()
	commentService := comment.NewCommentService(db, commentRepository, articleRepository)
	commentHandler := comment.NewCommentHandler(commentService)

	router := testutil.SetupTestRouter()
	router.POST("/api/v1/articles/:id/comments", commentHandler.Create)
	router.PATCH("/api/v1/comments/:id", commentHandler.Update)

	return &testEnv{router: router, db: db, clock: clock}
}

func (e *testEnv) seedArticle(t *testing.T) uint32 {
	t.Helper()

	a := model.NewArticle("Parent", "")
	require.NoError(t, e.db.Create(a).Error)
	return a.ID
}

func (e *testEnv) createComment(t *testing.T, articleID uint32, body string) comment.CommentResponse {
	t.Helper()

	recorder := testutil.ExecuteRequest(t, e.router, testutil.TestRequest{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("/api/v1/articles/%d/comments", articleID),
		Body:   comment.CreateCommentRequest{Body: body},
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var response comment.CommentResponse
	testutil.ParseResponse(t, recorder, &response)
	return response
}

func TestCreateComment(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)
	articleID := env.seedArticle(t)

	// When
	response := env.createComment(t, articleID, "first")

	// Then
	assert.NotZero(t, response.ID)
	assert.Equal(t, articleID, response.ArticleID)
	assert.Equal(t, "first", response.Body)
	assert.Equal(t, "2024-03-09 14:30:15", response.CreatedAt)
	assert.Equal(t, testutil.TestNow.Unix(), response.UpdatedAt)

	var stored model.Comment
	require.NoError(t, env.db.First(&stored, response.ID).Error)
	assert.True(t, stored.CreatedAt.Equal(testutil.TestNow))
	assert.Equal(t, testutil.TestNow.Unix(), stored.UpdatedAt)
}

func TestCreateComment_ArticleNotFound(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)

	// When
	recorder := testutil.ExecuteRequest(t, env.router, testutil.TestRequest{
		Method: http.MethodPost,
		URL:    "/api/v1/articles/42/comments",
		Body:   comment.CreateCommentRequest{Body: "orphan"},
	})

	// Then
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	var errorResponse sharedError.ErrorResponse
	testutil.ParseResponse(t, recorder, &errorResponse)
	assert.Equal(t, "COMMENT-002", errorResponse.Code)

	var count int64
	require.NoError(t, env.db.Model(&model.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateComment_RestampsEpochOnly(t *testing.T) {
	// Given
	env := setupTestEnvironment(t)
	created := env.createComment(t, env.seedArticle(t), "before")
	env.clock.Advance(90 * time.Second)

	// When
	recorder := testutil.ExecuteRequest(t, env.router, testutil.TestRequest{
		Method: http.MethodPatch,
		URL:    fmt.Sprintf("/api/v1/comments/%d", created.ID),
		Body:   comment.UpdateCommentRequest{Body: "after"},
	})

	// Then
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var response comment.CommentResponse
	testutil.ParseResponse(t, recorder, &response)
	assert.Equal(t, "after", response.Body)
	assert.Equal(t, created.CreatedAt, response.CreatedAt)
	assert.Equal(t, testutil.TestNow.Unix()+90, response.UpdatedAt)

	var stored model.Comment
	require.NoError(t, env.db.First(&stored, created.ID).Error)
	assert.Equal(t, "after", stored.Body)
	assert.True(t, stored.CreatedAt.Equal(testutil.TestNow))
	assert.Equal(t, testutil.TestNow.Unix()+90, stored.UpdatedAt)
}

func TestUpdateComment_Errors(t *testing.T) {
	testCases := []struct {
		name           string
		url            string
		body           any
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Comment not found",
			url:            "/api/v1/comments/999",
			body:           comment.UpdateCommentRequest{Body: "x"},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "COMMENT-001",
		},
		{
			name:           "Invalid comment id",
			url:            "/api/v1/comments/0",
			body:           comment.UpdateCommentRequest{Body: "x"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "ERROR-004",
		},
		{
			name:           "Blank body",
			url:            "/api/v1/comments/1",
			body:           comment.UpdateCommentRequest{Body: " "},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "ERROR-001",
		},
		{
			name:           "Malformed JSON",
			url:            "/api/v1/comments/1",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "ERROR-002",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Given
			env := setupTestEnvironment(t)

			// When
			recorder := testutil.ExecuteRequest(t, env.router, testutil.TestRequest{
				Method: http.MethodPatch,
				URL:    tc.url,
				Body:   tc.body,
			})

			// Then
			assert.Equal(t, tc.expectedStatus, recorder.Code)

			var errorResponse sharedError.ErrorResponse
			testutil.ParseResponse(t, recorder, &errorResponse)
			assert.Equal(t, tc.expectedCode, errorResponse.Code)
		})
	}
}
