package context

import (
	"strconv"

	"github.com/gin-gonic/gin"

	sharedError "github.com/changhyeonkim/gorm-timestamp/internal/shared/error"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/logger"
)

// Path parameter names
const (
	IDParam = "id"
)

// GetIDParam parses a numeric path parameter
func GetIDParam(c *gin.Context, name string) (uint32, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint32(id), true
}

// RequireIDParam retrieves a numeric path parameter.
// If it is missing or malformed, automatically sends an invalid path parameter response.
// Returns the ID and true if valid, 0 and false otherwise (error already sent).
func RequireIDParam(c *gin.Context, name string) (uint32, bool) {
	id, ok := GetIDParam(c, name)
	if !ok {
		c.JSON(sharedError.InvalidPathParam.Status, sharedError.InvalidPathParam)
		c.Abort()
		logger.FromContext(c.Request.Context()).Warn("[API] 경로 파라미터가 올바르지 않습니다.",
			"param", name, "value", c.Param(name))
		return 0, false
	}
	return id, true
}
