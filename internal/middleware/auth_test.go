// 用户身份中间件的单元测试
// 覆盖头缺失拒绝和用户行的幂等按需创建
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"notedeck/internal/database"
	"notedeck/internal/response"
)

// setupAuthRoute 构造只挂身份中间件的探测路由
func setupAuthRoute(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	engine := gin.New()
	engine.GET("/whoami", CurrentUser(db), func(c *gin.Context) {
		response.Success(c, "ok", gin.H{"user_id": UserID(c)})
	})
	return engine, db
}

func TestCurrentUserRequiresHeader(t *testing.T) {
	engine, _ := setupAuthRoute(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCurrentUserProvisioningIsIdempotent(t *testing.T) {
	engine, db := setupAuthRoute(t)

	request := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(HeaderUserID, "ext-42")
		engine.ServeHTTP(w, req)
		return w.Code
	}

	// 同一外部标识的重复请求都成功，且只创建一行用户
	assert.Equal(t, http.StatusOK, request())
	assert.Equal(t, http.StatusOK, request())
	assert.Equal(t, http.StatusOK, request())

	var count int64
	require.NoError(t, db.Model(&database.User{}).Where("external_id = ?", "ext-42").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
