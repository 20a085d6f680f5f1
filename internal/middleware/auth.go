package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"notedeck/internal/database"
	"notedeck/internal/logger"
	"notedeck/internal/response"
)

// userIDKey gin上下文中当前用户ID的键
const userIDKey = "user_id"

// HeaderUserID 上游认证网关写入的用户标识请求头
// 令牌校验在上游完成，本服务只信任该头
const HeaderUserID = "X-User-ID"

// CurrentUser 用户身份中间件
// 从X-User-ID头解析外部用户标识，按需懒创建用户行，
// 并把内部用户ID写入请求上下文；头缺失时返回401
func CurrentUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		externalID := c.GetHeader(HeaderUserID)
		if externalID == "" {
			response.Unauthorized(c, "缺少用户身份标识")
			c.Abort()
			return
		}

		var user database.User
		result := db.Where(database.User{ExternalID: externalID}).FirstOrCreate(&user)
		err := result.Error
		if err == nil && result.RowsAffected > 0 {
			logger.Infof("User provisioned: id=%d external=%s", user.ID, externalID)
		}
		if err != nil {
			// 并发的首次请求可能同时创建，落败方撞在external_id唯一索引上，重查一次
			err = db.Where("external_id = ?", externalID).First(&user).Error
		}
		if err != nil {
			logger.Errorf("Failed to resolve user %s: %v", externalID, err)
			response.InternalError(c, "用户身份解析失败", err)
			c.Abort()
			return
		}

		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// UserID 从请求上下文取出当前用户ID
// 必须在CurrentUser中间件之后调用
func UserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}
