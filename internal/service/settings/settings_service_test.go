// 用户设置服务的单元测试
package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"notedeck/internal/database"
)

func setupService(t *testing.T) Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db)
}

func TestSettingsLazyCreation(t *testing.T) {
	svc := setupService(t)
	const userID = uint(1)

	// 首次读取自动创建默认设置
	first, err := svc.GetSettings(userID)
	require.NoError(t, err)
	assert.Equal(t, userID, first.UserID)

	// 再次读取返回同一行
	second, err := svc.GetSettings(userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestUpdateSettings(t *testing.T) {
	svc := setupService(t)
	const userID = uint(1)

	lang := "en-US"
	view := "tasks"
	updated, err := svc.UpdateSettings(userID, &UpdateSettingsRequest{
		Language:    &lang,
		DefaultView: &view,
	})
	require.NoError(t, err)
	assert.Equal(t, "en-US", updated.Language)
	assert.Equal(t, "tasks", updated.DefaultView)

	// 未指定的字段不变
	tz := "UTC"
	again, err := svc.UpdateSettings(userID, &UpdateSettingsRequest{Timezone: &tz})
	require.NoError(t, err)
	assert.Equal(t, "en-US", again.Language)
	assert.Equal(t, "UTC", again.Timezone)
}
