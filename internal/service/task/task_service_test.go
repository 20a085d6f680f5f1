// 任务服务的单元测试
// 覆盖半开区间冲突检测、时间字段校验、全部成功或全部失败的重排序
package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"notedeck/internal/database"
	apperrors "notedeck/internal/errors"
)

// setupService 创建基于内存数据库的任务服务
func setupService(t *testing.T) (Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db), db
}

func strPtr(s string) *string { return &s }

func TestParseMinutes(t *testing.T) {
	cases := []struct {
		input   string
		minutes int
		ok      bool
	}{
		{"09:00", 540, true},
		{"09:30:45", 570, true}, // 秒被忽略
		{"00:00", 0, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"09:60", 0, false},
		{"0900", 0, false},
		{"", 0, false},
		{"ab:cd", 0, false},
	}

	for _, tc := range cases {
		minutes, ok := parseMinutes(tc.input)
		assert.Equal(t, tc.ok, ok, "input=%q", tc.input)
		if tc.ok {
			assert.Equal(t, tc.minutes, minutes, "input=%q", tc.input)
		}
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _ := setupService(t)
	const userID = uint(1)

	t.Run("时间三元组缺一不可", func(t *testing.T) {
		_, err := svc.CreateTask(userID, &CreateTaskRequest{
			Label:     "缺结束时间",
			StartDate: strPtr("2026-09-01"),
			StartTime: strPtr("09:00"),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("时间格式非法时报参数错误", func(t *testing.T) {
		_, err := svc.CreateTask(userID, &CreateTaskRequest{
			Label:     "格式错误",
			StartDate: strPtr("2026-09-01"),
			StartTime: strPtr("9点"),
			EndTime:   strPtr("10:00"),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestScheduleConflict(t *testing.T) {
	svc, _ := setupService(t)
	const userID = uint(1)

	_, err := svc.CreateTask(userID, &CreateTaskRequest{
		Label:     "晨会",
		StartDate: strPtr("2026-09-01"),
		StartTime: strPtr("09:00"),
		EndTime:   strPtr("10:00"),
	})
	require.NoError(t, err)

	t.Run("重叠时间段被拒绝", func(t *testing.T) {
		_, err := svc.CreateTask(userID, &CreateTaskRequest{
			Label:     "撞车会议",
			StartDate: strPtr("2026-09-01"),
			StartTime: strPtr("09:30"),
			EndTime:   strPtr("10:30"),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflictAdvisory(err))
	})

	t.Run("边界相接不算冲突", func(t *testing.T) {
		_, err := svc.CreateTask(userID, &CreateTaskRequest{
			Label:     "紧随其后",
			StartDate: strPtr("2026-09-01"),
			StartTime: strPtr("10:00"),
			EndTime:   strPtr("11:00"),
		})
		require.NoError(t, err)
	})

	t.Run("不同日期不冲突", func(t *testing.T) {
		_, err := svc.CreateTask(userID, &CreateTaskRequest{
			Label:     "次日同一时段",
			StartDate: strPtr("2026-09-02"),
			StartTime: strPtr("09:00"),
			EndTime:   strPtr("10:00"),
		})
		require.NoError(t, err)
	})

	t.Run("不同用户不冲突", func(t *testing.T) {
		_, err := svc.CreateTask(uint(2), &CreateTaskRequest{
			Label:     "他人的同一时段",
			StartDate: strPtr("2026-09-01"),
			StartTime: strPtr("09:00"),
			EndTime:   strPtr("10:00"),
		})
		require.NoError(t, err)
	})

	t.Run("起始不早于结束的区间永不冲突", func(t *testing.T) {
		// 倒置区间是空区间：既不报错也不判冲突
		_, err := svc.CreateTask(userID, &CreateTaskRequest{
			Label:     "倒置区间",
			StartDate: strPtr("2026-09-01"),
			StartTime: strPtr("09:30"),
			EndTime:   strPtr("09:00"),
		})
		require.NoError(t, err)

		conflict, err := svc.HasConflict(userID, "2026-09-01", "09:30", "09:30", 0)
		require.NoError(t, err)
		assert.False(t, conflict)
	})
}

func TestUpdateTaskExcludesSelf(t *testing.T) {
	svc, _ := setupService(t)
	const userID = uint(1)

	created, err := svc.CreateTask(userID, &CreateTaskRequest{
		Label:     "原会议",
		StartDate: strPtr("2026-09-01"),
		StartTime: strPtr("09:00"),
		EndTime:   strPtr("10:00"),
	})
	require.NoError(t, err)

	t.Run("与自身重叠的改期不算冲突", func(t *testing.T) {
		updated, err := svc.UpdateTask(userID, created.ID, &UpdateTaskRequest{
			StartTime: strPtr("09:15"),
			EndTime:   strPtr("10:15"),
		})
		require.NoError(t, err)
		assert.Equal(t, "09:15", *updated.StartTime)
	})

	t.Run("改入他人任务的时段仍然冲突", func(t *testing.T) {
		other, err := svc.CreateTask(userID, &CreateTaskRequest{
			Label:     "下午会",
			StartDate: strPtr("2026-09-01"),
			StartTime: strPtr("14:00"),
			EndTime:   strPtr("15:00"),
		})
		require.NoError(t, err)

		_, err = svc.UpdateTask(userID, other.ID, &UpdateTaskRequest{
			StartTime: strPtr("09:30"),
			EndTime:   strPtr("10:00"),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflictAdvisory(err))
	})
}

func TestUpdateTaskValidatesBeforeConflictCheck(t *testing.T) {
	svc, db := setupService(t)
	const userID = uint(1)

	_, err := svc.CreateTask(userID, &CreateTaskRequest{
		Label:     "晨会",
		StartDate: strPtr("2026-09-02"),
		StartTime: strPtr("09:00"),
		EndTime:   strPtr("10:00"),
	})
	require.NoError(t, err)

	target, err := svc.CreateTask(userID, &CreateTaskRequest{
		Label:     "下午会",
		StartDate: strPtr("2026-09-02"),
		StartTime: strPtr("14:00"),
		EndTime:   strPtr("15:00"),
	})
	require.NoError(t, err)

	t.Run("空标签先于冲突检测被拒绝", func(t *testing.T) {
		_, err := svc.UpdateTask(userID, target.ID, &UpdateTaskRequest{
			Label:     strPtr(""),
			StartTime: strPtr("09:30"),
			EndTime:   strPtr("10:30"),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.False(t, apperrors.IsConflictAdvisory(err))
	})

	t.Run("被拒绝的更新不修改任何字段", func(t *testing.T) {
		var current database.Task
		require.NoError(t, db.First(&current, target.ID).Error)
		assert.Equal(t, "下午会", current.Label)
		assert.Equal(t, "14:00", *current.StartTime)
		assert.Equal(t, "15:00", *current.EndTime)
	})
}

func TestNoOverlapInvariant(t *testing.T) {
	svc, db := setupService(t)
	const userID = uint(1)

	// 按乱序提交一批时间段，只有互不重叠的子集被接受
	slots := [][2]string{
		{"09:00", "10:00"},
		{"09:30", "10:30"}, // 与第一个重叠
		{"10:00", "11:00"},
		{"10:45", "11:15"}, // 与第三个重叠
		{"11:00", "12:00"},
	}
	for _, slot := range slots {
		svc.CreateTask(userID, &CreateTaskRequest{
			Label:     "任务",
			StartDate: strPtr("2026-09-01"),
			StartTime: strPtr(slot[0]),
			EndTime:   strPtr(slot[1]),
		})
	}

	var accepted []database.Task
	require.NoError(t, db.Where("user_id = ? AND start_date = ?", userID, "2026-09-01").Find(&accepted).Error)

	// 校验不变量：被接受的任务两两不重叠
	for i := 0; i < len(accepted); i++ {
		for j := i + 1; j < len(accepted); j++ {
			s1, _ := parseMinutes(*accepted[i].StartTime)
			e1, _ := parseMinutes(*accepted[i].EndTime)
			s2, _ := parseMinutes(*accepted[j].StartTime)
			e2, _ := parseMinutes(*accepted[j].EndTime)
			assert.False(t, s1 < e2 && s2 < e1,
				"任务%d与任务%d重叠: %s-%s vs %s-%s", accepted[i].ID, accepted[j].ID,
				*accepted[i].StartTime, *accepted[i].EndTime,
				*accepted[j].StartTime, *accepted[j].EndTime)
		}
	}
	assert.Len(t, accepted, 3)
}

func TestReorderAllOrNothing(t *testing.T) {
	svc, db := setupService(t)
	const userID = uint(1)

	first, err := svc.CreateTask(userID, &CreateTaskRequest{
		Label:     "第一",
		StartDate: strPtr("2026-09-01"),
		StartTime: strPtr("09:00"),
		EndTime:   strPtr("10:00"),
	})
	require.NoError(t, err)
	second, err := svc.CreateTask(userID, &CreateTaskRequest{
		Label:     "第二",
		StartDate: strPtr("2026-09-01"),
		StartTime: strPtr("10:00"),
		EndTime:   strPtr("11:00"),
	})
	require.NoError(t, err)

	foreign, err := svc.CreateTask(uint(2), &CreateTaskRequest{
		Label:     "他人的",
		StartDate: strPtr("2026-09-01"),
		StartTime: strPtr("09:00"),
		EndTime:   strPtr("10:00"),
	})
	require.NoError(t, err)

	t.Run("包含他人任务时整体拒绝", func(t *testing.T) {
		err := svc.Reorder(userID, &ReorderRequest{Items: []ReorderItem{
			{ID: first.ID, SortOrder: 5},
			{ID: foreign.ID, SortOrder: 6},
		}})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))

		// 归属校验失败时任何任务都不被修改
		var reloaded database.Task
		require.NoError(t, db.First(&reloaded, first.ID).Error)
		assert.Equal(t, first.SortOrder, reloaded.SortOrder)
	})

	t.Run("全部归属校验通过时整体生效", func(t *testing.T) {
		err := svc.Reorder(userID, &ReorderRequest{Items: []ReorderItem{
			{ID: first.ID, SortOrder: 10},
			{ID: second.ID, SortOrder: 20},
		}})
		require.NoError(t, err)

		var reloadedFirst database.Task
		require.NoError(t, db.First(&reloadedFirst, first.ID).Error)
		assert.Equal(t, 10, reloadedFirst.SortOrder)
		var reloadedSecond database.Task
		require.NoError(t, db.First(&reloadedSecond, second.ID).Error)
		assert.Equal(t, 20, reloadedSecond.SortOrder)
	})
}

func TestCompleteAndDelete(t *testing.T) {
	svc, _ := setupService(t)
	const userID = uint(1)

	created, err := svc.CreateTask(userID, &CreateTaskRequest{
		Label:     "可完成",
		StartDate: strPtr("2026-09-01"),
		StartTime: strPtr("09:00"),
		EndTime:   strPtr("10:00"),
	})
	require.NoError(t, err)

	completed, err := svc.Complete(userID, created.ID)
	require.NoError(t, err)
	assert.True(t, completed.Completed)

	uncompleted, err := svc.Uncomplete(userID, created.ID)
	require.NoError(t, err)
	assert.False(t, uncompleted.Completed)

	require.NoError(t, svc.DeleteTask(userID, created.ID))

	_, err = svc.GetTask(userID, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTaskView(t *testing.T) {
	svc, _ := setupService(t)
	const userID = uint(1)

	created, err := svc.CreateTask(userID, &CreateTaskRequest{
		Label:     "视图",
		StartDate: strPtr("2026-09-01"),
		StartTime: strPtr("09:00"),
		EndTime:   strPtr("10:00"),
	})
	require.NoError(t, err)

	view := NewTaskView(*created)
	require.NotNil(t, view.DueDate)
	assert.Equal(t, "2026-09-01", *view.DueDate) // due_date是start_date的别名
	assert.Nil(t, view.EndDate)                  // end_date历史上从未有值
}
