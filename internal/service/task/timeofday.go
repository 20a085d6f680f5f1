package task

import (
	"strconv"
	"strings"
)

// parseMinutes 把HH:MM或HH:MM:SS格式的时间解析为当日分钟数
// 秒部分存在时直接忽略，不参与冲突计算
// 格式非法时返回ok=false
func parseMinutes(value string) (int, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return 0, false
		}
	}

	return hour*60 + minute, true
}
