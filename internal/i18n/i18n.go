// Package i18n 提供国际化支持
// 负责管理应用程序的语言包和翻译功能
package i18n

import (
	"sync"

	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"

	"notedeck/internal/logger"
)

// 支持的语言
const (
	LangZhCN = "zh-CN"
	LangEnUS = "en-US"
)

var (
	instance *I18n
	once     sync.Once

	// 语言包存储
	translations = map[string]map[string]string{
		LangZhCN: {
			"success":               "成功",
			"internal_server_error": "服务器内部错误",
			"invalid_params":        "参数错误",
			"unauthorized":          "未授权",
			"not_found":             "资源未找到",

			"stack_not_found":    "笔记栈不存在",
			"notebook_not_found": "笔记本不存在",

			"note_not_found":     "笔记不存在",
			"note_title_missing": "笔记标题不能为空",

			"tag_not_found":       "标签不存在",
			"tag_already_exists":  "标签名称已存在",
			"tag_not_associated":  "标签未关联到该笔记",
			"tag_already_applied": "标签已关联到该笔记",

			"file_not_found": "文件不存在",

			"task_not_found":     "任务不存在",
			"task_time_required": "任务名称、日期和起止时间不能为空",
			"schedule_conflict":  "该时间段与已有任务冲突",

			"unknown_error": "未知错误",
		},
		LangEnUS: {
			"success":               "Success",
			"internal_server_error": "Internal Server Error",
			"invalid_params":        "Invalid Parameters",
			"unauthorized":          "Unauthorized",
			"not_found":             "Resource Not Found",

			"stack_not_found":    "Stack Not Found",
			"notebook_not_found": "Notebook Not Found",

			"note_not_found":     "Note Not Found",
			"note_title_missing": "Note Title Is Required",

			"tag_not_found":       "Tag Not Found",
			"tag_already_exists":  "Tag Name Already Exists",
			"tag_not_associated":  "Tag Not Associated With Note",
			"tag_already_applied": "Tag Already Associated With Note",

			"file_not_found": "File Not Found",

			"task_not_found":     "Task Not Found",
			"task_time_required": "Task Label, Date And Time Range Are Required",
			"schedule_conflict":  "Time Slot Conflicts With An Existing Task",

			"unknown_error": "Unknown Error",
		},
	}
)

// I18n 国际化管理器
type I18n struct {
	translators map[string]ut.Translator
	defaultLang string
}

// GetInstance 获取I18n单例
func GetInstance() *I18n {
	once.Do(func() {
		instance = &I18n{
			translators: make(map[string]ut.Translator),
			defaultLang: LangZhCN,
		}
		instance.initTranslators()
	})
	return instance
}

// initTranslators 初始化翻译器
func (i *I18n) initTranslators() {
	zhCN := zh.New()
	enUS := en_US.New()
	uni := ut.New(zhCN, enUS, zhCN)

	// 注册支持的语言 - 使用locale库的标识符
	langMappings := map[string]string{
		LangZhCN: "zh",
		LangEnUS: "en_US",
	}

	for ourLang, localeLang := range langMappings {
		trans, found := uni.GetTranslator(localeLang)
		if !found {
			logger.Errorf("初始化翻译器失败 for language %s (locale: %s): translator not found", ourLang, localeLang)
			continue
		}
		i.translators[ourLang] = trans
	}

	logger.Info("国际化翻译器初始化完成")
}

// Translate 根据键和语言获取翻译
func (i *I18n) Translate(key, lang string) string {
	if translation, found := translations[lang][key]; found {
		return translation
	}

	// 如果当前语言没有找到，尝试在默认语言中查找
	if lang != i.defaultLang {
		if translation, found := translations[i.defaultLang][key]; found {
			return translation
		}
	}

	logger.Warnf("未找到翻译: %s, 语言: %s", key, lang)
	return key
}

// SetDefaultLanguage 设置默认语言
func (i *I18n) SetDefaultLanguage(lang string) {
	i.defaultLang = lang
}

// GetDefaultLanguage 获取默认语言
func (i *I18n) GetDefaultLanguage() string {
	return i.defaultLang
}

// IsSupportedLanguage 检查语言是否支持
func (i *I18n) IsSupportedLanguage(lang string) bool {
	_, exists := i.translators[lang]
	return exists
}
