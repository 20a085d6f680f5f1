package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"notedeck/internal/contentstore"
	"notedeck/internal/handler"
	"notedeck/internal/middleware"
	aggregateservice "notedeck/internal/service/aggregate"
	fileservice "notedeck/internal/service/file"
	noteservice "notedeck/internal/service/note"
	orgservice "notedeck/internal/service/organization"
	settingsservice "notedeck/internal/service/settings"
	tagservice "notedeck/internal/service/tag"
	taskservice "notedeck/internal/service/task"
)

// Router 路由配置
type Router struct {
	engine *gin.Engine
	db     *gorm.DB
}

// NewRouter 创建路由实例并装配全部服务和处理器
func NewRouter(db *gorm.DB, store contentstore.ContentStore) *Router {
	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	// 初始化服务
	orgService := orgservice.NewService(db)
	noteService := noteservice.NewService(db, store, orgService)
	taskService := taskservice.NewService(db)
	tagService := tagservice.NewService(db)
	fileService := fileservice.NewService(db)
	aggService := aggregateservice.NewService(db)
	settingsService := settingsservice.NewService(db)

	// 初始化处理器
	orgHandler := handler.NewOrganizationHandler(orgService, aggService)
	noteHandler := handler.NewNoteHandler(noteService, aggService)
	taskHandler := handler.NewTaskHandler(taskService)
	tagHandler := handler.NewTagHandler(tagService)
	fileHandler := handler.NewFileHandler(fileService)
	settingsHandler := handler.NewSettingsHandler(settingsService)

	// 使用中间件
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())

	// 配置CORS
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// 健康检查
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Service is running",
		})
	})

	// API路由组，全部接口要求用户身份
	api := engine.Group("/api/v1")
	api.Use(middleware.CurrentUser(db))
	{
		// 笔记栈管理接口
		stacks := api.Group("/stacks")
		{
			stacks.POST("", orgHandler.CreateStack)
			stacks.GET("", orgHandler.ListStacks)
			stacks.GET("/:id", orgHandler.GetStack)
			stacks.PUT("/:id", orgHandler.UpdateStack)
			stacks.DELETE("/:id", orgHandler.DeleteStack)

			// 笔记本入栈
			stacks.POST("/:id/notebooks/:notebookId", orgHandler.MoveNotebook)
		}

		// 笔记本管理接口
		notebooks := api.Group("/notebooks")
		{
			notebooks.POST("", orgHandler.CreateNotebook)
			notebooks.GET("", orgHandler.ListNotebooks)
			notebooks.GET("/:id", orgHandler.GetNotebook)
			notebooks.PUT("/:id", orgHandler.UpdateNotebook)
			notebooks.DELETE("/:id", orgHandler.DeleteNotebook)

			// 笔记本脱栈
			notebooks.DELETE("/:id/stack", orgHandler.UnstackNotebook)
		}

		// 笔记管理接口
		notes := api.Group("/notes")
		{
			notes.POST("", noteHandler.CreateNote)
			notes.GET("", noteHandler.ListNotes)
			notes.GET("/search", noteHandler.SearchNotes)
			notes.GET("/:id", noteHandler.GetNote)
			notes.PUT("/:id", noteHandler.UpdateNote)
			notes.DELETE("/:id", noteHandler.DeleteNote)

			// 笔记内容保存
			notes.PUT("/:id/content", noteHandler.SaveContent)

			// 笔记状态流转
			notes.POST("/:id/pin", noteHandler.Pin)
			notes.POST("/:id/unpin", noteHandler.Unpin)
			notes.POST("/:id/archive", noteHandler.Archive)
			notes.POST("/:id/unarchive", noteHandler.Unarchive)
			notes.POST("/:id/trash", noteHandler.Trash)
			notes.POST("/:id/restore", noteHandler.Restore)

			// 笔记标签管理
			notes.GET("/:id/tags", tagHandler.ListNoteTags)
			notes.POST("/:id/tags/:tagId", tagHandler.AttachTag)
			notes.DELETE("/:id/tags/:tagId", tagHandler.DetachTag)
		}

		// 标签管理接口
		tags := api.Group("/tags")
		{
			tags.POST("", tagHandler.CreateTag)
			tags.GET("", tagHandler.ListTags)
			tags.GET("/:id", tagHandler.GetTag)
			tags.PUT("/:id", tagHandler.UpdateTag)
			tags.DELETE("/:id", tagHandler.DeleteTag)
		}

		// 文件管理接口
		files := api.Group("/files")
		{
			files.POST("", fileHandler.CreateFile)
			files.GET("", fileHandler.ListFiles)
			files.GET("/:id", fileHandler.GetFile)
			files.PUT("/:id", fileHandler.UpdateFile)
			files.DELETE("/:id", fileHandler.DeleteFile)
		}

		// 任务管理接口
		tasks := api.Group("/tasks")
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("/reorder", taskHandler.Reorder)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/complete", taskHandler.Complete)
			tasks.POST("/:id/uncomplete", taskHandler.Uncomplete)
		}

		// 用户设置接口
		settings := api.Group("/settings")
		{
			settings.GET("", settingsHandler.GetSettings)
			settings.PUT("", settingsHandler.UpdateSettings)
		}
	}

	return &Router{
		engine: engine,
		db:     db,
	}
}

// GetEngine 获取Gin引擎
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// GetDB 获取数据库连接
func (r *Router) GetDB() *gorm.DB {
	return r.db
}
