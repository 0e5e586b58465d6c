package app

import (
	"learntwin_backend/docs"
	"learntwin_backend/internal/config"
	"learntwin_backend/internal/middleware"
	"learntwin_backend/internal/model"
	"learntwin_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.POST("/user/avatar/upload", c.user.UploadAvatar)
	rg.GET("/user/enrollments", c.user.GetEnrollments)

	// 课程与进度
	rg.GET("/courses", c.learning.ListCourses)
	rg.GET("/courses/:courseId", c.learning.GetCourse)
	rg.POST("/courses/:courseId/enroll", c.learning.Enroll)
	rg.GET("/lessons/:lessonId/progress", c.learning.GetLessonProgress)
	rg.POST("/lessons/:lessonId/complete", c.learning.CompleteLesson)
	rg.GET("/modules/:moduleId/quizzes", c.learning.GetModuleQuizzes)

	// 测验答题
	rg.POST("/quizzes/:quizId/attempts", c.quiz.StartAttempt)
	rg.PUT("/quiz-attempts/:attemptId/answers", c.quiz.SaveAnswers)
	rg.POST("/quiz-attempts/:attemptId/submit", c.quiz.SubmitAttempt)

	// 成就与铸造
	rg.GET("/achievements/recent", c.achievement.GetRecent)
	rg.POST("/achievements/mints/:moduleId/retry", c.achievement.RetryMint)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/courses", c.content.CreateCourse)
		teacher.POST("/courses/:courseId/publish", c.content.PublishCourse)
		teacher.POST("/courses/:courseId/modules", c.content.AddModule)
		teacher.POST("/modules/:moduleId/lessons", c.content.AddLesson)
		teacher.POST("/modules/:moduleId/quizzes", c.content.AddQuiz)
		teacher.POST("/lessons/:lessonId/video", c.content.UploadLessonVideo)
	}
}
