package controller

import (
	"learntwin_backend/internal/service"
	"learntwin_backend/internal/util"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// @Summary 创建课程
// @Description 创建未发布的新课程（教师）
// @Tags 内容管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course body service.CourseRequest true "课程信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/courses [post]
func (c *ContentController) CreateCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.ContentService.CreateCourse(user.UserID, &req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// @Summary 发布课程
// @Description 发布后学员可见并可报名
// @Tags 内容管理
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/courses/{courseId}/publish [post]
func (c *ContentController) PublishCourse(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	course, err := c.ContentService.PublishCourse(courseID)
	if err != nil {
		if err == util.ErrCourseNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary 添加模块
// @Description 在课程下追加有序模块
// @Tags 内容管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "课程ID"
// @Param module body service.ModuleRequest true "模块信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/courses/{courseId}/modules [post]
func (c *ContentController) AddModule(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	mod, err := c.ContentService.AddModule(courseID, &req)
	if err != nil {
		if err == util.ErrCourseNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, mod)
}

// @Summary 添加课时
// @Description 在模块末尾追加课时
// @Tags 内容管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "模块ID"
// @Param lesson body service.LessonRequest true "课时信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/modules/{moduleId}/lessons [post]
func (c *ContentController) AddLesson(ctx *gin.Context) {
	moduleID := util.MustParseUint(ctx.Param("moduleId"))
	if moduleID == 0 {
		util.BadRequest(ctx, "Invalid module ID")
		return
	}

	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.ContentService.AddLesson(moduleID, &req)
	if err != nil {
		if err == util.ErrModuleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, lesson)
}

// @Summary 添加测验
// @Description 创建模块测验及题目
// @Tags 内容管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "模块ID"
// @Param quiz body service.QuizRequest true "测验信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/modules/{moduleId}/quizzes [post]
func (c *ContentController) AddQuiz(ctx *gin.Context) {
	moduleID := util.MustParseUint(ctx.Param("moduleId"))
	if moduleID == 0 {
		util.BadRequest(ctx, "Invalid module ID")
		return
	}

	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.ContentService.AddQuiz(moduleID, &req)
	if err != nil {
		if err == util.ErrModuleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, quiz)
}

// @Summary 上传课时视频
// @Description 上传视频文件并回填课时时长
// @Tags 内容管理
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param lessonId path int true "课时ID"
// @Param file formData file true "视频文件"
// @Success 200 {object} util.Response
// @Router /api/teacher/lessons/{lessonId}/video [post]
func (c *ContentController) UploadLessonVideo(ctx *gin.Context) {
	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	if lessonID == 0 {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少视频文件")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedVideoExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		util.BadRequest(ctx, "不支持的视频格式: "+ext)
		return
	}

	lesson, err := c.ContentService.UploadLessonVideo(ctx.Request.Context(), lessonID, file)
	if err != nil {
		if err == util.ErrLessonNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, lesson)
}
