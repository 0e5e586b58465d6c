package controller

import (
	"errors"
	"learntwin_backend/internal/service"
	"learntwin_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type LearningController struct {
	LearningService *service.LearningService
}

func NewLearningController(learningService *service.LearningService) *LearningController {
	return &LearningController{LearningService: learningService}
}

// @Summary 课程列表
// @Description 分页获取已发布课程
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *LearningController) ListCourses(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	courses, total, err := c.LearningService.ListCourses(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  courses,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 课程详情
// @Description 课程树及每个课时/测验的完成与可访问状态
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId} [get]
func (c *LearningController) GetCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	view, err := c.LearningService.GetCourseView(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		if err == util.ErrCourseNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary 报名课程
// @Description 报名后才能记录进度。重复报名返回已有记录
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/enroll [post]
func (c *LearningController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	enrollment, err := c.LearningService.Enroll(user.UserID, courseID)
	if err != nil {
		if err == util.ErrCourseNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}

// @Summary 课时进度
// @Description 单个课时的完成状态与观看进度
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId}/progress [get]
func (c *LearningController) GetLessonProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	if lessonID == 0 {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	progress, err := c.LearningService.GetLessonProgress(user.UserID, lessonID)
	if err != nil {
		if err == util.ErrLessonNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

type completeLessonRequest struct {
	Percentage float64 `json:"percentage"`
	TimeSpent  int     `json:"timeSpent"`
}

// @Summary 完成课时
// @Description 标记课时完成并返回最新进度与触发的完成事件。被锁定的课时返回403
// @Tags 学习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param lessonId path int true "课时ID"
// @Param body body completeLessonRequest false "观看进度"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId}/complete [post]
func (c *LearningController) CompleteLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	if lessonID == 0 {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	var req completeLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Percentage <= 0 || req.Percentage > 100 {
		req.Percentage = 100
	}

	result, err := c.LearningService.CompleteLesson(ctx.Request.Context(), user.UserID, lessonID, req.Percentage, req.TimeSpent)
	if err != nil {
		var locked *service.LockedError
		switch {
		case errors.As(err, &locked):
			util.Locked(ctx, locked.Reason)
		case err == util.ErrLessonNotFound || err == util.ErrModuleNotFound:
			util.NotFound(ctx)
		case err == util.ErrNotEnrolled:
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// @Summary 模块测验列表
// @Description 模块内的测验及解锁状态。课时未全部完成时测验不可进入
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/modules/{moduleId}/quizzes [get]
func (c *LearningController) GetModuleQuizzes(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	moduleID := util.MustParseUint(ctx.Param("moduleId"))
	if moduleID == 0 {
		util.BadRequest(ctx, "Invalid module ID")
		return
	}

	quizzes, err := c.LearningService.ModuleQuizzes(ctx.Request.Context(), user.UserID, moduleID)
	if err != nil {
		if err == util.ErrModuleNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, quizzes)
}
