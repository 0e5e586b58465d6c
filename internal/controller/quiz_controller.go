package controller

import (
	"errors"
	"learntwin_backend/internal/service"
	"learntwin_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// @Summary 开始答题
// @Description 创建新答题或续用进行中的答题。测验未解锁返回403
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param quizId path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/attempts [post]
func (c *QuizController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := util.MustParseUint(ctx.Param("quizId"))
	if quizID == 0 {
		util.BadRequest(ctx, "Invalid quiz ID")
		return
	}

	attempt, err := c.QuizService.StartAttempt(ctx.Request.Context(), user.UserID, quizID)
	if err != nil {
		var locked *service.LockedError
		switch {
		case errors.As(err, &locked):
			util.Locked(ctx, locked.Reason)
		case err == util.ErrQuizNotFound || err == util.ErrModuleNotFound:
			util.NotFound(ctx)
		case err == util.ErrNotEnrolled:
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, attempt)
}

type saveAnswersRequest struct {
	Answers map[uint]int `json:"answers" binding:"required"`
}

// @Summary 保存作答
// @Description 保存进行中答题的作答快照，到期自动提交以此评分
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "答题ID"
// @Param body body saveAnswersRequest true "作答内容"
// @Success 200 {object} util.Response
// @Router /api/quiz-attempts/{attemptId}/answers [put]
func (c *QuizController) SaveAnswers(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req saveAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.QuizService.SaveAnswers(user.UserID, ctx.Param("attemptId"), req.Answers)
	if err != nil {
		switch err {
		case util.ErrAttemptNotFound:
			util.NotFound(ctx)
		case util.ErrPermissionDenied:
			util.Forbidden(ctx)
		case util.ErrAttemptClosed:
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"saved": true})
}

type submitAttemptRequest struct {
	Answers map[uint]int `json:"answers"`
}

// @Summary 提交答题
// @Description 评分并返回结果。及格推进模块状态并可能触发完成事件；不及格允许重考
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "答题ID"
// @Param body body submitAttemptRequest true "最终作答"
// @Success 200 {object} util.Response
// @Router /api/quiz-attempts/{attemptId}/submit [post]
func (c *QuizController) SubmitAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req submitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.SubmitAttempt(ctx.Request.Context(), user.UserID, ctx.Param("attemptId"), req.Answers)
	if err != nil {
		switch err {
		case util.ErrAttemptNotFound:
			util.NotFound(ctx)
		case util.ErrPermissionDenied:
			util.Forbidden(ctx)
		case util.ErrAttemptClosed:
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
