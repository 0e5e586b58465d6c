package controller

import (
	"learntwin_backend/internal/service"
	"learntwin_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary 最近成就
// @Description 获取用户最近获得的成就
// @Tags 成就
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回数量" default(10)
// @Success 200 {object} util.Response
// @Router /api/achievements/recent [get]
func (c *AchievementController) GetRecent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := 10
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	achievements, err := c.AchievementService.Recent(user.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, achievements)
}

// @Summary 重试NFT铸造
// @Description 重试失败的模块成就铸造。已确认的铸造不会重复执行
// @Tags 成就
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/achievements/mints/{moduleId}/retry [post]
func (c *AchievementController) RetryMint(ctx *gin.Context) {
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

	status, err := c.AchievementService.RetryModuleMint(ctx.Request.Context(), user.UserID, moduleID)
	if err != nil {
		switch err {
		case util.ErrMintNotFound:
			util.NotFound(ctx)
		case util.ErrMintAlreadyConfirmed:
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, status)
}
