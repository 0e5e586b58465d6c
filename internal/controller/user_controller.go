package controller

import (
	"fmt"
	"learntwin_backend/internal/service"
	"learntwin_backend/internal/util"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct {
	UserService *service.UserService
	Storage     *service.StorageService
}

func NewUserController(userService *service.UserService, storage *service.StorageService) *UserController {
	return &UserController{
		UserService: userService,
		Storage:     storage,
	}
}

// @Summary 更新个人资料
// @Description 更新昵称、语言、头像与钱包地址
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body service.ProfileUpdate true "资料更新"
// @Success 200 {object} util.Response
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.UserService.UpdateProfile(user.UserID, &req)
	if err != nil {
		if err == util.ErrUserNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, updated)
}

// @Summary 上传头像
// @Tags 用户
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "头像文件"
// @Success 200 {object} util.Response
// @Router /api/user/avatar/upload [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少头像文件")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := fmt.Sprintf("avatars/%d/%s%s", user.UserID, uuid.New().String(), filepath.Ext(file.Filename))
	url, err := c.Storage.Upload(ctx.Request.Context(), filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	updated, err := c.UserService.UpdateProfile(user.UserID, &service.ProfileUpdate{Avatar: url})
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, updated)
}

// @Summary 我的报名
// @Description 当前用户的课程报名记录
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/user/enrollments [get]
func (c *UserController) GetEnrollments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollments, err := c.UserService.Enrollments(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, enrollments)
}
