package controller

import (
	"fmt"
	"path/filepath"
	"strings"
	"writequest_app/internal/gateway"
	"writequest_app/internal/middleware"
	"writequest_app/internal/service"
	"writequest_app/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProfileController struct {
	StorageService *service.StorageService
	Gateway        *gateway.Client
}

func NewProfileController(storageService *service.StorageService, gw *gateway.Client) *ProfileController {
	return &ProfileController{
		StorageService: storageService,
		Gateway:        gw,
	}
}

const maxAvatarSize = 2 << 20

var allowedAvatarExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// UploadAvatar godoc
// @Summary 上传头像
// @Description 上传用户头像并把URL写回用户档案
// @Tags 档案
// @Accept  multipart/form-data
// @Produce  json
// @Param   avatar formData file true "头像文件"
// @Success 200 {object} util.Response{data=object} "头像URL"
// @Failure 400 {object} util.Response "文件不合法"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/profile/avatar [post]
func (c *ProfileController) UploadAvatar(ctx *gin.Context) {
	user := middleware.GetAppUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "缺少头像文件")
		return
	}
	if fileHeader.Size > maxAvatarSize {
		util.BadRequest(ctx, "头像文件不能超过2MB")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedAvatarExt[ext] {
		util.BadRequest(ctx, "仅支持 png/jpg/webp 格式")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("avatars/%s/%s%s", user.UserID(), uuid.New().String(), ext)
	contentType := fileHeader.Header.Get("Content-Type")
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, file, fileHeader.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	profile, err := c.Gateway.GetUserProfile(ctx.Request.Context(), user.UserID())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	profile.AvatarURL = url
	if _, err := c.Gateway.CreateOrUpdateUserProfile(ctx.Request.Context(), profile); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"avatarUrl": url})
}
