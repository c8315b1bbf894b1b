package controller

import (
	"errors"
	"time"
	"writequest_app/internal/gateway"
	"writequest_app/internal/middleware"
	"writequest_app/internal/model"
	"writequest_app/internal/service"
	"writequest_app/internal/util"

	"github.com/gin-gonic/gin"
)

type PairingController struct {
	PairingService *service.PairingService
	PromptClient   *gateway.PromptClient
}

func NewPairingController(pairingService *service.PairingService, promptClient *gateway.PromptClient) *PairingController {
	return &PairingController{
		PairingService: pairingService,
		PromptClient:   promptClient,
	}
}

// IssueCodeRequest 移动端为某个项目申请配对码
type IssueCodeRequest struct {
	ProjectID string `json:"projectId" binding:"required,uuid"`
}

// IssueCode godoc
// @Summary 签发配对码
// @Description 为当前用户的写作项目签发一个短时效配对码，供网页编辑器认领
// @Tags 配对
// @Accept  json
// @Produce  json
// @Param   body body IssueCodeRequest true "项目ID"
// @Success 201 {object} util.Response{data=object} "配对码与过期时间"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/pairing/codes [post]
func (c *PairingController) IssueCode(ctx *gin.Context) {
	var req IssueCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := middleware.GetAppUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	code, expiresAt, err := c.PairingService.IssueCode(ctx.Request.Context(), user.UserID(), req.ProjectID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"code":      code,
		"expiresAt": expiresAt.Format(time.RFC3339),
	})
}

// ClaimRequest 网页编辑器提交配对码
type ClaimRequest struct {
	Code string `json:"code" binding:"required"`
}

// Claim godoc
// @Summary 认领配对码
// @Description 网页编辑器用配对码换取编辑器会话令牌，配对码单次有效
// @Tags 配对
// @Accept  json
// @Produce  json
// @Param   body body ClaimRequest true "配对码"
// @Success 201 {object} util.Response{data=service.ClaimResult} "会话令牌"
// @Failure 400 {object} util.Response "配对码格式不正确"
// @Failure 409 {object} util.Response "同时配对的编辑器数量已达上限"
// @Failure 410 {object} util.Response "配对码已失效或已被使用"
// @Router /api/pairing/claim [post]
func (c *PairingController) Claim(ctx *gin.Context) {
	var req ClaimRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.PairingService.Claim(ctx.Request.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPairingCodeInvalid):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrPairingCodeExpired):
			util.Gone(ctx, err.Error())
		case errors.Is(err, util.ErrSessionLimit):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrProjectNotFound):
			util.NotFound(ctx, "项目不存在或已被删除")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, result)
}

// GetProject godoc
// @Summary 获取配对项目
// @Description 返回当前编辑器会话绑定的写作项目及其内容
// @Tags 编辑器
// @Produce  json
// @Success 200 {object} util.Response{data=model.WritingProject}
// @Failure 401 {object} util.Response "令牌无效"
// @Failure 410 {object} util.Response "会话已失效"
// @Router /api/editor/project [get]
func (c *PairingController) GetProject(ctx *gin.Context) {
	claims := middleware.GetEditorClaims(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	project, err := c.PairingService.Project(claims.SessionID)
	if err != nil {
		util.NotFound(ctx, "项目不存在或已被删除")
		return
	}
	util.Success(ctx, project)
}

// SaveProjectRequest 编辑器保存内容
type SaveProjectRequest struct {
	Content string `json:"content"`
}

// SaveProject godoc
// @Summary 保存项目内容
// @Description 更新会话绑定项目的内容，字数随内容重算，远端落库按固定间隔批量进行
// @Tags 编辑器
// @Accept  json
// @Produce  json
// @Param   body body SaveProjectRequest true "项目内容"
// @Success 200 {object} util.Response{data=model.WritingProject} "保存后的项目快照"
// @Failure 401 {object} util.Response "令牌无效"
// @Failure 410 {object} util.Response "会话已失效"
// @Router /api/editor/project [put]
func (c *PairingController) SaveProject(ctx *gin.Context) {
	var req SaveProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := middleware.GetEditorClaims(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	project, err := c.PairingService.SaveContent(ctx.Request.Context(), claims.SessionID, req.Content)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) || errors.Is(err, util.ErrNoCurrentProject) {
			util.Gone(ctx, "编辑器会话已失效，请重新配对")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, project)
}

// Revoke godoc
// @Summary 撤销编辑器会话
// @Description 编辑器主动断开，未落库的内容会先冲刷到远端
// @Tags 编辑器
// @Produce  json
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response "令牌无效"
// @Router /api/pairing/session [delete]
func (c *PairingController) Revoke(ctx *gin.Context) {
	claims := middleware.GetEditorClaims(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.PairingService.Revoke(ctx.Request.Context(), claims.SessionID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"revoked": true})
}

// GetPrompt godoc
// @Summary 写作灵感
// @Description 按体裁生成一条写作开头灵感
// @Tags 编辑器
// @Produce  json
// @Param   genre query string true "写作体裁"
// @Success 200 {object} util.Response{data=object} "灵感文本"
// @Failure 400 {object} util.Response "体裁不合法"
// @Router /api/editor/prompt [get]
func (c *PairingController) GetPrompt(ctx *gin.Context) {
	genre := model.Genre(ctx.Query("genre"))
	if !genre.Valid() {
		util.BadRequest(ctx, util.ErrInvalidGenre.Error())
		return
	}

	prompt, err := c.PromptClient.GenerateWritingPrompt(ctx.Request.Context(), genre, model.LevelTypeMechanics)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"prompt": prompt})
}
