package api_router

import (
	"github.com/dejay09121/Noteapp/internal/app"
	"github.com/dejay09121/Noteapp/internal/dto"
	pkgapp "github.com/dejay09121/Noteapp/pkg/app"
	"github.com/dejay09121/Noteapp/pkg/code"
	apperrors "github.com/dejay09121/Noteapp/pkg/errors"

	"github.com/gin-gonic/gin"
)

// NoteHandler 笔记 API 路由处理器
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// List 获取当前用户的全部笔记，按创建时间倒序
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	notes, err := h.App.NoteService.List(ctx, pkgapp.GetUID(c))
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(notes))
}

// Create 新建笔记
// @Router /api/note [post]
func (h *NoteHandler) Create(c *gin.Context) {
	params := &dto.NoteCreateRequest{}
	if !h.bind(c, params, "NoteHandler.Create") {
		return
	}
	ctx := c.Request.Context()
	note, err := h.App.NoteService.Insert(ctx, pkgapp.GetUID(c), params.Input())
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Update 按 ID 更新笔记
// @Router /api/note/{id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	params := &dto.NoteUpdateRequest{ID: c.Param("id")}
	if !h.bind(c, params, "NoteHandler.Update") {
		return
	}
	ctx := c.Request.Context()
	note, err := h.App.NoteService.Update(ctx, pkgapp.GetUID(c), params.ID, params.Input())
	if err != nil {
		h.logError(ctx, "NoteHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Delete 批量删除笔记
// @Router /api/notes [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	params := &dto.NoteDeleteRequest{}
	if !h.bind(c, params, "NoteHandler.Delete") {
		return
	}
	ctx := c.Request.Context()
	if err := h.App.NoteService.DeleteBatch(ctx, pkgapp.GetUID(c), params.IDs); err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success)
}
