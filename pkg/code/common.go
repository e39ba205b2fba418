package code

import "net/http"

var (
	Success = NewSuss(1, lang{en: "Success", zh_cn: "成功"})

	ErrorServerInternal       = NewError(500, http.StatusInternalServerError, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorInvalidParams        = NewError(400, http.StatusBadRequest, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorNotUserAuthToken     = NewError(401, http.StatusUnauthorized, lang{en: "Authorization token not found", zh_cn: "未找到授权令牌"})
	ErrorInvalidUserAuthToken = NewError(402, http.StatusUnauthorized, lang{en: "Invalid authorization token", zh_cn: "授权令牌无效"})
	ErrorNotFound             = NewError(404, http.StatusNotFound, lang{en: "Resource not found", zh_cn: "资源不存在"})
	ErrorNotFoundAPI          = NewError(405, http.StatusNotFound, lang{en: "API not found", zh_cn: "接口不存在"})
	ErrorTooManyRequests      = NewError(429, http.StatusTooManyRequests, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorRequestTimeout       = NewError(408, http.StatusGatewayTimeout, lang{en: "Request timed out", zh_cn: "请求超时"})

	// 笔记同步
	ErrorAuthenticationAbsent = NewError(1001, http.StatusUnauthorized, lang{en: "User not logged in", zh_cn: "用户未登录"})
	ErrorRemoteFailure        = NewError(1002, http.StatusBadGateway, lang{en: "Remote store request failed", zh_cn: "远程存储请求失败"})
	ErrorEmptySelection       = NewError(1003, http.StatusOK, lang{en: "No notes selected", zh_cn: "未选择任何笔记"})
	ErrorNoteNotFound         = NewError(1004, http.StatusNotFound, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteCreateFailed     = NewError(1005, http.StatusInternalServerError, lang{en: "Failed to create note", zh_cn: "创建笔记失败"})
	ErrorNoteUpdateFailed     = NewError(1006, http.StatusInternalServerError, lang{en: "Failed to update note", zh_cn: "更新笔记失败"})
	ErrorNoteDeleteFailed     = NewError(1007, http.StatusInternalServerError, lang{en: "Failed to delete notes", zh_cn: "删除笔记失败"})
	ErrorNoteListFailed       = NewError(1008, http.StatusInternalServerError, lang{en: "Failed to list notes", zh_cn: "获取笔记列表失败"})

	// 媒体
	ErrorMediaFailure        = NewError(1101, http.StatusBadGateway, lang{en: "Media upload failed", zh_cn: "媒体上传失败"})
	ErrorUploadInProgress    = NewError(1102, http.StatusConflict, lang{en: "An upload is already in progress", zh_cn: "已有上传正在进行"})
	ErrorInvalidStorageType  = NewError(1103, http.StatusBadRequest, lang{en: "Invalid storage type", zh_cn: "存储类型无效"})
	ErrorStorageNotConfigure = NewError(1104, http.StatusBadRequest, lang{en: "Storage is not configured", zh_cn: "存储未配置"})
)
