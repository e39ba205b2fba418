package logger

// 统一的日志字段命名常量
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldToken 刷新序号字段
	FieldToken = "refreshToken"

	// FieldCount 数量字段
	FieldCount = "count"

	// FieldTerm 搜索词字段
	FieldTerm = "term"

	// FieldTrigger 刷新触发来源字段
	FieldTrigger = "trigger"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldBucket 存储桶名称字段
	FieldBucket = "bucket"

	// FieldFileKey 文件键字段
	FieldFileKey = "fileKey"
)
