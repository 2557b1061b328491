package uskup

const (
	// ContextTraceIDKey 链路追踪trace_id键
	ContextTraceIDKey = "trace_id"
	// ContextUidKey 用户uid键
	ContextUidKey = "uid"
	// ContextRoleKey 用户角色键
	ContextRoleKey = "role"
)

// GetContextTraceID 获取上下文链路追踪trace_id
func GetContextTraceID(ctx *Context) string {
	return ctx.GetString(ContextTraceIDKey)
}

// SetContextTraceID 设置上下文链路追踪trace_id
func SetContextTraceID(ctx *Context, traceID string) {
	ctx.Set(ContextTraceIDKey, traceID)
}

// GetContextUid 获取上下文用户uid
func GetContextUid(ctx *Context) string {
	return ctx.GetString(ContextUidKey)
}

// SetContextUid 设置上下文用户uid
func SetContextUid(ctx *Context, uid string) {
	ctx.Set(ContextUidKey, uid)
}

// GetContextRole 获取上下文用户角色
func GetContextRole(ctx *Context) string {
	return ctx.GetString(ContextRoleKey)
}

// SetContextRole 设置上下文用户角色
func SetContextRole(ctx *Context, role string) {
	ctx.Set(ContextRoleKey, role)
}
