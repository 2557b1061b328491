// Package ws 实现仪表盘的实时在线状态与通知中心。
//
// # 组成
//
//   - Registry: 连接注册表，连接 ID 到在线记录的映射
//   - RateLimiter: 按 (连接, 事件) 统计的 60 秒滑动窗口限流
//   - 空闲回收: 周期清理长时间无活动的连接，并在内存压力下额外清理一次
//   - Router: 入站事件分发，限流与参数校验在处理器之前完成
//   - 广播: 按谓词把事件投递给已识别的连接，投递失败只记录不上抛
//
// # 并发模型
//
// Hub 持有一把互斥锁，注册表、限流器与统计计数都只在持锁时修改。
// 每个入站事件、每次回收与内存检查都在一次持锁的轮次内完成，
// 出站发送只是非阻塞地写入连接的发送队列，队列满时直接丢弃。
//
// # 使用
//
//	hub, err := ws.NewHub(
//	    ws.WithMaxConnections(100),
//	    ws.WithLogger(log),
//	    ws.WithCheckOriginWhitelist([]string{"https://dashboard.example.org"}),
//	)
//	if err != nil {
//	    return err
//	}
//	go hub.Run(ctx)
//
//	r.GET("/ws", func(c *uskup.Context) {
//	    _ = hub.HandleUpgrade(c.Writer, c.Request, identityFrom(c))
//	})
//
//	// REST 写入后推送变更
//	hub.Publish(ws.EventDataChanged, payload, "")
//
//	// 优雅关闭
//	hub.Shutdown(shutdownCtx)
//
// # 帧格式
//
// 每一帧都是 JSON 文本消息:
//
//	{"event": "chat:message", "data": {...}, "timestamp": "2025-01-01T08:00:00Z"}
package ws
