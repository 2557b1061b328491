package handler

import (
	"github.com/tokmz/uskup"
	"github.com/tokmz/uskup/internal/auth"
	"github.com/tokmz/uskup/internal/service"
	"github.com/tokmz/uskup/pkg/errors"
)

// registerRecords 每类记录注册 list/get/create/patch/delete，写操作需要登录
func (h *Handler) registerRecords(api *uskup.RouterGroup, write uskup.HandlerFunc) {
	for _, name := range h.records.Names() {
		col, err := h.records.Kind(name)
		if err != nil {
			panic(err)
		}

		g := api.Group("/" + name)
		g.GET("", listRecords(col))
		g.GET("/:id", getRecord(col))
		g.POST("", createRecord(col), write)
		g.PATCH("/:id", updateRecord(col), write)
		g.PUT("/:id", updateRecord(col), write)
		g.DELETE("/:id", deleteRecord(col), write)
	}
}

func listRecords(col service.Collection) uskup.HandlerFunc {
	return func(c *uskup.Context) {
		list, total, err := col.List(c.RequestContext(), c.Request().URL.Query())
		if err != nil {
			c.RespondError(err)
			return
		}
		c.List(list, total)
	}
}

func getRecord(col service.Collection) uskup.HandlerFunc {
	return func(c *uskup.Context) {
		rec, err := col.Get(c.RequestContext(), c.Param("id"))
		if err != nil {
			c.RespondError(err)
			return
		}
		c.Success(rec)
	}
}

func createRecord(col service.Collection) uskup.HandlerFunc {
	return func(c *uskup.Context) {
		body, ok := bindBody(c)
		if !ok {
			return
		}
		p, _ := auth.FromContext(c)
		rec, err := col.Create(c.RequestContext(), p, body)
		if err != nil {
			c.RespondError(err)
			return
		}
		c.SuccessWithMessage(rec, "created")
	}
}

func updateRecord(col service.Collection) uskup.HandlerFunc {
	return func(c *uskup.Context) {
		body, ok := bindBody(c)
		if !ok {
			return
		}
		p, _ := auth.FromContext(c)
		rec, err := col.Update(c.RequestContext(), p, c.Param("id"), body)
		if err != nil {
			c.RespondError(err)
			return
		}
		c.SuccessWithMessage(rec, "updated")
	}
}

func deleteRecord(col service.Collection) uskup.HandlerFunc {
	return func(c *uskup.Context) {
		p, _ := auth.FromContext(c)
		if err := col.Delete(c.RequestContext(), p, c.Param("id")); err != nil {
			c.RespondError(err)
			return
		}
		c.SuccessWithMessage(map[string]string{"id": c.Param("id")}, "deleted")
	}
}

// bindBody 读取 JSON 对象，失败时已响应 400
func bindBody(c *uskup.Context) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.RespondError(errors.ErrBadRequest.WithMessage("Invalid JSON body").WithError(err))
		return nil, false
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, true
}
