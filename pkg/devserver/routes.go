package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"tableflip.dev/backstage/pkg/entity"
)

func (s *Server) routes() {
	s.e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	auth := s.e.Group("/v1/auth")
	auth.POST("/login", s.login)
	auth.POST("/refresh-token", s.refreshToken)
	auth.POST("/logout", s.logout)
	auth.GET("/me", s.me, s.requireAuth)

	for _, res := range entity.All() {
		g := s.e.Group(res.Path, s.requireAuth)
		g.GET("", s.list(res))
		g.GET("/:id", s.get(res))
		if res.ReadOnly {
			continue
		}
		g.POST("", s.create(res))
		g.PUT("/:id", s.update(res, false))
		g.PATCH("/:id", s.update(res, true))
		g.DELETE("/:id", s.remove(res))
		for _, t := range res.Toggles {
			if t.Suffix != "" {
				g.Add(http.MethodPatch, "/:id"+t.Suffix, s.update(res, true))
			}
		}
	}
}

func (s *Server) list(res entity.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		page := atoiDefault(c.QueryParam("page"), 1)
		limit := atoiDefault(c.QueryParam("limit"), 10)
		filters := map[string]string{}
		for _, f := range res.Filters {
			if v := c.QueryParam(f.Name); v != "" {
				filters[f.Name] = v
			}
		}

		s.mu.Lock()
		rows, p := s.collections[res.Name].query(c.QueryParam("search"), filters, page, limit)
		s.mu.Unlock()

		key := res.RowsKey
		if key == "" {
			key = "items"
		}
		return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{key: rows, "pagination": p}})
	}
}

func (s *Server) get(res entity.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		col := s.collections[res.Name]
		i := col.index(c.Param("id"))
		var doc entity.Entity
		if i >= 0 {
			doc = col.docs[i].Clone()
		}
		s.mu.Unlock()
		if doc == nil {
			return echo.NewHTTPError(http.StatusNotFound, res.Title+" not found")
		}
		return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"data": doc}})
	}
}

func (s *Server) create(res entity.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := decodeBody(c)
		if err != nil {
			return err
		}
		delete(body, "_id")

		s.mu.Lock()
		defer s.mu.Unlock()
		col := s.collections[res.Name]
		if col.duplicate(body, "") {
			return echo.NewHTTPError(http.StatusConflict, "Month already exists")
		}
		doc := col.insert(body)
		return c.JSON(http.StatusCreated, echo.Map{"data": echo.Map{"data": doc.Clone()}})
	}
}

func (s *Server) update(res entity.Resource, merge bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := decodeBody(c)
		if err != nil {
			return err
		}
		id := c.Param("id")

		s.mu.Lock()
		defer s.mu.Unlock()
		col := s.collections[res.Name]
		i := col.index(id)
		if i < 0 {
			return echo.NewHTTPError(http.StatusNotFound, res.Title+" not found")
		}
		if col.duplicate(body, id) {
			return echo.NewHTTPError(http.StatusConflict, "Month already exists")
		}
		doc := col.docs[i]
		if !merge {
			doc = entity.Entity{"_id": id, "createdAt": doc["createdAt"]}
		}
		for k, v := range body {
			if k != "_id" {
				doc[k] = v
			}
		}
		col.docs[i] = doc
		return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"data": doc.Clone()}})
	}
}

func (s *Server) remove(res entity.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if !entity.ValidObjectID(id) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		col := s.collections[res.Name]
		i := col.index(id)
		if i < 0 {
			return echo.NewHTTPError(http.StatusNotFound, res.Title+" not found")
		}
		col.docs = append(col.docs[:i], col.docs[i+1:]...)
		return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"message": res.Title + " deleted"}})
	}
}

func decodeBody(c echo.Context) (entity.Entity, error) {
	body := entity.Entity{}
	if c.Request().Body == nil {
		return body, nil
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	return body, nil
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
