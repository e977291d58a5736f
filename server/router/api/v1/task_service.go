package v1

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/codeWithHak/sorted/store"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type taskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
	CreatedTs   int64  `json:"created_ts"`
	UpdatedTs   int64  `json:"updated_ts"`
}

type taskListResponse struct {
	Data       []taskResponse `json:"data"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

func toTaskResponse(t *store.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedTs:   t.CreatedTs,
		UpdatedTs:   t.UpdatedTs,
	}
}

func (s *APIV1Service) registerTaskRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/tasks")
	g.POST("", s.createTask)
	g.GET("", s.listTasks)
	g.GET("/:id", s.getTask)
	g.PATCH("/:id", s.updateTask)
	g.DELETE("/:id", s.deleteTask)
}

func validTitle(title string) (string, bool) {
	trimmed := strings.TrimSpace(title)
	return trimmed, trimmed != "" && utf8.RuneCountInString(trimmed) <= 200
}

func (s *APIV1Service) createTask(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	title, ok := validTitle(req.Title)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "title must be 1-200 characters")
	}
	description := strings.TrimSpace(req.Description)
	if utf8.RuneCountInString(description) > 2000 {
		return echo.NewHTTPError(http.StatusBadRequest, "description must be at most 2000 characters")
	}
	task, err := s.Store.CreateTask(c.Request().Context(), &store.Task{
		ID:          uuid.NewString(),
		CreatorID:   user.Sub,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (s *APIV1Service) listTasks(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	page, perPage := pagination(c, 20, 100)
	find := &store.FindTask{CreatorID: &user.Sub}
	switch c.QueryParam("completed") {
	case "true":
		v := true
		find.Completed = &v
	case "false":
		v := false
		find.Completed = &v
	}
	ctx := c.Request().Context()
	total, err := s.Store.CountTasks(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	limit, offset := perPage, (page-1)*perPage
	find.Limit, find.Offset = &limit, &offset
	list, err := s.Store.ListTasks(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := taskListResponse{
		Data:       make([]taskResponse, 0, len(list)),
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
	}
	for _, t := range list {
		resp.Data = append(resp.Data, toTaskResponse(t))
	}
	return c.JSON(http.StatusOK, resp)
}

// findOwnedTask resolves :id to an owned, active task. Cross-owner access,
// malformed ids and deleted rows all map to 404.
func (s *APIV1Service) findOwnedTask(c *echo.Context, creatorID string) (*store.Task, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	idStr := id.String()
	task, err := s.Store.GetTask(c.Request().Context(), &store.FindTask{ID: &idStr, CreatorID: &creatorID})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if task == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	return task, nil
}

func (s *APIV1Service) getTask(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	task, err := s.findOwnedTask(c, user.Sub)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

func (s *APIV1Service) updateTask(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	task, err := s.findOwnedTask(c, user.Sub)
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	update := &store.UpdateTask{ID: task.ID, CreatorID: user.Sub}
	if req.Title != nil {
		title, ok := validTitle(*req.Title)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "title must be 1-200 characters")
		}
		update.Title = &title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if utf8.RuneCountInString(description) > 2000 {
			return echo.NewHTTPError(http.StatusBadRequest, "description must be at most 2000 characters")
		}
		update.Description = &description
	}
	update.Completed = req.Completed
	if update.Title == nil && update.Description == nil && update.Completed == nil {
		return c.JSON(http.StatusOK, toTaskResponse(task))
	}
	updated, err := s.Store.UpdateTask(c.Request().Context(), update)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if updated == nil {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	return c.JSON(http.StatusOK, toTaskResponse(updated))
}

func (s *APIV1Service) deleteTask(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	task, err := s.findOwnedTask(c, user.Sub)
	if err != nil {
		return err
	}
	deleted := store.Deleted
	if _, err := s.Store.UpdateTask(c.Request().Context(), &store.UpdateTask{
		ID:        task.ID,
		CreatorID: user.Sub,
		RowStatus: &deleted,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
