package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/tools"

	"github.com/codeWithHak/sorted/store"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
)

// ErrorCode names the failure modes a tool reports back to the model.
type ErrorCode string

const (
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeInvalidID       ErrorCode = "INVALID_ID"
	CodeNotFound        ErrorCode = "NOT_FOUND"
)

// ToolError is the structured error half of a tool result. It is relayed to
// the model as JSON, never raised: the model must be able to read it and
// explain the failure conversationally.
type ToolError struct {
	Code       ErrorCode `json:"error"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion"`
}

// taskPayload is the success half of a tool result for a single task.
type taskPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
	CreatedTs   int64  `json:"created_ts"`
	UpdatedTs   int64  `json:"updated_ts"`
}

// taskListPayload is the success half for queries and bulk operations.
type taskListPayload struct {
	Tasks []taskPayload `json:"tasks"`
	Total int           `json:"total"`
}

func toPayload(t *store.Task) taskPayload {
	return taskPayload{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedTs:   t.CreatedTs,
		UpdatedTs:   t.UpdatedTs,
	}
}

// encodeResult renders the typed result sum as the text blob sent to the
// model: the error when present, the payload otherwise.
func encodeResult(payload any, terr *ToolError) (string, error) {
	if terr != nil {
		data, err := json.Marshal(terr)
		return string(data), err
	}
	data, err := json.Marshal(payload)
	return string(data), err
}

func validateTitle(title string) (string, *ToolError) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", &ToolError{CodeValidationError, "Title cannot be empty.", "Provide a task title."}
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLen {
		return "", &ToolError{CodeValidationError, "Title too long (max 200 characters).", "Shorten the task title."}
	}
	return trimmed, nil
}

func validateDescription(description string) *ToolError {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return &ToolError{CodeValidationError, "Description too long (max 2000 characters).", "Shorten the description."}
	}
	return nil
}

func parseTaskID(raw string) (string, *ToolError) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", &ToolError{CodeInvalidID, "Invalid task ID format.", "Use list_tasks to find valid task IDs."}
	}
	return id.String(), nil
}

func notFound() *ToolError {
	return &ToolError{CodeNotFound, "No task found with that ID.", "Use list_tasks to find valid task IDs."}
}

func parseArgsError() *ToolError {
	return &ToolError{CodeValidationError, "Failed to parse tool arguments.", "Pass a JSON object with the documented fields."}
}

// ─────────────────────────────────────────────────────────────────────────────
// add_task
// ─────────────────────────────────────────────────────────────────────────────

type addTaskTool struct {
	store *store.Store
	tctx  *TurnContext
}

func (t *addTaskTool) Name() string { return "add_task" }
func (t *addTaskTool) Description() string {
	return "Create a new task for the user. Input must be a JSON object with `title` (string, 1-200 chars) and optional `description` (string, max 2000 chars)."
}

func (t *addTaskTool) Call(ctx context.Context, input string) (string, error) {
	slog.Info("[AGENT TOOL CALL]", "tool", t.Name(), "input", input)
	var args struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return encodeResult(nil, parseArgsError())
	}
	payload, terr, err := t.run(ctx, args.Title, args.Description)
	if err != nil {
		return "", err
	}
	return encodeResult(payload, terr)
}

func (t *addTaskTool) run(ctx context.Context, title, description string) (any, *ToolError, error) {
	trimmed, terr := validateTitle(title)
	if terr != nil {
		return nil, terr, nil
	}
	description = strings.TrimSpace(description)
	if terr := validateDescription(description); terr != nil {
		return nil, terr, nil
	}
	task, err := t.store.CreateTask(ctx, &store.Task{
		ID:          uuid.NewString(),
		CreatorID:   t.tctx.UserID,
		Title:       trimmed,
		Description: description,
	})
	if err != nil {
		return nil, nil, err
	}
	t.tctx.Record(ActionCreated, task.ID, task.Title)
	return toPayload(task), nil, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// list_tasks
// ─────────────────────────────────────────────────────────────────────────────

type listTasksTool struct {
	store *store.Store
	tctx  *TurnContext
}

func (t *listTasksTool) Name() string { return "list_tasks" }
func (t *listTasksTool) Description() string {
	return "List the user's tasks, newest first. Input is a JSON object with optional `completed` (boolean): true = completed only, false = pending only, omit = all tasks."
}

func (t *listTasksTool) Call(ctx context.Context, input string) (string, error) {
	slog.Info("[AGENT TOOL CALL]", "tool", t.Name(), "input", input)
	var args struct {
		Completed *bool `json:"completed"`
	}
	if input != "" {
		if err := json.Unmarshal([]byte(input), &args); err != nil {
			return encodeResult(nil, parseArgsError())
		}
	}
	payload, terr, err := t.run(ctx, args.Completed)
	if err != nil {
		return "", err
	}
	return encodeResult(payload, terr)
}

func (t *listTasksTool) run(ctx context.Context, completed *bool) (any, *ToolError, error) {
	list, err := t.store.ListTasks(ctx, &store.FindTask{
		CreatorID: &t.tctx.UserID,
		Completed: completed,
	})
	if err != nil {
		return nil, nil, err
	}
	payload := taskListPayload{Tasks: make([]taskPayload, 0, len(list)), Total: len(list)}
	for _, task := range list {
		payload.Tasks = append(payload.Tasks, toPayload(task))
	}
	return payload, nil, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// complete_task
// ─────────────────────────────────────────────────────────────────────────────

type completeTaskTool struct {
	store *store.Store
	tctx  *TurnContext
}

func (t *completeTaskTool) Name() string { return "complete_task" }
func (t *completeTaskTool) Description() string {
	return "Mark a task as completed. Input must be a JSON object with `task_id` (string UUID)."
}

func (t *completeTaskTool) Call(ctx context.Context, input string) (string, error) {
	slog.Info("[AGENT TOOL CALL]", "tool", t.Name(), "input", input)
	var args struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return encodeResult(nil, parseArgsError())
	}
	payload, terr, err := t.run(ctx, args.TaskID)
	if err != nil {
		return "", err
	}
	return encodeResult(payload, terr)
}

func (t *completeTaskTool) run(ctx context.Context, taskID string) (any, *ToolError, error) {
	id, terr := parseTaskID(taskID)
	if terr != nil {
		return nil, terr, nil
	}
	completed := true
	task, err := t.store.UpdateTask(ctx, &store.UpdateTask{
		ID:        id,
		CreatorID: t.tctx.UserID,
		Completed: &completed,
	})
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, notFound(), nil
	}
	t.tctx.Record(ActionCompleted, task.ID, task.Title)
	return toPayload(task), nil, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// update_task
// ─────────────────────────────────────────────────────────────────────────────

type updateTaskTool struct {
	store *store.Store
	tctx  *TurnContext
}

func (t *updateTaskTool) Name() string { return "update_task" }
func (t *updateTaskTool) Description() string {
	return "Update a task's title or description. Input must be a JSON object with `task_id` (string UUID) and at least one of `title` (string, 1-200 chars) or `description` (string, max 2000 chars)."
}

func (t *updateTaskTool) Call(ctx context.Context, input string) (string, error) {
	slog.Info("[AGENT TOOL CALL]", "tool", t.Name(), "input", input)
	var args struct {
		TaskID      string  `json:"task_id"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return encodeResult(nil, parseArgsError())
	}
	payload, terr, err := t.run(ctx, args.TaskID, args.Title, args.Description)
	if err != nil {
		return "", err
	}
	return encodeResult(payload, terr)
}

func (t *updateTaskTool) run(ctx context.Context, taskID string, title, description *string) (any, *ToolError, error) {
	id, terr := parseTaskID(taskID)
	if terr != nil {
		return nil, terr, nil
	}
	update := &store.UpdateTask{ID: id, CreatorID: t.tctx.UserID}
	if title != nil {
		trimmed, terr := validateTitle(*title)
		if terr != nil {
			return nil, terr, nil
		}
		update.Title = &trimmed
	}
	if description != nil {
		trimmed := strings.TrimSpace(*description)
		if terr := validateDescription(trimmed); terr != nil {
			return nil, terr, nil
		}
		update.Description = &trimmed
	}
	task, err := t.store.UpdateTask(ctx, update)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, notFound(), nil
	}
	t.tctx.Record(ActionUpdated, task.ID, task.Title)
	return toPayload(task), nil, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// delete_task
// ─────────────────────────────────────────────────────────────────────────────

type deleteTaskTool struct {
	store *store.Store
	tctx  *TurnContext
}

func (t *deleteTaskTool) Name() string { return "delete_task" }
func (t *deleteTaskTool) Description() string {
	return "Remove a task from the user's list. Input must be a JSON object with `task_id` (string UUID)."
}

func (t *deleteTaskTool) Call(ctx context.Context, input string) (string, error) {
	slog.Info("[AGENT TOOL CALL]", "tool", t.Name(), "input", input)
	var args struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return encodeResult(nil, parseArgsError())
	}
	payload, terr, err := t.run(ctx, args.TaskID)
	if err != nil {
		return "", err
	}
	return encodeResult(payload, terr)
}

func (t *deleteTaskTool) run(ctx context.Context, taskID string) (any, *ToolError, error) {
	id, terr := parseTaskID(taskID)
	if terr != nil {
		return nil, terr, nil
	}
	deleted := store.Deleted
	task, err := t.store.UpdateTask(ctx, &store.UpdateTask{
		ID:        id,
		CreatorID: t.tctx.UserID,
		RowStatus: &deleted,
	})
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		// Covers foreign-owned and already-deleted ids alike: both are
		// indistinguishable from nonexistence.
		return nil, &ToolError{CodeNotFound, "No task found with that ID.", "The task may have already been deleted. Try listing your tasks."}, nil
	}
	t.tctx.Record(ActionDeleted, task.ID, task.Title)
	return toPayload(task), nil, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// delete_all_tasks
// ─────────────────────────────────────────────────────────────────────────────

type deleteAllTasksTool struct {
	store *store.Store
	tctx  *TurnContext
}

func (t *deleteAllTasksTool) Name() string { return "delete_all_tasks" }
func (t *deleteAllTasksTool) Description() string {
	return "Delete ALL of the user's tasks at once. Use when the user asks to clear or delete everything. Input is an empty JSON object: {}"
}

func (t *deleteAllTasksTool) Call(ctx context.Context, input string) (string, error) {
	slog.Info("[AGENT TOOL CALL]", "tool", t.Name(), "input", input)
	payload, terr, err := t.run(ctx)
	if err != nil {
		return "", err
	}
	return encodeResult(payload, terr)
}

func (t *deleteAllTasksTool) run(ctx context.Context) (any, *ToolError, error) {
	list, err := t.store.ListTasks(ctx, &store.FindTask{CreatorID: &t.tctx.UserID})
	if err != nil {
		return nil, nil, err
	}
	deleted := store.Deleted
	payload := taskListPayload{Tasks: make([]taskPayload, 0, len(list))}
	// Each row is its own commit. On failure, the ledger keeps exactly the
	// rows deleted so far; partial application is the documented behavior.
	for _, task := range list {
		row, err := t.store.UpdateTask(ctx, &store.UpdateTask{
			ID:        task.ID,
			CreatorID: t.tctx.UserID,
			RowStatus: &deleted,
		})
		if err != nil {
			return nil, nil, err
		}
		if row == nil {
			continue
		}
		t.tctx.Record(ActionDeleted, row.ID, row.Title)
		payload.Tasks = append(payload.Tasks, toPayload(row))
	}
	payload.Total = len(payload.Tasks)
	return payload, nil, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Toolset
// ─────────────────────────────────────────────────────────────────────────────

// NewToolset binds the six task tools to one turn's context.
func NewToolset(st *store.Store, tctx *TurnContext) map[string]tools.Tool {
	return map[string]tools.Tool{
		"add_task":         &addTaskTool{store: st, tctx: tctx},
		"list_tasks":       &listTasksTool{store: st, tctx: tctx},
		"complete_task":    &completeTaskTool{store: st, tctx: tctx},
		"update_task":      &updateTaskTool{store: st, tctx: tctx},
		"delete_task":      &deleteTaskTool{store: st, tctx: tctx},
		"delete_all_tasks": &deleteAllTasksTool{store: st, tctx: tctx},
	}
}

// ToolDefs returns the OpenAI-compatible tool schema sent to the model.
func ToolDefs() []map[string]any {
	return []map[string]any{
		buildToolDef("add_task", "Create a new task for the user.", map[string]any{
			"title":       map[string]any{"type": "string", "description": "Task title, 1-200 characters"},
			"description": map[string]any{"type": "string", "description": "Optional task description, max 2000 characters"},
		}, []string{"title"}),
		buildToolDef("list_tasks", "List the user's tasks with optional completion filtering.", map[string]any{
			"completed": map[string]any{"type": "boolean", "description": "true = completed only, false = pending only, omit = all tasks"},
		}, []string{}),
		buildToolDef("complete_task", "Mark a task as completed.", map[string]any{
			"task_id": map[string]any{"type": "string", "description": "UUID of the task to complete"},
		}, []string{"task_id"}),
		buildToolDef("update_task", "Update a task's title or description.", map[string]any{
			"task_id":     map[string]any{"type": "string", "description": "UUID of the task to update"},
			"title":       map[string]any{"type": "string", "description": "New title, 1-200 characters"},
			"description": map[string]any{"type": "string", "description": "New description, max 2000 characters"},
		}, []string{"task_id"}),
		buildToolDef("delete_task", "Remove a task from the user's list.", map[string]any{
			"task_id": map[string]any{"type": "string", "description": "UUID of the task to delete"},
		}, []string{"task_id"}),
		buildToolDef("delete_all_tasks", "Delete ALL of the user's tasks at once. No parameters needed.", map[string]any{}, []string{}),
	}
}

// buildToolDef constructs an OpenAI-compatible tool definition map.
func buildToolDef(name, description string, properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        name,
			"description": description,
			"parameters": map[string]any{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		},
	}
}
