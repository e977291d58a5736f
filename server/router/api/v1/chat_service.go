package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/codeWithHak/sorted/plugin/agent"
	"github.com/codeWithHak/sorted/store"
)

// ─────────────────────────────────────────────────────────────────────────────
// Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// maxChatMessageLen caps the user message accepted by the chat endpoint.
	maxChatMessageLen = 2000

	// historyWindow is the number of recent messages replayed to the model.
	historyWindow = 50

	// titlePrefix marks the model-proposed thread title on the first line of
	// the first reply in a new thread.
	titlePrefix = "TITLE:"
)

// ─────────────────────────────────────────────────────────────────────────────
// Request / Response types
// ─────────────────────────────────────────────────────────────────────────────

type chatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

type threadResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count"`
	CreatedTs    int64  `json:"created_ts"`
	UpdatedTs    int64  `json:"updated_ts"`
}

type threadListResponse struct {
	Data       []threadResponse `json:"data"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

type chatMessageResponse struct {
	ID         string          `json:"id"`
	Role       string          `json:"role"`
	Content    string          `json:"content"`
	ActionCard json.RawMessage `json:"action_card"`
	CreatedTs  int64           `json:"created_ts"`
}

type chatMessageListResponse struct {
	Data       []chatMessageResponse `json:"data"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PerPage    int                   `json:"per_page"`
	TotalPages int                   `json:"total_pages"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Route registration (called from v1.go)
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) registerChatRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/chat")
	g.POST("", s.handleChat)
	g.GET("/threads", s.listChatThreads)
	g.GET("/threads/:uid/messages", s.listChatMessages)
}

// ─────────────────────────────────────────────────────────────────────────────
// Thread listing
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) listChatThreads(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	page, perPage := pagination(c, 20, 50)
	find := &store.FindChatThread{CreatorID: &user.Sub}
	total, err := s.Store.CountChatThreads(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	limit, offset := perPage, (page-1)*perPage
	find.Limit, find.Offset = &limit, &offset
	threads, err := s.Store.ListChatThreads(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := threadListResponse{
		Data:       make([]threadResponse, 0, len(threads)),
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
	}
	for _, t := range threads {
		count, err := s.Store.CountChatMessages(ctx, &store.FindChatMessage{ThreadID: t.ID})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		resp.Data = append(resp.Data, threadResponse{
			ID:           t.UID,
			Title:        t.Title,
			MessageCount: count,
			CreatedTs:    t.CreatedTs,
			UpdatedTs:    t.UpdatedTs,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) listChatMessages(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	thread, err := s.findOwnedThread(ctx, c.Param("uid"), user.Sub)
	if err != nil {
		return err
	}
	page, perPage := pagination(c, 50, 100)
	total, err := s.Store.CountChatMessages(ctx, &store.FindChatMessage{ThreadID: thread.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	limit, offset := perPage, (page-1)*perPage
	msgs, err := s.Store.ListChatMessages(ctx, &store.FindChatMessage{
		ThreadID: thread.ID,
		Limit:    &limit,
		Offset:   &offset,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := chatMessageListResponse{
		Data:       make([]chatMessageResponse, 0, len(msgs)),
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
	}
	for _, m := range msgs {
		var card json.RawMessage
		if m.ActionSummary != "" {
			card = json.RawMessage(m.ActionSummary)
		}
		resp.Data = append(resp.Data, chatMessageResponse{
			ID:         m.UID,
			Role:       m.Role,
			Content:    m.Content,
			ActionCard: card,
			CreatedTs:  m.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) findOwnedThread(ctx context.Context, uid, creatorID string) (*store.ChatThread, error) {
	thread, err := s.Store.GetChatThread(ctx, &store.FindChatThread{UID: &uid, CreatorID: &creatorID})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if thread == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "thread not found")
	}
	return thread, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Main chat handler (SSE)
// ─────────────────────────────────────────────────────────────────────────────

func (s *APIV1Service) handleChat(c *echo.Context) error {
	if s.Profile.OpenRouterAPIKey == "" {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "chat is not configured (missing OPENROUTER_API_KEY)")
	}

	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" || utf8.RuneCountInString(message) > maxChatMessageLen {
		return echo.NewHTTPError(http.StatusBadRequest, "message must be 1-2000 characters")
	}

	ctx := c.Request().Context()

	// ── 1. Resolve or create the thread ──────────────────────────────────────
	var thread *store.ChatThread
	isNewThread := req.ThreadID == ""
	if isNewThread {
		thread, err = s.Store.CreateChatThread(ctx, &store.ChatThread{
			UID:       shortuuid.New(),
			CreatorID: user.Sub,
			Title:     "New conversation",
		})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		thread, err = s.findOwnedThread(ctx, req.ThreadID, user.Sub)
		if err != nil {
			return err
		}
	}

	// ── 2. Persist the user message ──────────────────────────────────────────
	if _, err := s.Store.CreateChatMessage(ctx, &store.ChatMessage{
		UID:      uuid.NewString(),
		ThreadID: thread.ID,
		Role:     "user",
		Content:  message,
	}); err != nil {
		slog.Warn("failed to persist user message", "err", err)
	}
	if _, err := s.Store.UpdateChatThread(ctx, &store.UpdateChatThread{UID: thread.UID}); err != nil {
		slog.Warn("failed to touch thread", "err", err)
	}

	// ── 3. Load recent history ───────────────────────────────────────────────
	history, err := s.loadHistory(ctx, thread.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// ── 4. Set up SSE ────────────────────────────────────────────────────────
	rw := c.Response()
	rw.Header().Set("Content-Type", "text/event-stream")
	rw.Header().Set("Cache-Control", "no-cache")
	rw.Header().Set("Connection", "keep-alive")
	rw.Header().Set("X-Accel-Buffering", "no")
	rw.WriteHeader(http.StatusOK)

	emit := func(event string, obj any) {
		if ctx.Err() != nil {
			return
		}
		data, _ := json.Marshal(obj)
		fmt.Fprintf(rw, "event: %s\ndata: %s\n\n", event, data)
		if f, ok := rw.(http.Flusher); ok {
			f.Flush()
		}
	}

	messageID := uuid.NewString()
	emit("stream_start", map[string]any{
		"thread_id":  thread.UID,
		"message_id": messageID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})

	// ── 5. Run the agent loop ────────────────────────────────────────────────
	tctx := agent.NewTurnContext(user.Sub, thread.UID)
	var full strings.Builder
	tokenIndex := 0
	finishReason := "stop"

	for ev, err := range s.runner.Run(ctx, history, tctx) {
		if err != nil {
			finishReason = "error"
			msg := "I'm having trouble right now. Please try again in a moment."
			if errors.Is(err, agent.ErrRateLimited) {
				msg = "I'm a bit busy right now. Please try again in a moment."
			}
			slog.Error("agent run failed", "thread", thread.UID, "err", err)
			emit("error", map[string]any{
				"code":      "AGENT_ERROR",
				"message":   msg,
				"retryable": true,
			})
			if full.Len() == 0 {
				full.WriteString(msg)
			}
			break
		}
		switch ev := ev.(type) {
		case agent.TextDeltaEvent:
			emit("text_token", map[string]any{"token": ev.Delta, "index": tokenIndex})
			tokenIndex++
			full.WriteString(ev.Delta)
		case agent.ToolResultEvent:
			if !tctx.Modified {
				continue
			}
			for _, action := range tctx.Flush() {
				emit("task_action", map[string]any{
					"action_type": string(action.Kind),
					"task_id":     action.TaskID,
					"task_title":  action.TaskTitle,
					"task_count":  1,
				})
			}
		}
	}

	// ── 6. Title extraction on new threads ───────────────────────────────────
	fullText := full.String()
	if isNewThread {
		if title, rest, ok := extractTitle(fullText); ok {
			fullText = rest
			// Persistence context survives client disconnect.
			if _, err := s.Store.UpdateChatThread(context.WithoutCancel(ctx), &store.UpdateChatThread{
				UID:   thread.UID,
				Title: &title,
			}); err != nil {
				slog.Warn("failed to set thread title", "err", err)
			}
		}
	}
	fullText = strings.TrimSpace(fullText)

	// ── 7. Persist the assistant message ─────────────────────────────────────
	if fullText != "" {
		pctx := context.WithoutCancel(ctx)
		summary := ""
		if actions := tctx.Actions(); len(actions) > 0 {
			if data, err := json.Marshal(actions); err == nil {
				summary = string(data)
			}
		}
		if _, err := s.Store.CreateChatMessage(pctx, &store.ChatMessage{
			UID:           messageID,
			ThreadID:      thread.ID,
			Role:          "assistant",
			Content:       fullText,
			ActionSummary: summary,
		}); err != nil {
			slog.Warn("failed to persist assistant message", "err", err)
		}
		if _, err := s.Store.UpdateChatThread(pctx, &store.UpdateChatThread{UID: thread.UID}); err != nil {
			slog.Warn("failed to touch thread", "err", err)
		}
	}

	emit("stream_end", map[string]any{
		"message_id":    messageID,
		"finish_reason": finishReason,
		"full_text":     fullText,
	})
	return nil
}

// loadHistory returns the most recent messages of a thread in chronological
// order. The tail is fetched newest-first then reversed so that long threads
// keep their recent context within the window.
func (s *APIV1Service) loadHistory(ctx context.Context, threadID int32) ([]agent.HistoryMessage, error) {
	limit := historyWindow
	msgs, err := s.Store.ListChatMessages(ctx, &store.FindChatMessage{
		ThreadID:  threadID,
		Limit:     &limit,
		OrderDesc: true,
	})
	if err != nil {
		return nil, err
	}
	history := make([]agent.HistoryMessage, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		history = append(history, agent.HistoryMessage{
			Role:    msgs[i].Role,
			Content: msgs[i].Content,
		})
	}
	return history, nil
}

// extractTitle splits a model-proposed title off the first line of a reply.
// Returns the title, the remaining text and whether a title was found.
func extractTitle(text string) (string, string, bool) {
	if !strings.HasPrefix(text, titlePrefix) {
		return "", text, false
	}
	line, rest, _ := strings.Cut(text, "\n")
	title := strings.TrimSpace(strings.TrimPrefix(line, titlePrefix))
	if title == "" {
		return "", text, false
	}
	if utf8.RuneCountInString(title) > 200 {
		title = string([]rune(title)[:200])
	}
	return title, strings.TrimSpace(rest), true
}
