package handler

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/internal/store"
	"habittracker/internal/tmpl"
	"habittracker/internal/view"
	"habittracker/pkg/logger"
	"habittracker/pkg/metrics"
	"habittracker/pkg/util"
)

const (
	addDedupScope    = "add_habit"
	errNameRequired  = "name_required"
	pageDashboard    = "dashboard.html"
	pageHabits       = "habits.html"
	outcomeApplied   = "applied"
	outcomeRejected  = "rejected"
	outcomeDuplicate = "duplicate"
)

// PageData is shared by the dashboard and the all-habits page.
type PageData struct {
	Title      string
	Active     string
	FormToken  string
	Redirect   string
	Error      string
	Categories []string

	Habits   []model.Habit
	Progress view.Progress

	ShowReset bool

	Filter      view.FilterMode
	Sort        view.SortKey
	FilterModes []view.FilterMode
	SortKeys    []view.SortKey
}

type HabitHandler struct {
	store     *store.Store
	templates *tmpl.Templates
	tokens    *util.FormTokens
	dedup     util.OnceGuard
	logger    *zap.Logger
}

// NewHabitHandler panics with store.ErrNilStore when s is nil; a page
// without a store is a wiring bug, not a request error.
func NewHabitHandler(s *store.Store, templates *tmpl.Templates, tokens *util.FormTokens, dedup util.OnceGuard, logger *zap.Logger) *HabitHandler {
	if s == nil {
		panic(store.ErrNilStore)
	}
	return &HabitHandler{
		store:     s,
		templates: templates,
		tokens:    tokens,
		dedup:     dedup,
		logger:    logger,
	}
}

// Dashboard renders progress and every habit in collection order.
func (h *HabitHandler) Dashboard(c *gin.Context) {
	state := h.store.GetState()
	progress := view.Aggregate(state)

	data, ok := h.pageData(c, "Dashboard", "dashboard", "/")
	if !ok {
		return
	}
	data.Habits = state.Habits()
	data.Progress = progress
	data.ShowReset = progress.Completed > 0

	h.render(c, pageDashboard, data)
}

// ListPage renders the filtered and sorted management view.
func (h *HabitHandler) ListPage(c *gin.Context) {
	filter := view.ParseFilterMode(c.Query("filter"))
	sortKey := view.ParseSortKey(c.Query("sort"))
	state := h.store.GetState()

	data, ok := h.pageData(c, "All Habits", "habits", listPath(filter, sortKey))
	if !ok {
		return
	}
	data.Habits = view.FilterAndSort(state, filter, sortKey)
	data.Progress = view.Aggregate(state)
	data.Filter = filter
	data.Sort = sortKey
	data.FilterModes = view.FilterModes
	data.SortKeys = view.SortKeys

	h.render(c, pageHabits, data)
}

func (h *HabitHandler) AddHabit(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	name := c.PostForm("name")
	log.Info("AddHabit request received",
		zap.String("name", name),
		zap.String("client_ip", c.ClientIP()),
	)

	target := safeRedirect(c.PostForm("redirect"))
	if strings.TrimSpace(name) == "" {
		log.Warn("AddHabit: name is required")
		metrics.IncrementHabitAction(model.AddHabit{}.Kind(), outcomeRejected)
		c.Redirect(http.StatusSeeOther, withError(target, errNameRequired))
		return
	}

	action := model.AddHabit{
		Name:     name,
		Category: c.PostForm("category"),
		Target:   model.ParseTarget(c.PostForm("target")),
	}

	if tokenID := c.GetString(util.FormTokenIDKey); tokenID != "" && h.dedup != nil {
		if !h.dedup.AcquireOnce(c.Request.Context(), addDedupScope, submissionKey(tokenID, action)) {
			log.Info("AddHabit: duplicate submission skipped", zap.String("token_id", tokenID))
			metrics.IncrementHabitAction(action.Kind(), outcomeDuplicate)
			metrics.IncrementDuplicateSubmission()
			c.Redirect(http.StatusSeeOther, target)
			return
		}
	}

	_, next, err := h.dispatch(action)
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			log.Warn("AddHabit: rejected", zap.Error(err))
			c.Redirect(http.StatusSeeOther, withError(target, errNameRequired))
			return
		}
		log.Error("AddHabit: dispatch failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to add habit")
		return
	}

	log.Info("AddHabit: success",
		zap.Int("target", action.Target),
		zap.Int("habit_count", next.Len()),
	)
	c.Redirect(http.StatusSeeOther, target)
}

func (h *HabitHandler) ToggleHabit(c *gin.Context) {
	h.handleByID(c, "ToggleHabit", func(id string) model.Action { return model.ToggleHabit{ID: id} })
}

func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	h.handleByID(c, "DeleteHabit", func(id string) model.Action { return model.DeleteHabit{ID: id} })
}

func (h *HabitHandler) ResetHabits(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	log.Info("ResetHabits request received", zap.String("client_ip", c.ClientIP()))

	if _, _, err := h.dispatch(model.ResetHabits{}); err != nil {
		log.Error("ResetHabits: dispatch failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to reset habits")
		return
	}

	log.Info("ResetHabits: success")
	c.Redirect(http.StatusSeeOther, safeRedirect(c.PostForm("redirect")))
}

// handleByID covers toggle and delete. Unknown ids are not an error.
func (h *HabitHandler) handleByID(c *gin.Context, op string, build func(id string) model.Action) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id := c.Param("id")
	log.Info(op+" request received",
		zap.String("habit_id", id),
		zap.String("client_ip", c.ClientIP()),
	)

	before, _, err := h.dispatch(build(id))
	if err != nil {
		log.Error(op+": dispatch failed", zap.String("habit_id", id), zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to update habit")
		return
	}

	if !before.Contains(id) {
		log.Warn(op+": no habit with id, nothing changed", zap.String("habit_id", id))
	} else {
		log.Info(op+": success", zap.String("habit_id", id))
	}
	c.Redirect(http.StatusSeeOther, safeRedirect(c.PostForm("redirect")))
}

// ListHabitsJSON returns the same filtered and sorted view as ListPage.
func (h *HabitHandler) ListHabitsJSON(c *gin.Context) {
	filter := view.ParseFilterMode(c.Query("filter"))
	sortKey := view.ParseSortKey(c.Query("sort"))
	state := h.store.GetState()

	c.JSON(http.StatusOK, gin.H{
		"habits":   view.FilterAndSort(state, filter, sortKey),
		"progress": view.Aggregate(state),
		"filter":   filter,
		"sort":     sortKey,
	})
}

func (h *HabitHandler) ProgressJSON(c *gin.Context) {
	p := view.Aggregate(h.store.GetState())
	c.JSON(http.StatusOK, gin.H{
		"completed":  p.Completed,
		"total":      p.Total,
		"percentage": p.Percentage,
		"remaining":  p.Remaining(),
	})
}

func (h *HabitHandler) dispatch(action model.Action) (before, after model.HabitCollection, err error) {
	before, after, err = h.store.Transition(action)
	if err != nil {
		metrics.IncrementHabitAction(action.Kind(), outcomeRejected)
		return before, after, err
	}
	metrics.IncrementHabitAction(action.Kind(), outcomeApplied)
	return before, after, nil
}

// submissionKey identifies one add submission: the page's form token plus
// the normalized fields. A resubmitted form maps to the same key; a
// different habit posted from the same page does not.
func submissionKey(tokenID string, a model.AddHabit) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		strings.TrimSpace(a.Name),
		strings.TrimSpace(a.Category),
		strconv.Itoa(a.Target),
	}, "\x00")))
	return tokenID + ":" + hex.EncodeToString(sum[:16])
}

func (h *HabitHandler) pageData(c *gin.Context, title, active, redirect string) (PageData, bool) {
	token, err := h.tokens.Issue()
	if err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Error("Failed to issue form token", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to render page")
		return PageData{}, false
	}

	errCode := c.Query("error")
	if errCode != errNameRequired {
		errCode = ""
	}

	return PageData{
		Title:      title,
		Active:     active,
		FormToken:  token,
		Redirect:   redirect,
		Error:      errCode,
		Categories: model.CategorySuggestions,
	}, true
}

func (h *HabitHandler) render(c *gin.Context, name string, data PageData) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Error("Template render failed",
			zap.String("template", name),
			zap.Error(err),
		)
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func listPath(filter view.FilterMode, sortKey view.SortKey) string {
	q := url.Values{}
	if filter != view.FilterAll {
		q.Set("filter", string(filter))
	}
	if sortKey != view.SortByName {
		q.Set("sort", string(sortKey))
	}
	if len(q) == 0 {
		return "/habits"
	}
	return "/habits?" + q.Encode()
}

// safeRedirect only allows the two pages, keeping the list page's
// filter and sort. Anything else goes to the dashboard.
func safeRedirect(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "/"
	}
	switch u.Path {
	case "/habits":
		q := u.Query()
		return listPath(view.ParseFilterMode(q.Get("filter")), view.ParseSortKey(q.Get("sort")))
	default:
		return "/"
	}
}

func withError(target, code string) string {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "error=" + url.QueryEscape(code)
}
