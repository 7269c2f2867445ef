package view

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderLoginPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.Render(rr, "pages/login.html", TemplateData{Title: "Sign in", CSRFToken: "tok"})
	require.NoError(t, err)

	body := rr.Body.String()
	assert.Contains(t, body, "Sign in")
	assert.Contains(t, body, `name="csrf_token"`)
	assert.Contains(t, body, `value="tok"`)
}

func TestRenderStatusSetsHeadersBeforeStatus(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.RenderStatus(rr, 400, "pages/login.html", TemplateData{Title: "Sign in"})
	require.NoError(t, err)

	assert.Equal(t, 400, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "Sign in")
}

func TestRenderStatusUnknownTemplateWritesNothing(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.RenderStatus(rr, 500, "pages/nope.html", TemplateData{})
	require.Error(t, err)

	assert.Equal(t, 200, rr.Code, "recorder default code means WriteHeader was never called")
	assert.Empty(t, rr.Body.String())
	assert.Empty(t, rr.Header().Get("Content-Type"))
}

func TestRenderHomeIncludesSessionWatcher(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.Render(rr, "pages/home.html", TemplateData{Title: "Meridian LMS", Data: map[string]any{}})
	require.NoError(t, err)

	if !strings.Contains(rr.Body.String(), "session-watch.js") {
		t.Fatal("expected home page to load the session watcher script")
	}
}
