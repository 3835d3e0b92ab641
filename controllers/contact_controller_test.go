package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customMiddleware "github.com/profiradce/profiradce_backend/middleware"
	"github.com/profiradce/profiradce_backend/models"
)

func newContactTestSetup() (*echo.Echo, *ContactController) {
	e := echo.New()
	limiter := customMiddleware.NewSlidingWindow(3, time.Minute)
	// No database, no mailer: the form accepts and drops, which is all the
	// endpoint contract requires
	return e, NewContactController(nil, limiter, nil)
}

func submitContact(e *echo.Echo, cc *ContactController, body, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Real-IP", ip)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = cc.SubmitContact(c)
	return rec
}

const validContactBody = `{
	"name": "Jana Nováková",
	"email": "jana@example.cz",
	"subject": "Dotaz na provizi",
	"message": "Dobrý den, mám dotaz ohledně provizního řádu."
}`

func TestSubmitContactSuccess(t *testing.T) {
	e, cc := newContactTestSetup()

	rec := submitContact(e, cc, validContactBody, "10.0.0.1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
}

func TestSubmitContactValidation(t *testing.T) {
	e, cc := newContactTestSetup()

	rec := submitContact(e, cc, `{"name":"J","email":"jana@example.cz","subject":"Dotaz","message":"Dobrý den, mám dotaz."}`, "10.0.0.1")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, models.MsgContactNameTooShort, resp.Error)
}

func TestSubmitContactRateLimit(t *testing.T) {
	e, cc := newContactTestSetup()

	for i := 0; i < 3; i++ {
		rec := submitContact(e, cc, validContactBody, "10.0.0.1")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	// The fourth request inside the window is refused with the Czech message
	rec := submitContact(e, cc, validContactBody, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp models.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, models.MsgContactRateLimited, resp.Error)
}

func TestSubmitContactRateLimitIsPerIP(t *testing.T) {
	e, cc := newContactTestSetup()

	for i := 0; i < 3; i++ {
		submitContact(e, cc, validContactBody, "10.0.0.1")
	}
	assert.Equal(t, http.StatusTooManyRequests, submitContact(e, cc, validContactBody, "10.0.0.1").Code)

	// A different caller is unaffected
	assert.Equal(t, http.StatusOK, submitContact(e, cc, validContactBody, "10.0.0.2").Code)
}

func TestSubmitContactInvalidRequestsDoNotConsumeSlots(t *testing.T) {
	e, cc := newContactTestSetup()

	// Validation runs before the limiter, so malformed submissions are free
	for i := 0; i < 5; i++ {
		rec := submitContact(e, cc, `{"name":"J"}`, "10.0.0.1")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}

	assert.Equal(t, http.StatusOK, submitContact(e, cc, validContactBody, "10.0.0.1").Code)
}
