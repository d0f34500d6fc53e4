package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCV = `{
  "personal_info": {
    "name": "Ada Lovelace",
    "email": "ada@example.com",
    "summary": "Mathematician."
  },
  "experience": [
    {"title": "Analyst", "company": "Engine Co", "location": "London", "duration": "1843",
     "responsibilities": ["Wrote the first algorithm"]}
  ],
  "skills": {"technical": ["Mathematics"], "soft": [], "tools": null},
  "achievements": ["Notes on the Analytical Engine"]
}`

func newTestApp() *fiber.App {
	return New(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func do(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	resp := do(t, newTestApp(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err := newTestApp().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))
}

func TestExportPDF(t *testing.T) {
	app := newTestApp()
	for _, name := range []string{"fpdf", "canvas"} {
		t.Run(name, func(t *testing.T) {
			resp := do(t, app, http.MethodPost, "/v1/cv/pdf?renderer="+name, sampleCV)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
			assert.Equal(t, `attachment; filename="CV.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))

			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
		})
	}
}

func TestExportPDFFileNameTemplate(t *testing.T) {
	resp := do(t, newTestApp(), http.MethodPost, "/v1/cv/pdf?filename=%24%7Bpersonal_info.name%7D", sampleCV)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="Ada_Lovelace.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))
}

func TestLayoutEndpoint(t *testing.T) {
	resp := do(t, newTestApp(), http.MethodPost, "/v1/cv/layout", sampleCV)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Sections []string `json:"sections"`
		Result   struct {
			Pages []json.RawMessage `json:"pages"`
			Meta  struct {
				Title string `json:"title"`
			} `json:"meta"`
		} `json:"result"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, []string{"PROFESSIONAL SUMMARY", "PROFESSIONAL EXPERIENCE", "SKILLS", "ACHIEVEMENTS"}, body.Sections)
	assert.Len(t, body.Result.Pages, 1)
	assert.Equal(t, "Ada Lovelace - CV", body.Result.Meta.Title)
}

func TestBadRequests(t *testing.T) {
	app := newTestApp()
	cases := []struct {
		name   string
		target string
		body   string
		field  string
		errMsg string
	}{
		{name: "wrong type", target: "/v1/cv/pdf", body: `{"personal_info": {"name": "Ada"}, "experience": "lots"}`, field: "experience"},
		{name: "blank name", target: "/v1/cv/pdf", body: `{"personal_info": {"name": "  "}}`, field: "personal_info.name"},
		{name: "not json", target: "/v1/cv/layout", body: `{"personal_info"`, errMsg: "resume"},
		{name: "unknown renderer", target: "/v1/cv/pdf?renderer=latex", body: sampleCV, errMsg: "latex"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, app, http.MethodPost, tc.target, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body errorBody
			decodeBody(t, resp, &body)
			if tc.field != "" {
				require.NotEmpty(t, body.Fields)
				assert.Equal(t, tc.field, body.Fields[0].Field)
			}
			if tc.errMsg != "" {
				assert.Contains(t, body.Error, tc.errMsg)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	resp := do(t, newTestApp(), http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Error)
}
