package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestLoaderSecretMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		header   string
		wantCode int
	}{
		{"correct secret", "s3cret", "s3cret", http.StatusOK},
		{"wrong secret", "s3cret", "nope", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"unset secret disables endpoint", "", "", http.StatusUnauthorized},
		{"unset secret rejects even empty match", "", "s3cret", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/syllabus/load", nil)
			if tt.header != "" {
				req.Header.Set(headerLoaderSecret, tt.header)
			}
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(req, rec)

			err := loaderSecretMiddleware(tt.secret)(okHandler)(c)
			code := rec.Code
			if he, ok := err.(*echo.HTTPError); ok {
				code = he.Code
			}
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
		})
	}
}

func TestCronSecretMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		auth     string
		wantCode int
	}{
		{"correct token", "cron-key", "Bearer cron-key", http.StatusOK},
		{"wrong token", "cron-key", "Bearer nope", http.StatusUnauthorized},
		{"missing bearer prefix", "cron-key", "cron-key", http.StatusUnauthorized},
		{"missing header", "cron-key", "", http.StatusUnauthorized},
		{"unset secret disables endpoint", "", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/email-digest", nil)
			if tt.auth != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.auth)
			}
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(req, rec)

			err := cronSecretMiddleware(tt.secret)(okHandler)(c)
			code := rec.Code
			if he, ok := err.(*echo.HTTPError); ok {
				code = he.Code
			}
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
		})
	}
}
