package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// headerLoaderSecret authenticates the bulk syllabus loader
const headerLoaderSecret = "x-loader-secret"

// loaderSecretMiddleware guards the bulk loader with a shared secret
// header. An unset secret disables the endpoint entirely.
func loaderSecretMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Loader disabled")
			}
			got := c.Request().Header.Get(headerLoaderSecret)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			return next(c)
		}
	}
}

// cronSecretMiddleware guards the digest trigger with a bearer token.
// An unset secret disables the endpoint entirely.
func cronSecretMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Digest trigger disabled")
			}
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			return next(c)
		}
	}
}
