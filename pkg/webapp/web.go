// Package webapp serves the embedded single-page client.
package webapp

import (
	"embed"
	"html/template"

	"github.com/labstack/echo/v4"
)

//go:embed index.html app.js
var assetsFS embed.FS

// MountRoutes serves the page and its script. Every path that is not an API
// or asset path falls back to the page, so reloads inside the app keep
// working.
func MountRoutes(e *echo.Echo) {
	page := template.Must(template.ParseFS(assetsFS, "index.html"))

	index := func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		return page.Execute(c.Response().Writer, nil)
	}

	e.GET("/", index)
	e.FileFS("/scripts/app.js", "app.js", assetsFS)
	e.GET("/*", index)
}
