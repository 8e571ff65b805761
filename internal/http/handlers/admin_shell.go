package handlers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// The admin UI itself is built and hosted elsewhere; this page only boots its bundle.
var adminShell = template.Must(template.New("admin").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width,initial-scale=1" />
    <title>Naturlife Admin</title>
    <link rel="stylesheet" href="{{.AssetsBase}}/admin.css" />
  </head>
  <body>
    <div id="admin-root" data-api-base="/api/admin" data-path="{{.Path}}"></div>
    <script src="{{.AssetsBase}}/admin.js" defer></script>
  </body>
</html>`))

type AdminShellHandler struct {
	assetsBase string
}

func NewAdminShellHandler(assetsBase string) *AdminShellHandler {
	if assetsBase == "" {
		assetsBase = "/static"
	}
	return &AdminShellHandler{assetsBase: assetsBase}
}

// GET /admin, /admin/*path. Only reachable through the admin perimeter.
func (h *AdminShellHandler) Serve(ctx *gin.Context) {
	ctx.Header("Cache-Control", "no-store")
	ctx.Header("Content-Type", "text/html; charset=utf-8")
	ctx.Status(http.StatusOK)

	_ = adminShell.Execute(ctx.Writer, struct {
		AssetsBase string
		Path       string
	}{AssetsBase: h.assetsBase, Path: ctx.Request.URL.Path})
}
