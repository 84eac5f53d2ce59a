package handlers

import (
	_ "embed"
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed docs/openapi.yaml
var openAPIDoc []byte

const docsPage = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>%s</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="docs"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({ url: %q, dom_id: "#docs", deepLinking: true });
</script>
</body>
</html>`

// DocsHandler serves the embedded OpenAPI document and a Swagger UI page
// pointing at it.
type DocsHandler struct {
	page []byte
}

func NewDocsHandler(title, specURL string) *DocsHandler {
	return &DocsHandler{
		page: []byte(fmt.Sprintf(docsPage, html.EscapeString(title), specURL)),
	}
}

func (h *DocsHandler) UI(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", h.page)
}

func (h *DocsHandler) Document(ctx *gin.Context) {
	ctx.Header("Cache-Control", "public, max-age=300")
	ctx.Data(http.StatusOK, "application/yaml; charset=utf-8", openAPIDoc)
}
