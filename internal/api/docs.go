package api

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed openapi.json
var openAPISpec []byte

//go:embed docs.html
var docsPage []byte

//go:embed redoc.html
var redocPage []byte

// OpenAPIHandler は API 定義を返します。
func OpenAPIHandler(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", openAPISpec)
}

// DocsHandler は Swagger UI のページを返します。
func DocsHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", docsPage)
}

// RedocHandler は ReDoc のページを返します。
func RedocHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", redocPage)
}
