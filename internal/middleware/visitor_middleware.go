package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/recruit-intake/pkg/auth/manager"
)

// ContextKeyVisitorID - ключ контекста Gin с идентификатором посетителя
const ContextKeyVisitorID = "visitorID"

// Visitor выдает посетителю cookie анкеты, если ее еще нет, и кладет идентификатор в контекст
func Visitor(cookies *manager.CookieManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := cookies.EnsureVisitorID(c.Writer, c.Request)
		c.Set(ContextKeyVisitorID, id)
		c.Next()
	}
}
