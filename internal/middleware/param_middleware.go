package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractIntQuerySet создает middleware для извлечения набора числовых query-параметров.
// queryName - имя повторяемого параметра (например, "expand" в ?expand=1&expand=4).
// contextKey - ключ, под которым map[int]bool будет сохранен в контексте Gin.
// Нечисловые значения пропускаются и не прерывают запрос.
func ExtractIntQuerySet(queryName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		set := make(map[int]bool)
		for _, raw := range c.QueryArray(queryName) {
			if v, err := strconv.Atoi(raw); err == nil {
				set[v] = true
			}
		}
		c.Set(contextKey, set)
		c.Next()
	}
}
