package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// paramKeyPrefix префикс ключа, под которым в контексте лежит разобранный UUID.
const paramKeyPrefix = "param."

// UUIDValidator проверяет path-параметры и кладёт разобранные uuid.UUID в контекст.
// Использование: router.GET("/found/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range paramNames {
			raw := c.Param(name)
			if raw == "" {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "параметр " + name + " обязателен",
				})
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "параметр " + name + " должен быть валидным UUID",
				})
				return
			}
			c.Set(paramKeyPrefix+name, id)
		}

		c.Next()
	}
}

// UUIDParam возвращает UUID, сохранённый UUIDValidator.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	raw, ok := c.Get(paramKeyPrefix + name)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}
