package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/campus-lostfound/internal/logger"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки, добавленные через c.Error, централизованно.
// Ошибка логируется всегда. Если хэндлер ещё не ответил, AppError отдаётся со своим
// статусом и кодом, остальные маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, body := ErrorResponse(err)
		if c.Writer.Written() {
			status = c.Writer.Status()
		}

		entry := logger.WithComponent("http").WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			entry.Error("request error")
		} else {
			entry.Debug("request error")
		}

		if !c.Writer.Written() {
			c.JSON(status, body)
		}
	}
}

// ErrorResponse переводит ошибку в HTTP статус и тело ответа.
func ErrorResponse(err error) (int, gin.H) {
	if appErr, ok := apperror.As(err); ok {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		message := appErr.Message
		if status >= http.StatusInternalServerError || containsInternalKeywords(message) {
			message = "внутренняя ошибка сервера"
		}
		return status, gin.H{"error": message, "code": appErr.Code}
	}
	return http.StatusInternalServerError, gin.H{
		"error": "внутренняя ошибка сервера",
		"code":  apperror.ErrCodeInternal,
	}
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"pq:",
		"database",
		"connection",
		"panic",
		"runtime",
	}

	lower := strings.ToLower(s)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
