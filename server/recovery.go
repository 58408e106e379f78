package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// recovery logs panics through zap and converts them into a 500 response, so
// a bad record can never take the whole server down mid-request
func recovery(logger *zap.Logger, stack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			panicValue := recover()
			if panicValue == nil {
				return
			}
			if ce := logger.Check(zap.ErrorLevel, "[Recovery]"); ce != nil {
				fields := []zap.Field{zap.Any("error", panicValue)}
				if stack && ce.Entry.Stack == "" {
					fields = append(fields, zap.Stack("stacktrace"))
				} else if !stack {
					ce.Entry.Stack = ""
				}
				ce.Write(fields...)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, map[string]string{
				"Error": "Internal server error",
			})
		}()
		c.Next()
	}
}
