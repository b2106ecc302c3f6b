package middleware

import (
	"log"

	"main/utils"

	"github.com/gin-gonic/gin"
)

func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
				TrackError("panic")
				if c.Writer.Written() {
					c.Abort()
					return
				}
				utils.InternalError(c, "Something went wrong!")
				c.Abort()
			}
		}()
		c.Next()
	}
}
