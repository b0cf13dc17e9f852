package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into an error handed to respond, which writes the 500.
func Recovery(respond func(c *gin.Context, err error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", r)
				}
				respond(c, err)
				c.Abort()
			}
		}()
		c.Next()
	}
}
