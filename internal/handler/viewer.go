package handler

import "github.com/gin-gonic/gin"

// viewerFrom returns the authenticated caller's user ID, or zero for an
// anonymous request on a route behind the optional auth middleware.
func viewerFrom(c *gin.Context) uint {
	if v, ok := c.Get("userID"); ok {
		return v.(uint)
	}
	return 0
}
