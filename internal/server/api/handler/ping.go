package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/generapi/generapi/apitypes"
	"github.com/generapi/generapi/internal/version"
)

// ServerName is reported by the ping endpoint.
const ServerName = "generapi"

// Ping reports the server identity and version.
func Ping() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, apitypes.PingResponse{Server: ServerName, Version: version.String()})
	}
}
