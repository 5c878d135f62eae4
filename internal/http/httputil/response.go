package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func Error(c *gin.Context, status int, code, err string) {
	c.JSON(status, Response{
		Success: false,
		Error:   err,
		Code:    code,
	})
}

func BadRequest(c *gin.Context, err string) {
	Error(c, http.StatusBadRequest, "bad-request", err)
}

func NotFound(c *gin.Context, err string) {
	Error(c, http.StatusNotFound, "not-found", err)
}

func Conflict(c *gin.Context, code, err string) {
	Error(c, http.StatusConflict, code, err)
}

func Unprocessable(c *gin.Context, code, err string) {
	Error(c, http.StatusUnprocessableEntity, code, err)
}

func InternalError(c *gin.Context, err string) {
	Error(c, http.StatusInternalServerError, "internal", err)
}
