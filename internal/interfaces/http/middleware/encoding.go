package middleware

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// EnsureUTF8Body 确保请求体是 UTF-8 编码的中间件
// 旧客户端可能以 Windows-1252 / Latin-1 发送西班牙语文本（ñ、á、¿），
// 此中间件检测并转换非 UTF-8 编码的请求体
func EnsureUTF8Body() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		c.Request.Body.Close()

		if len(bodyBytes) == 0 || utf8.Valid(bodyBytes) {
			c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			c.Next()
			return
		}

		utf8Bytes, err := convertWindows1252ToUTF8(bodyBytes)
		if err != nil || !utf8.Valid(utf8Bytes) {
			// 转换失败，使用原始数据
			c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			c.Next()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(utf8Bytes))
		c.Request.ContentLength = int64(len(utf8Bytes))
		c.Next()
	}
}

// convertWindows1252ToUTF8 Windows-1252 是 Latin-1 的超集
func convertWindows1252ToUTF8(raw []byte) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(raw), charmap.Windows1252.NewDecoder())
	return io.ReadAll(reader)
}
