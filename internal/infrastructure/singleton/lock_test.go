package singleton

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheckAndLock_PortAvailable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().String()
	listener.Close()

	result, err := CheckAndLock(port)
	require.NoError(t, err)
	require.NotNil(t, result)
	defer result.Close()
}

func TestCheckAndLock_PortInUse_HealthyInstance(t *testing.T) {
	server := healthServer(t, http.StatusOK, `{"status":"OK","service":"encuesta-ia-backend","timestamp":"2024-01-01T00:00:00Z"}`)

	result, err := CheckAndLock(strings.TrimPrefix(server.URL, "http://"))
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestCheckAndLock_PortInUse_UnhealthyInstance(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	result, err := CheckAndLock(listener.Addr().String())
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "健康检查失败")
}

func TestIsAddrInUse(t *testing.T) {
	t.Run("地址已在使用", func(t *testing.T) {
		l1, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer l1.Close()

		_, err = net.Listen("tcp", l1.Addr().String())
		assert.True(t, isAddrInUse(err))
	})

	t.Run("其他错误", func(t *testing.T) {
		_, err := net.Listen("tcp", "invalid")
		assert.False(t, isAddrInUse(err))
	})

	t.Run("nil", func(t *testing.T) {
		assert.False(t, isAddrInUse(nil))
	})
}

func TestHealthURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3001/health", healthURL(":3001"))
	assert.Equal(t, "http://127.0.0.1:8080/health", healthURL("127.0.0.1:8080"))
	assert.Equal(t, "http://localhost:8080/health", healthURL("0.0.0.0:8080"))
}

func TestIsInstanceRunning(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"本服务在运行", http.StatusOK, `{"status":"OK","service":"encuesta-ia-backend"}`, true},
		{"其他服务", http.StatusOK, `{"status":"OK","service":"other"}`, false},
		{"非 JSON 响应", http.StatusOK, `ok`, false},
		{"非 200 状态码", http.StatusInternalServerError, `{"service":"encuesta-ia-backend"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := healthServer(t, tt.status, tt.body)
			assert.Equal(t, tt.want, isInstanceRunning(strings.TrimPrefix(server.URL, "http://")))
		})
	}

	t.Run("实例不存在", func(t *testing.T) {
		assert.False(t, isInstanceRunning("127.0.0.1:1"))
	})
}
