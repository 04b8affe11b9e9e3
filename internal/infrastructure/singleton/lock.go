// Package singleton 保证同一端口上只运行一个后端实例
package singleton

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"
)

const (
	// DefaultPort 默认监听端口
	DefaultPort = ":3001"
	// ServiceName 健康检查返回的服务名
	ServiceName = "encuesta-ia-backend"
	// HealthCheckTimeout 健康检查超时时间
	HealthCheckTimeout = 2 * time.Second
)

// CheckAndLock 检查端口是否被占用，如果被占用则检查是否有实例在运行
// 如果已有实例运行，返回 nil listener 和 nil error（调用者应退出）
// 如果端口被其他进程占用，返回错误
func CheckAndLock(port string) (net.Listener, error) {
	listener, err := net.Listen("tcp", port)
	if err == nil {
		return listener, nil
	}

	if isAddrInUse(err) {
		if isInstanceRunning(port) {
			return nil, nil
		}
		return nil, fmt.Errorf("端口 %s 被占用，但健康检查失败，可能被其他程序占用", port)
	}

	return nil, fmt.Errorf("监听端口失败: %w", err)
}

// isAddrInUse 检查错误是否是地址已在使用
func isAddrInUse(err error) bool {
	if err == nil {
		return false
	}

	opErr, ok := err.(*net.OpError)
	if !ok {
		return false
	}

	sysErr, ok := opErr.Err.(*os.SyscallError)
	if !ok {
		return strings.Contains(opErr.Err.Error(), "address already in use")
	}

	if errno, ok := sysErr.Err.(syscall.Errno); ok {
		// Windows: WSAEADDRINUSE (10048)
		// Linux/Unix: EADDRINUSE
		return errno == 10048 || errno == syscall.EADDRINUSE
	}

	errStr := sysErr.Err.Error()
	return errStr == "address already in use" ||
		errStr == "Only one usage of each socket address (protocol/network address/port) is normally permitted"
}

// healthURL 把监听地址转换为本机健康检查地址
func healthURL(port string) string {
	host, p, err := net.SplitHostPort(port)
	if err != nil {
		return fmt.Sprintf("http://localhost%s/health", port)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s/health", net.JoinHostPort(host, p))
}

// isInstanceRunning 检查端口上是否运行着本服务
func isInstanceRunning(port string) bool {
	client := &http.Client{
		Timeout: HealthCheckTimeout,
	}

	resp, err := client.Get(healthURL(port))
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Service == ServiceName
}
