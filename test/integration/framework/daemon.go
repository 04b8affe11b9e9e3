//go:build integration
// +build integration

// TestDaemon 管理独立 encuesta-ia 后端进程的启动与关闭
package framework

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"time"
)

// TestDaemon 测试后端进程
type TestDaemon struct {
	Name     string // 角色名称
	HTTPPort int    // HTTP 端口
	DataDir  string // 数据目录（隔离）

	env     []string
	cmd     *exec.Cmd
	baseURL string
}

// DaemonOption 后端进程配置选项
type DaemonOption func(*TestDaemon)

// WithLLM 把模型请求指向 OpenAI 兼容的桩服务
func WithLLM(baseURL string) DaemonOption {
	return func(d *TestDaemon) {
		d.env = append(d.env,
			"ENCUESTA_LLM_PROVIDER=openai",
			"ENCUESTA_LLM_BASE_URL="+baseURL,
			"ENCUESTA_LLM_API_KEY=test-key",
			"ENCUESTA_LLM_MAX_RETRIES=0",
		)
	}
}

// WithWebhook 设置线索推送地址，空字符串表示禁用
func WithWebhook(url string) DaemonOption {
	return func(d *TestDaemon) {
		d.env = append(d.env, "ENCUESTA_WEBHOOK_URL="+url)
	}
}

// NewTestDaemon 创建测试后端进程
func NewTestDaemon(binaryPath, name string, opts ...DaemonOption) (*TestDaemon, error) {
	// 分配空闲端口
	httpPort, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate HTTP port: %w", err)
	}

	// 创建隔离的数据目录
	dataDir, err := os.MkdirTemp("", fmt.Sprintf("encuesta-test-%s-", name))
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return NewTestDaemonWithConfig(binaryPath, name, dataDir, httpPort, opts...), nil
}

// NewTestDaemonWithConfig 使用指定数据目录和端口创建后端进程（用于重启场景）
func NewTestDaemonWithConfig(binaryPath, name, dataDir string, httpPort int, opts ...DaemonOption) *TestDaemon {
	d := &TestDaemon{
		Name:     name,
		HTTPPort: httpPort,
		DataDir:  dataDir,
		baseURL:  fmt.Sprintf("http://localhost:%d", httpPort),
		env: []string{
			fmt.Sprintf("ENCUESTA_DATA_DIR=%s", dataDir),
			fmt.Sprintf("ENCUESTA_HTTP_PORT=:%d", httpPort),
			"ENCUESTA_WEBHOOK_URL=",
			"GIN_MODE=test",
		},
	}

	for _, opt := range opts {
		opt(d)
	}

	d.cmd = exec.Command(binaryPath)
	d.cmd.Env = append(os.Environ(), d.env...)
	d.cmd.Stdout = os.Stdout
	d.cmd.Stderr = os.Stderr
	return d
}

// Start 启动后端进程并等待就绪
func (d *TestDaemon) Start() error {
	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon %s: %w", d.Name, err)
	}

	// 等待 health 端点就绪
	return d.waitForReady(30 * time.Second)
}

// Stop 停止后端进程并清理数据目录
func (d *TestDaemon) Stop() error {
	return d.StopWithCleanup(true)
}

// StopWithCleanup 停止后端进程，可选择是否清理数据目录
func (d *TestDaemon) StopWithCleanup(cleanup bool) error {
	if d.cmd.Process != nil {
		// 发送关闭信号
		_ = d.cmd.Process.Signal(os.Interrupt)

		// 等待进程退出（最多 5 秒）
		done := make(chan error, 1)
		go func() {
			done <- d.cmd.Wait()
		}()

		select {
		case <-done:
			// 正常退出
		case <-time.After(5 * time.Second):
			// 强制杀进程
			_ = d.cmd.Process.Kill()
			<-done
		}
	}

	// 可选清理数据目录
	if cleanup {
		return os.RemoveAll(d.DataDir)
	}
	return nil
}

// BaseURL 返回 HTTP 基础 URL
func (d *TestDaemon) BaseURL() string {
	return d.baseURL
}

// waitForReady 等待后端 health 端点就绪
func (d *TestDaemon) waitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(d.baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(200 * time.Millisecond)
	}

	return fmt.Errorf("daemon %s failed to become ready within %v", d.Name, timeout)
}

// getFreePort 获取一个空闲的 TCP 端口
func getFreePort() (int, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}
