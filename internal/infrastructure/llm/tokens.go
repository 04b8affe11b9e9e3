package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// 在包初始化时设置离线加载器
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// TokenCounter 使用 tiktoken cl100k_base 计算 token 数
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.Mutex
}

var (
	counterInstance *TokenCounter
	counterOnce     sync.Once
	counterErr      error
)

// NewTokenCounter 获取 TokenCounter 单例，避免重复加载编码文件
func NewTokenCounter() (*TokenCounter, error) {
	counterOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			counterErr = err
			return
		}
		counterInstance = &TokenCounter{encoding: enc}
	})

	if counterErr != nil {
		return nil, counterErr
	}
	return counterInstance, nil
}

// Count 计算文本的 token 数
func (c *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.encoding.Encode(text, nil, nil))
}

// CountAll 计算多段文本的 token 总数
func (c *TokenCounter) CountAll(texts ...string) int {
	total := 0
	for _, t := range texts {
		total += c.Count(t)
	}
	return total
}
