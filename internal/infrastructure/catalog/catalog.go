// Package catalog 加载问卷目录：内置默认值，可被数据目录下的 catalog.yaml 覆盖并热加载
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/encuestaia/backend/internal/domain/events"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/infrastructure/log"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Source 当前目录的来源
type Source string

const (
	SourceDefault  Source = "default"
	SourceOverride Source = "override"
)

// Parse 解析并校验 YAML 目录
func Parse(data []byte) (*survey.Catalog, error) {
	var c survey.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default 返回内置默认目录
func Default() *survey.Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		// 内置文件随二进制发布，解析失败属于构建错误
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// snapshot 一次加载结果
type snapshot struct {
	catalog *survey.Catalog
	source  Source
}

// Store 持有当前生效的目录，读取无锁
type Store struct {
	path    string
	current atomic.Pointer[snapshot]
	logger  *slog.Logger
}

// NewStore 创建目录存储，并尝试加载覆盖文件
func NewStore(overridePath string) *Store {
	s := &Store{
		path:   overridePath,
		logger: log.NewModuleLogger("catalog", "store"),
	}
	s.current.Store(&snapshot{catalog: Default(), source: SourceDefault})
	if err := s.Reload(); err != nil {
		s.logger.Warn("Catalog override ignored", "path", overridePath, "error", err)
	}
	return s
}

// Current 返回当前目录（只读，调用方不得修改）
func (s *Store) Current() *survey.Catalog {
	return s.current.Load().catalog
}

// Source 返回当前目录来源
func (s *Store) Source() Source {
	return s.current.Load().source
}

// Path 覆盖文件路径
func (s *Store) Path() string {
	return s.path
}

// Reload 重新读取覆盖文件
// 文件不存在时回到默认目录；文件不合法时保留当前目录并返回错误
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if s.Source() == SourceOverride {
			s.logger.Info("Catalog override removed, using default", "path", s.path)
		}
		s.current.Store(&snapshot{catalog: Default(), source: SourceDefault})
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read catalog override: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return err
	}

	s.current.Store(&snapshot{catalog: c, source: SourceOverride})
	s.logger.Info("Catalog override loaded",
		"path", s.path,
		"opening_questions", len(c.OpeningQuestions),
		"sectors", len(c.Sectors),
	)
	return nil
}

// HandleEvent 实现 events.Handler，收到文件变更事件后重新加载
func (s *Store) HandleEvent(event events.Event) error {
	switch event.Type() {
	case events.CatalogFileChanged, events.CatalogFileRemoved:
		if err := s.Reload(); err != nil {
			s.logger.Warn("Catalog reload failed, keeping previous catalog", "error", err)
		}
	}
	return nil
}

// Subscribe 订阅目录文件事件
func (s *Store) Subscribe(bus events.EventBus) func() {
	return bus.SubscribeMultiple(
		[]events.EventType{events.CatalogFileChanged, events.CatalogFileRemoved},
		s,
	)
}

var _ events.Handler = (*Store)(nil)
