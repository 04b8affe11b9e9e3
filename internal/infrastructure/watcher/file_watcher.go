package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/encuestaia/backend/internal/domain/events"
	"github.com/encuestaia/backend/internal/infrastructure/log"
	"github.com/fsnotify/fsnotify"
)

// WatchConfig FileWatcher 配置
type WatchConfig struct {
	// FilePath 被监听的文件（问卷目录覆盖文件）
	FilePath string
	// DebounceDelay 防抖延迟
	DebounceDelay time.Duration
}

// DefaultWatchConfig 返回默认配置
func DefaultWatchConfig(filePath string) WatchConfig {
	return WatchConfig{
		FilePath:      filePath,
		DebounceDelay: 500 * time.Millisecond,
	}
}

// FileWatcher 监听单个文件的变化并发布防抖后的事件
// 监听的是文件所在目录，编辑器"写临时文件再改名"的保存方式也能被捕获
type FileWatcher struct {
	config   WatchConfig
	target   string
	eventBus events.EventBus
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// 防抖相关
	debounceTimer *time.Timer
	debounceMu    sync.Mutex

	// 控制
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewFileWatcher 创建文件监听器
func NewFileWatcher(config WatchConfig, eventBus events.EventBus) (*FileWatcher, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("watch file path is empty")
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		config:   config,
		target:   filepath.Clean(config.FilePath),
		eventBus: eventBus,
		watcher:  watcher,
		logger:   log.NewModuleLogger("watcher", "file_watcher"),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start 启动文件监听
func (fw *FileWatcher) Start() error {
	dir := filepath.Dir(fw.target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create watch directory: %w", err)
	}
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	fw.logger.Info("Starting file watcher", "file", fw.target)

	fw.wg.Add(1)
	go fw.watchLoop()

	return nil
}

// Stop 停止文件监听
func (fw *FileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		fw.logger.Info("Stopping file watcher")

		close(fw.stopCh)
		fw.watcher.Close()
		fw.wg.Wait()

		fw.debounceMu.Lock()
		if fw.debounceTimer != nil {
			fw.debounceTimer.Stop()
		}
		fw.debounceMu.Unlock()

		fw.logger.Info("File watcher stopped")
	})
}

// watchLoop 事件监听循环
func (fw *FileWatcher) watchLoop() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("Watcher error", "error", err)
		}
	}
}

// handleFsEvent 处理文件系统事件（带防抖）
func (fw *FileWatcher) handleFsEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != fw.target {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.config.DebounceDelay, fw.emit)
}

// emit 发布防抖后的事件；以文件此刻是否存在决定事件类型
func (fw *FileWatcher) emit() {
	select {
	case <-fw.stopCh:
		return
	default:
	}

	eventType := events.CatalogFileChanged
	if _, err := os.Stat(fw.target); os.IsNotExist(err) {
		eventType = events.CatalogFileRemoved
	}

	fw.eventBus.Publish(&events.CatalogFileEvent{
		EventType: eventType,
		FilePath:  fw.target,
		EventTime: time.Now(),
	})

	fw.logger.Debug("Catalog file event emitted", "type", eventType, "file", fw.target)
}
