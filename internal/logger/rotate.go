package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// rotatingFile is an io.Writer over a log file that rotates by size and age.
// Backups are named <path>.1 (newest) up to <path>.<MaxBackups>.
type rotatingFile struct {
	mu     sync.Mutex
	config Config
	file   *os.File
	size   int64
	opened time.Time
}

func openRotatingFile(config Config) (*rotatingFile, error) {
	if config.MaxSize <= 0 {
		config.MaxSize = 10 * 1024 * 1024
	}
	if config.MaxBackups <= 0 {
		config.MaxBackups = 5
	}

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	r := &rotatingFile{config: config}
	if err := r.open(); err != nil {
		return nil, err
	}
	if err := r.rotateIfNeeded(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *rotatingFile) open() error {
	file, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	r.file = file
	r.size = info.Size()
	r.opened = info.ModTime()
	return nil
}

// rotateIfNeeded checks size and age. Caller holds r.mu or is the constructor.
func (r *rotatingFile) rotateIfNeeded() error {
	if r.size >= r.config.MaxSize {
		return r.rotate()
	}
	if r.config.MaxAge > 0 && r.size > 0 &&
		time.Since(r.opened) > time.Duration(r.config.MaxAge)*24*time.Hour {
		return r.rotate()
	}
	return nil
}

func (r *rotatingFile) rotate() error {
	if r.file != nil {
		r.file.Close()
	}

	for i := r.config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.config.FilePath, i)
		newPath := fmt.Sprintf("%s.%d", r.config.FilePath, i+1)
		os.Rename(oldPath, newPath)
	}

	if _, err := os.Stat(r.config.FilePath); err == nil {
		if err := os.Rename(r.config.FilePath, r.config.FilePath+".1"); err != nil {
			return err
		}
	}

	if err := r.open(); err != nil {
		return err
	}
	r.opened = time.Now()
	return nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.rotateIfNeeded(); err != nil {
		return 0, err
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
