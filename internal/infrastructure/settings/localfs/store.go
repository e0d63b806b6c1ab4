// Package localfs keeps per-shop recommendation settings as YAML files.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

type Store struct {
	basePath string
	defaults domain.Settings

	mu sync.Mutex
}

func New(basePath string, defaults domain.Settings) (*Store, error) {
	if basePath == "" {
		basePath = "./data/settings"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	return &Store{basePath: basePath, defaults: defaults}, nil
}

// Load returns the shop's settings, or the defaults when none were saved.
// Keys missing from the file keep their default values.
func (s *Store) Load(_ context.Context, shop string) (domain.Settings, error) {
	path, err := s.path(shop)
	if err != nil {
		return domain.Settings{}, err
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.defaults, nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	settings := s.defaults
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("parse settings file %s: %w", filepath.Base(path), err)
	}
	return settings, nil
}

func (s *Store) Save(_ context.Context, shop string, settings domain.Settings) error {
	path, err := s.path(shop)
	if err != nil {
		return err
	}
	raw, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.basePath, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

func (s *Store) path(shop string) (string, error) {
	key := sanitizeShop(shop)
	if key == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "settings path", fmt.Errorf("shop is required"))
	}
	return filepath.Join(s.basePath, key+".yaml"), nil
}

// sanitizeShop keeps shop domains usable as file names.
func sanitizeShop(shop string) string {
	shop = strings.ToLower(strings.TrimSpace(shop))
	var b strings.Builder
	for _, r := range shop {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), ".")
}
