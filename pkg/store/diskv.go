package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"
)

// Disk persists the session as one file per key under a base directory.
type Disk struct {
	mu       sync.Mutex
	d        *diskv.Diskv
	basePath string
}

// OpenDisk creates a Disk store rooted at basePath. A leading "~" is expanded.
func OpenDisk(basePath string) (*Disk, error) {
	expanded, err := homedir.Expand(basePath)
	if err != nil {
		return nil, fmt.Errorf("store: expand %s: %w", basePath, err)
	}
	if err := os.MkdirAll(expanded, 0o700); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Disk{d: diskv.New(diskv.Options{
		BasePath:          expanded,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		// No cache: another process may clear the session at any time.
		CacheSizeMax: 0,
		PathPerm:     0o700,
		FilePerm:     0o600,
	}), basePath: expanded}, nil
}

// BasePath returns the expanded directory holding the session files.
func (p *Disk) BasePath() string {
	return p.basePath
}

func (p *Disk) Load(_ context.Context) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var s Session
	var err error
	if s.Token, err = p.readString(KeyToken); err != nil {
		return Session{}, err
	}
	if s.RefreshToken, err = p.readString(KeyRefreshToken); err != nil {
		return Session{}, err
	}
	raw, err := p.read(KeyUser)
	if err != nil {
		return Session{}, err
	}
	if len(raw) > 0 {
		u := &User{}
		if err := json.Unmarshal(raw, u); err != nil {
			return Session{}, fmt.Errorf("store: decode user: %w", err)
		}
		s.User = u
	}
	return s, nil
}

func (p *Disk) SetTokens(_ context.Context, access, refresh string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.d.Write(KeyToken, []byte(access)); err != nil {
		return fmt.Errorf("store: write token: %w", err)
	}
	if refresh == "" {
		return nil
	}
	if err := p.d.Write(KeyRefreshToken, []byte(refresh)); err != nil {
		return fmt.Errorf("store: write refresh token: %w", err)
	}
	return nil
}

func (p *Disk) SetUser(_ context.Context, u *User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u == nil {
		return p.erase(KeyUser)
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := p.d.Write(KeyUser, data); err != nil {
		return fmt.Errorf("store: write user: %w", err)
	}
	return nil
}

func (p *Disk) Clear(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for _, key := range []string{KeyToken, KeyRefreshToken, KeyUser} {
		if err := p.erase(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Disk) read(key string) ([]byte, error) {
	if !p.d.Has(key) {
		return nil, nil
	}
	val, err := p.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return val, nil
}

func (p *Disk) readString(key string) (string, error) {
	val, err := p.read(key)
	return string(val), err
}

func (p *Disk) erase(key string) error {
	if !p.d.Has(key) {
		return nil
	}
	if err := p.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}
	return nil
}

// Session keys are flat file names directly under the base path.
func keyToPathTransform(s string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{},
		FileName: s,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
