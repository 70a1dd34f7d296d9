package credential

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"

	"github.com/magiconair/properties"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PlaceholderPassword marks a mailbox that is known but not configured yet.
const PlaceholderPassword = "PLACEHOLDER_APP_PASSWORD"

const RedisHashKey = "leaveease:email-credentials"

var seedAccounts = []string{"hr@company.com", "admin@company.com"}

// Store is a key-value store of email address to app password.
type Store interface {
	Get(ctx context.Context, email string) (string, bool, error)
	Set(ctx context.Context, email, password string) error
	Delete(ctx context.Context, email string) error
	All(ctx context.Context) (map[string]string, error)
}

// FileStore keeps credentials in a properties file, rewritten in full on
// every change. Write failures are logged and the in-memory value is kept.
type FileStore struct {
	path   string
	mu     sync.RWMutex
	props  *properties.Properties
	logger *zap.Logger
}

func NewFileStore(path string, logger ...*zap.Logger) (*FileStore, error) {
	l := zap.L().Named("credential.file_store")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("credential.file_store")
	}

	loader := properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
		IgnoreMissing:    true,
	}
	props, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}

	s := &FileStore{path: path, props: props, logger: l}
	if props.Len() == 0 {
		for _, email := range seedAccounts {
			_, _, _ = props.Set(email, PlaceholderPassword)
		}
		s.flush()
		l.Info("credential file seeded", zap.String("path", path), zap.Int("accounts", len(seedAccounts)))
	}

	l.Info("credential file loaded", zap.String("path", path), zap.Int("accounts", props.Len()))
	return s, nil
}

func (s *FileStore) Get(_ context.Context, email string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.props.Get(email)
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, err := s.props.Set(email, password); err != nil {
		return err
	}
	s.flush()
	return nil
}

func (s *FileStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.props.Delete(email)
	s.flush()
	return nil
}

func (s *FileStore) All(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.props.Map(), nil
}

// flush must be called with mu held.
func (s *FileStore) flush() {
	keys := s.props.Keys()
	sort.Strings(keys)

	sorted := properties.NewProperties()
	sorted.DisableExpansion = true
	for _, k := range keys {
		v, _ := s.props.Get(k)
		_, _, _ = sorted.Set(k, v)
	}

	f, err := os.Create(s.path)
	if err != nil {
		s.logger.Error("credential file write failed", zap.String("path", s.path), zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := sorted.WriteComment(f, "# ", properties.UTF8); err != nil {
		s.logger.Error("credential file write failed", zap.String("path", s.path), zap.Error(err))
	}
}

// RedisStore keeps credentials in a single redis hash.
type RedisStore struct {
	rdb redis.Cmdable
	key string
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb, key: RedisHashKey}
}

func (s *RedisStore) Get(ctx context.Context, email string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, s.key, email).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, email, password string) error {
	return s.rdb.HSet(ctx, s.key, email, password).Err()
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	return s.rdb.HDel(ctx, s.key, email).Err()
}

func (s *RedisStore) All(ctx context.Context) (map[string]string, error) {
	return s.rdb.HGetAll(ctx, s.key).Result()
}
