package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/newthinker/tradesim/internal/backtest"
	"github.com/newthinker/tradesim/internal/core"
)

const resultsRoot = "results"

// Config selects and configures a storage backend
type Config struct {
	Type string // "none", "localfs" or "s3"
	Path string
	S3   S3Config
}

// NewStorage builds the configured backend. It returns nil, nil for "none".
func NewStorage(cfg Config) (Storage, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "none":
		return nil, nil
	case "localfs", "local":
		fs, err := NewLocalFS(cfg.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case "s3":
		s3, err := NewS3(cfg.S3)
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Type)
	}
}

// ResultStore writes backtest results as JSON documents at
// results/<symbol>/<run id>.json
type ResultStore struct {
	storage Storage
	logger  *zap.Logger
}

// NewResultStore wraps storage
func NewResultStore(storage Storage, logger ...*zap.Logger) *ResultStore {
	var log *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	} else {
		log = zap.NewNop()
	}
	return &ResultStore{storage: storage, logger: log}
}

// ResultPath returns the storage path of a result
func ResultPath(symbol, runID string) string {
	return path.Join(resultsRoot, sanitize(symbol), runID+".json")
}

// sanitize keeps symbols like BRK/B from adding path levels
func sanitize(s string) string {
	if s == "" {
		return core.DefaultSymbol
	}
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(s)
}

// Save stores a result and returns its path. Run ids are unique, so an
// existing object at the path is an error rather than an overwrite.
func (r *ResultStore) Save(ctx context.Context, result *backtest.Result) (string, error) {
	if result == nil || result.RunID == "" {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("result has no run id"))
	}
	p := ResultPath(result.Symbol, result.RunID)

	exists, err := r.storage.Exists(ctx, p)
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}
	if exists {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("%s already exists", p))
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}
	if err := r.storage.Write(ctx, p, data); err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}

	r.logger.Info("result archived",
		zap.String("path", p),
		zap.String("strategy", result.Strategy),
		zap.Int("bytes", len(data)),
	)
	return p, nil
}

// Load reads a stored result
func (r *ResultStore) Load(ctx context.Context, p string) (*backtest.Result, error) {
	data, err := r.storage.Read(ctx, p)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	var result backtest.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("decoding %s: %w", p, err))
	}
	return &result, nil
}

// List returns stored result paths, for one symbol or all when symbol is empty
func (r *ResultStore) List(ctx context.Context, symbol string) ([]string, error) {
	prefix := resultsRoot
	if symbol != "" {
		prefix = path.Join(resultsRoot, sanitize(symbol))
	}
	paths, err := r.storage.List(ctx, prefix)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	return paths, nil
}

// Delete removes a stored result
func (r *ResultStore) Delete(ctx context.Context, p string) error {
	if err := r.storage.Delete(ctx, p); err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	r.logger.Info("result deleted", zap.String("path", p))
	return nil
}
