package tablestore

import (
	"fmt"

	"go.uber.org/zap"
)

// Backends understood by OpenStore.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Dataframe kinds understood by NewIOManager.
const (
	DataframeGota  = "gota"
	DataframeFrame = "frame"
)

// StoreConfig configures where tables live.
type StoreConfig struct {
	Backend   string    `json:"backend,omitempty" jsonschema:"enum=local,enum=s3,default=local"`
	Root      string    `json:"root,omitempty" jsonschema:"description=Directory holding tables for the local backend"`
	CacheSize int       `json:"cache_size,omitempty" jsonschema:"description=Number of part files kept in memory; 0 disables the cache"`
	PartRows  int64     `json:"part_rows,omitempty" jsonschema:"description=Maximum rows per part file"`
	S3        *S3Config `json:"s3,omitempty"`
	Dataframe string    `json:"dataframe,omitempty" jsonschema:"enum=gota,enum=frame,default=gota"`
}

// OpenObjectStore builds the configured object store.
func OpenObjectStore(cfg StoreConfig) (ObjectStore, error) {
	var objects ObjectStore
	switch cfg.Backend {
	case "", BackendLocal:
		fs, err := NewFSObjectStore(cfg.Root)
		if err != nil {
			return nil, err
		}
		objects = fs
	case BackendS3:
		if cfg.S3 == nil {
			return nil, fmt.Errorf("s3 backend requires s3 settings")
		}
		s3, err := NewS3ObjectStore(*cfg.S3)
		if err != nil {
			return nil, err
		}
		objects = s3
	default:
		return nil, fmt.Errorf("unknown table backend %q", cfg.Backend)
	}

	if cfg.CacheSize > 0 {
		cached, err := NewCachedObjectStore(objects, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		objects = cached
	}
	return objects, nil
}

// OpenStore builds a Store from cfg.
func OpenStore(cfg StoreConfig, logger *zap.Logger) (*Store, error) {
	objects, err := OpenObjectStore(cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(objects, WithLogger(logger), WithPartRows(cfg.PartRows)), nil
}

// NewIOManager builds the I/O manager for the configured dataframe kind.
func NewIOManager(cfg StoreConfig, logger *zap.Logger) (*TableIOManager, error) {
	store, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	switch cfg.Dataframe {
	case "", DataframeGota:
		return NewGotaIOManager(store, logger), nil
	case DataframeFrame:
		return NewFrameIOManager(store, logger), nil
	default:
		return nil, fmt.Errorf("unknown dataframe kind %q", cfg.Dataframe)
	}
}
