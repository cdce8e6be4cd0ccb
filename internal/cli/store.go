package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/hupe1980/cabaliser/blobstore"
	"github.com/hupe1980/cabaliser/blobstore/minio"
	"github.com/hupe1980/cabaliser/blobstore/s3"
	"github.com/hupe1980/cabaliser/internal/resource"
)

// openStore returns the blob store the storage section selects.
func openStore(ctx context.Context, cfg StorageConfig) (blobstore.BlobStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "memory":
		return blobstore.NewMemoryStore(), nil

	case "local":
		return blobstore.NewLocalStore(cfg.Path), nil

	case "s3":
		var opts []s3.Option
		if cfg.Prefix != "" {
			opts = append(opts, s3.WithPrefix(cfg.Prefix))
		}
		if cfg.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.Region))
		}
		store, err := s3.New(ctx, cfg.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		if cfg.DynamoTable == "" {
			return store, nil
		}

		var loadOpts []func(*config.LoadOptions) error
		if cfg.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		baseURI := "s3://" + cfg.Bucket + "/" + strings.Trim(cfg.Prefix, "/")
		return s3.NewDDBCommitStore(store, dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable, baseURI), nil

	case "minio":
		store, err := minio.Connect(ctx, cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// newController builds the resource controller shared by a command.
func newController(c *Config) *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimit:   c.Widget.MemoryLimit,
		Uploads:       c.Storage.Uploads,
		IOBytesPerSec: c.Storage.IOLimit,
	})
}
