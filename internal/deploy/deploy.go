// Package deploy uploads a built site to an S3-compatible bucket.
package deploy

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/madelynarsenault/portfolio/internal/config"
)

const workers = 4

// Uploader is the part of *s3.Client the deployer needs.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Deployer struct {
	client       Uploader
	bucket       string
	prefix       string
	cacheControl string
}

type Result struct {
	Files int
	Bytes int64
}

// New builds an S3 client from cfg. Static credentials are used when given,
// the default AWS chain otherwise. A custom endpoint (Cloudflare R2, MinIO)
// switches to path-style addressing.
func New(ctx context.Context, cfg config.DeployConfig) (*Deployer, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("deploy.bucket is not set")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, cfg), nil
}

func NewWithClient(client Uploader, cfg config.DeployConfig) *Deployer {
	return &Deployer{
		client:       client,
		bucket:       cfg.Bucket,
		prefix:       cfg.Prefix,
		cacheControl: cfg.CacheControl,
	}
}

// Upload puts every file under dir into the bucket, keyed by its slash
// separated path below dir.
func (d *Deployer) Upload(ctx context.Context, dir string) (Result, error) {
	var files int64
	var total int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", p, err)
		}
		key := d.Key(filepath.ToSlash(rel))

		g.Go(func() error {
			n, err := d.put(ctx, p, key)
			if err != nil {
				return err
			}
			atomic.AddInt64(&files, 1)
			atomic.AddInt64(&total, n)
			return nil
		})
		return ctx.Err()
	})
	if gerr := g.Wait(); gerr != nil {
		return Result{}, gerr
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return Result{Files: int(files), Bytes: total}, nil
}

func (d *Deployer) Key(rel string) string {
	if d.prefix == "" {
		return rel
	}
	return path.Join(d.prefix, rel)
}

func (d *Deployer) put(ctx context.Context, filename, key string) (int64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", filename, err)
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(ContentType(filename)),
	}
	if d.cacheControl != "" {
		in.CacheControl = aws.String(d.cacheControl)
	}
	if _, err := d.client.PutObject(ctx, in); err != nil {
		return 0, fmt.Errorf("failed to upload %s to s3://%s/%s: %w", filename, d.bucket, key, err)
	}
	return info.Size(), nil
}

// ContentType guesses from the extension and falls back to octet-stream.
func ContentType(filename string) string {
	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}
	return "application/octet-stream"
}
