// Package s3 provides an S3-backed document source and the object
// storage used for publishing rendered artifacts.
package s3

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"fundscope/internal/config"
	"fundscope/internal/domain"
	"fundscope/internal/filestore"
	"fundscope/internal/port"
)

func init() {
	filestore.RegisterProvider("s3", func(cfg *config.Config) (port.FileStore, error) {
		store, err := NewStore(&cfg.S3)
		if err != nil {
			return nil, err
		}
		store.prefix = cfg.FileStore.Prefix
		return store, nil
	})
}

// Store implements both port.FileStore (reading diligence documents
// from a bucket) and port.ObjectStorage (publishing artifacts).
type Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
	bucket    string
	prefix    string
}

func NewStore(cfg *config.S3Config) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		uploader:  manager.NewUploader(client),
		bucket:    cfg.Bucket,
	}, nil
}

// ListTree lists every object under the configured prefix and folds the
// flat key space into a folder hierarchy.
func (s *Store) ListTree(ctx context.Context) (*domain.FolderNode, error) {
	prefix := strings.TrimLeft(s.prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrTreeListFailed, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			keys = append(keys, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(keys)

	root := &domain.FolderNode{Name: "/"}
	for _, key := range keys {
		insertKey(root, key, "/"+key)
	}
	return root, nil
}

// insertKey threads a slash-separated key through the tree, creating
// intermediate folders as needed.
func insertKey(node *domain.FolderNode, key, fullPath string) {
	slash := strings.IndexByte(key, '/')
	if slash < 0 {
		node.Children = append(node.Children, domain.DocumentEntry(domain.DocumentRecord{
			Name: key,
			Path: fullPath,
		}))
		return
	}

	dirName := key[:slash]
	rest := key[slash+1:]
	for _, child := range node.Children {
		if child.Folder != nil && child.Folder.Name == dirName {
			insertKey(child.Folder, rest, fullPath)
			return
		}
	}
	folder := &domain.FolderNode{Name: dirName}
	node.Children = append(node.Children, domain.FolderEntry(folder))
	insertKey(folder, rest, fullPath)
}

// Download fetches one document by its tree-relative path.
func (s *Store) Download(ctx context.Context, relativePath string) ([]byte, error) {
	key := strings.TrimLeft(relativePath, "/")
	if p := strings.TrimLeft(s.prefix, "/"); p != "" {
		key = strings.TrimRight(p, "/") + "/" + key
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, relativePath, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, relativePath, err)
	}
	return data, nil
}

func (s *Store) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(input.Bucket),
		Key:         aws.String(input.Key),
		Body:        input.Body,
		ContentType: aws.String(input.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	etag := ""
	if result.ETag != nil {
		etag = *result.ETag
	}
	return &port.UploadOutput{
		Location: result.Location,
		ETag:     etag,
	}, nil
}

func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}

func (s *Store) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(time.Duration(expirySeconds)*time.Second))
	if err != nil {
		return "", fmt.Errorf("s3 presign: %w", err)
	}
	return result.URL, nil
}
