// Package publish uploads a generated bundle to the website bucket and
// invalidates the distribution's cache.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/ziadkadry99/sitekit/internal/logging"
	"github.com/ziadkadry99/sitekit/internal/progress"
)

// deleteBatch is the DeleteObjects per-request key limit.
const deleteBatch = 1000

// Uploader puts one object. *manager.Uploader satisfies it.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// ObjectAPI lists and deletes bucket objects. *s3.Client satisfies it.
type ObjectAPI interface {
	s3.ListObjectsV2APIClient
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Invalidator creates cache invalidations. *cloudfront.Client satisfies it.
type Invalidator interface {
	CreateInvalidation(ctx context.Context, params *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
}

// CacheRule assigns CacheControl to keys matching the doublestar Pattern.
type CacheRule struct {
	Pattern      string
	CacheControl string
}

// Options describes one publish.
type Options struct {
	Dir             string
	Bucket          string
	DistributionID  string // empty skips invalidation
	Include         []string
	Exclude         []string
	DeleteStale     bool
	InvalidatePaths []string
	CacheRules      []CacheRule // first match wins
}

// Report summarizes a publish.
type Report struct {
	Uploaded       []string `json:"uploaded"`
	Deleted        []string `json:"deleted"`
	InvalidationID string   `json:"invalidation_id,omitempty"`
}

// Publisher uploads bundles.
type Publisher struct {
	uploader Uploader
	objects  ObjectAPI
	cdn      Invalidator
	reporter progress.Reporter
	logger   *slog.Logger
	newID    func() string
}

// New creates a Publisher from its collaborators. cdn may be nil when no
// invalidation is ever requested.
func New(uploader Uploader, objects ObjectAPI, cdn Invalidator, logger *slog.Logger) *Publisher {
	return &Publisher{
		uploader: uploader,
		objects:  objects,
		cdn:      cdn,
		reporter: progress.Nop{},
		logger:   logging.OrDiscard(logger),
		newID:    uuid.NewString,
	}
}

// NewAWS wires a Publisher to real S3 and CloudFront clients.
func NewAWS(s3c *s3.Client, cf *cloudfront.Client, logger *slog.Logger) *Publisher {
	return New(manager.NewUploader(s3c), s3c, cf, logger)
}

// WithReporter sets the progress reporter.
func (p *Publisher) WithReporter(r progress.Reporter) *Publisher {
	if r != nil {
		p.reporter = r
	}
	return p
}

// Publish uploads every selected file under opts.Dir, deletes stale keys if
// asked, then invalidates the distribution. Upload failures abort before any
// deletion or invalidation.
func (p *Publisher) Publish(ctx context.Context, opts Options) (*Report, error) {
	if opts.Bucket == "" {
		return nil, errors.New("publish: bucket is required")
	}
	logger := p.logger.With(logging.Bucket(opts.Bucket))

	keys, err := Collect(opts.Dir, opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("publish: no files selected in %s", opts.Dir)
	}

	report := &Report{}
	p.reporter.Start(len(keys))
	for i, key := range keys {
		if err := p.upload(ctx, opts, key); err != nil {
			p.reporter.Finish()
			return report, err
		}
		report.Uploaded = append(report.Uploaded, key)
		p.reporter.Update(i+1, key)
	}
	p.reporter.Finish()
	logger.Info("Uploaded bundle", logging.Count(len(report.Uploaded)))

	if opts.DeleteStale {
		deleted, err := p.deleteStale(ctx, opts, keys)
		report.Deleted = deleted
		if err != nil {
			return report, err
		}
		if len(deleted) > 0 {
			logger.Info("Deleted stale objects", logging.Count(len(deleted)))
		}
	}

	if opts.DistributionID != "" && len(opts.InvalidatePaths) > 0 {
		id, err := p.invalidate(ctx, opts.DistributionID, opts.InvalidatePaths)
		if err != nil {
			return report, err
		}
		report.InvalidationID = id
		logger.Info("Created invalidation", logging.Distribution(opts.DistributionID), slog.String("invalidation", id))
	}
	return report, nil
}

// Collect returns the slash-separated keys of files under dir that match any
// include pattern and no exclude pattern, sorted.
func Collect(dir string, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = []string{"**"}
	}
	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("publish: invalid pattern %q", pattern)
		}
	}

	var keys []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if matchAny(include, key) && !matchAny(exclude, key) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("publish: walking %s: %w", dir, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// ContentType guesses the MIME type from the key's extension.
func ContentType(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// CacheControl returns the header of the first rule matching key, or "".
func CacheControl(rules []CacheRule, key string) string {
	for _, r := range rules {
		if ok, _ := doublestar.Match(r.Pattern, key); ok {
			return r.CacheControl
		}
	}
	return ""
}

func (p *Publisher) upload(ctx context.Context, opts Options, key string) error {
	f, err := os.Open(filepath.Join(opts.Dir, filepath.FromSlash(key)))
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(opts.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ContentType(key)),
	}
	if cc := CacheControl(opts.CacheRules, key); cc != "" {
		input.CacheControl = aws.String(cc)
	}
	if _, err := p.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("publish: uploading %s: %w", key, err)
	}
	p.logger.Debug("Uploaded object", logging.Path(key))
	return nil
}

// deleteStale removes remote keys absent from keep. Keys matching an exclude
// pattern are left alone since they were never ours to manage.
func (p *Publisher) deleteStale(ctx context.Context, opts Options, keep []string) ([]string, error) {
	wanted := make(map[string]bool, len(keep))
	for _, k := range keep {
		wanted[k] = true
	}
	remote, err := p.listKeys(ctx, opts.Bucket)
	if err != nil {
		return nil, err
	}
	var stale []string
	for _, k := range remote {
		if !wanted[k] && !matchAny(opts.Exclude, k) {
			stale = append(stale, k)
		}
	}
	return p.deleteKeys(ctx, opts.Bucket, stale)
}

// EmptyBucket deletes every object in bucket, so that the stack can remove it.
func (p *Publisher) EmptyBucket(ctx context.Context, bucket string) ([]string, error) {
	keys, err := p.listKeys(ctx, bucket)
	if err != nil {
		return nil, err
	}
	deleted, err := p.deleteKeys(ctx, bucket, keys)
	if err != nil {
		return deleted, err
	}
	p.logger.Info("Emptied bucket", logging.Bucket(bucket), logging.Count(len(deleted)))
	return deleted, nil
}

func (p *Publisher) listKeys(ctx context.Context, bucket string) ([]string, error) {
	var keys []string
	pager := s3.NewListObjectsV2Paginator(p.objects, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("publish: listing %s: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (p *Publisher) deleteKeys(ctx context.Context, bucket string, keys []string) ([]string, error) {
	var deleted []string
	for start := 0; start < len(keys); start += deleteBatch {
		end := min(start+deleteBatch, len(keys))
		ids := make([]s3types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			ids = append(ids, s3types.ObjectIdentifier{Key: aws.String(k)})
		}
		out, err := p.objects.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, fmt.Errorf("publish: deleting objects: %w", err)
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return deleted, fmt.Errorf("publish: deleting %s: %s", aws.ToString(e.Key), aws.ToString(e.Message))
		}
		deleted = append(deleted, keys[start:end]...)
	}
	return deleted, nil
}

func (p *Publisher) invalidate(ctx context.Context, distributionID string, paths []string) (string, error) {
	if p.cdn == nil {
		return "", errors.New("publish: no CloudFront client configured")
	}
	items := make([]string, 0, len(paths))
	for _, ip := range paths {
		if !strings.HasPrefix(ip, "/") {
			ip = "/" + ip
		}
		items = append(items, ip)
	}
	out, err := p.cdn.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(distributionID),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(p.newID()),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(int32(len(items))),
				Items:    items,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("publish: invalidating %s: %w", distributionID, err)
	}
	if out.Invalidation == nil {
		return "", nil
	}
	return aws.ToString(out.Invalidation.Id), nil
}

func matchAny(patterns []string, key string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, key); ok {
			return true
		}
	}
	return false
}
