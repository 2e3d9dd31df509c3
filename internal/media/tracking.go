package media

import (
	"errors"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// PublicPathMarker prefixes the bucket segment in public object URLs.
const PublicPathMarker = "/storage/v1/object/public/"

var ErrInvalidBaseURL = errors.New("media: public base url must be absolute")

var (
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*?\]\(([^)]+)\)`)
	htmlImagePattern     = regexp.MustCompile(`(?i)<img[^>]*\s+src=["']([^"']+)["'][^>]*>`)
	urlPattern           = regexp.MustCompile(`https?://[^\s)"'<>]+`)
)

// Locator maps between object keys and the public URLs served for them.
type Locator struct {
	origin string
	bucket string
}

// NewLocator builds a Locator for objects in bucket served under base.
func NewLocator(base, bucket string) (*Locator, error) {
	origin, ok := originOf(base)
	if !ok {
		return nil, ErrInvalidBaseURL
	}
	bucket = strings.Trim(strings.TrimSpace(bucket), "/")
	if bucket == "" {
		return nil, ErrBucketRequired
	}
	return &Locator{origin: origin, bucket: bucket}, nil
}

// Bucket returns the bucket name.
func (l *Locator) Bucket() string { return l.bucket }

// PublicURL returns the public URL for key.
func (l *Locator) PublicURL(key string) string {
	return l.origin + PublicPathMarker + l.bucket + "/" + strings.TrimLeft(key, "/")
}

// Key returns the object key addressed by raw when it points into this
// locator's bucket.
func (l *Locator) Key(raw string) (string, bool) {
	tracked, ok := PublicURLToTrackedPath(l.origin, raw)
	if !ok {
		return "", false
	}
	return l.relative(tracked)
}

// Keys extracts every object key of this bucket referenced by text.
func (l *Locator) Keys(text string) []string {
	var keys []string
	for _, tracked := range ExtractTrackedPaths(l.origin, text) {
		if key, ok := l.relative(tracked); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func (l *Locator) relative(tracked string) (string, bool) {
	prefix := l.bucket + "/"
	if !strings.HasPrefix(tracked, prefix) {
		return "", false
	}
	return strings.TrimPrefix(tracked, prefix), true
}

// PublicURLToTrackedPath converts a public object URL into "bucket/path".
// URLs from another origin, or without a bucket and path, are not tracked.
func PublicURLToTrackedPath(base, raw string) (string, bool) {
	origin, ok := originOf(base)
	if !ok {
		return "", false
	}
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	if strings.ToLower(parsed.Scheme)+"://"+strings.ToLower(parsed.Host) != origin {
		return "", false
	}

	idx := strings.Index(parsed.Path, PublicPathMarker)
	if idx == -1 {
		return "", false
	}
	rest := parsed.Path[idx+len(PublicPathMarker):]
	bucket, path, found := strings.Cut(rest, "/")
	if !found || bucket == "" || path == "" {
		return "", false
	}
	return bucket + "/" + path, true
}

// ExtractTrackedPaths collects tracked paths referenced from markdown images,
// HTML img tags and bare URLs in text. The result is sorted and deduplicated.
func ExtractTrackedPaths(base, text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	found := map[string]struct{}{}
	collect := func(raw string) {
		cleaned := strings.TrimSpace(raw)
		if fields := strings.Fields(cleaned); len(fields) > 0 {
			cleaned = fields[0]
		}
		cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "<"), ">")
		if tracked, ok := PublicURLToTrackedPath(base, cleaned); ok {
			found[tracked] = struct{}{}
		}
	}

	for _, match := range markdownImagePattern.FindAllStringSubmatch(text, -1) {
		collect(match[1])
	}
	for _, match := range htmlImagePattern.FindAllStringSubmatch(text, -1) {
		collect(match[1])
	}
	for _, match := range urlPattern.FindAllString(text, -1) {
		collect(match)
	}

	if len(found) == 0 {
		return nil
	}
	paths := make([]string, 0, len(found))
	for path := range found {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func originOf(base string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(base))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}
