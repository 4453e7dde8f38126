package s3

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// AwsS3Bucket is the bucket location behind an external stage.
type AwsS3Bucket struct {
	Name   string
	Prefix string // no leading or trailing slash.
	Region string
}

// String renders the bucket as an s3:// URL.
func (d AwsS3Bucket) String() string {
	if d.Prefix == "" {
		return fmt.Sprintf("s3://%v", d.Name)
	}
	return fmt.Sprintf("s3://%v/%v", d.Name, d.Prefix)
}

// Key returns the object key for key relative to the prefix.
func (d AwsS3Bucket) Key(key string) string {
	if d.Prefix == "" {
		return key
	}
	return d.Prefix + "/" + key
}

// ParseDSN expects bucketPrefix to be of the form [s3://]<bucket>[/<prefix>].
func ParseDSN(bucketPrefix string, region string) (retval AwsS3Bucket, err error) {
	if !strings.Contains(bucketPrefix, "://") {
		bucketPrefix = "s3://" + bucketPrefix
	}
	u, err := url.Parse(bucketPrefix)
	if err != nil {
		return retval, errors.Wrap(err, "error parsing S3 URL")
	}
	if u.Scheme != "s3" {
		return retval, errors.Errorf("expected S3 URL scheme \"s3\" but got %q", u.Scheme)
	}
	if region == "" {
		return retval, errors.New("value expected for bucket region")
	}
	if u.Host == "" {
		return retval, errors.Errorf("no bucket name found in %q", bucketPrefix)
	}
	return AwsS3Bucket{Name: u.Host, Prefix: strings.Trim(u.Path, "/"), Region: region}, nil
}

// ParseStageLocation returns the location set by the snowflake s3_bucket, s3_prefix and s3_region settings.
// bucket is a name or an s3:// URL; prefix is appended to any path in the URL.
func ParseStageLocation(bucket string, prefix string, region string) (AwsS3Bucket, error) {
	b, err := ParseDSN(bucket, region)
	if err != nil {
		return b, errors.Wrapf(err, "invalid stage bucket %q", bucket)
	}
	if p := strings.Trim(prefix, "/"); p != "" {
		b.Prefix = path.Join(b.Prefix, p)
	}
	return b, nil
}
