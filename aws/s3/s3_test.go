package s3

import (
	"context"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 records calls.
type fakeS3 struct {
	s3iface.S3API
	putBuckets []string
	putKeys    []string
	putBodies  []string
	deleted    []string
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	b, _ := ioutil.ReadAll(in.Body)
	f.putBuckets = append(f.putBuckets, aws.StringValue(in.Bucket))
	f.putKeys = append(f.putKeys, aws.StringValue(in.Key))
	f.putBodies = append(f.putBodies, string(b))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(ctx aws.Context, in *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestBasicClient(t *testing.T) {
	ctx := context.Background()
	api := &fakeS3{}
	c := NewBasicClientWithAPI(AwsS3Bucket{Name: "bucket", Prefix: "stage", Region: "eu-west-1"}, api)
	// Test 1 - puts are prefixed.
	require.NoError(t, c.BufferPut(ctx, "run/y.csv.gz", strings.NewReader("3,4")))
	assert.Equal(t, []string{"bucket"}, api.putBuckets)
	assert.Equal(t, []string{"stage/run/y.csv.gz"}, api.putKeys)
	assert.Equal(t, []string{"3,4"}, api.putBodies)
	// Test 2 - deletes are prefixed.
	require.NoError(t, c.Delete(ctx, "run/y.csv.gz"))
	assert.Equal(t, []string{"stage/run/y.csv.gz"}, api.deleted)
}

func TestBasicClientNoPrefix(t *testing.T) {
	api := &fakeS3{}
	c := NewBasicClientWithAPI(AwsS3Bucket{Name: "bucket", Region: "eu-west-1"}, api)
	require.NoError(t, c.BufferPut(context.Background(), "a", strings.NewReader("")))
	assert.Equal(t, []string{"a"}, api.putKeys)
}

func TestParseDSN(t *testing.T) {
	cases := []struct {
		in      string
		region  string
		want    AwsS3Bucket
		wantErr bool
	}{
		{"s3://my-bucket/some/prefix/", "eu-west-2", AwsS3Bucket{Name: "my-bucket", Prefix: "some/prefix", Region: "eu-west-2"}, false},
		{"my-bucket", "us-east-1", AwsS3Bucket{Name: "my-bucket", Region: "us-east-1"}, false},
		{"gs://my-bucket/x", "us-east-1", AwsS3Bucket{}, true},
		{"s3://my-bucket/x", "", AwsS3Bucket{}, true},
		{"s3:///x", "us-east-1", AwsS3Bucket{}, true},
	}
	for idx, c := range cases {
		got, err := ParseDSN(c.in, c.region)
		if c.wantErr {
			assert.Error(t, err, "case %v", idx)
			continue
		}
		require.NoError(t, err, "case %v", idx)
		assert.Equal(t, c.want, got, "case %v", idx)
	}
	assert.Equal(t, "s3://my-bucket/some/prefix", AwsS3Bucket{Name: "my-bucket", Prefix: "some/prefix"}.String())
	assert.Equal(t, "s3://b", AwsS3Bucket{Name: "b"}.String())
}

func TestParseStageLocation(t *testing.T) {
	// Test 1 - the prefix setting is appended to the URL path.
	b, err := ParseStageLocation("s3://landing/exports/", "/snowxfer/", "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, AwsS3Bucket{Name: "landing", Prefix: "exports/snowxfer", Region: "eu-west-1"}, b)
	assert.Equal(t, "exports/snowxfer/run1/a.csv.gz", b.Key("run1/a.csv.gz"))
	// Test 2 - a plain bucket name.
	b, err = ParseStageLocation("landing", "", "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "s3://landing", b.String())
	assert.Equal(t, "k", b.Key("k"))
	// Test 3 - errors name the setting value.
	_, err = ParseStageLocation("gs://landing", "", "eu-west-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gs://landing")
}
