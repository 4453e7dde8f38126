package s3

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// NewBasicClient uses the default AWS credential chain for the bucket's region.
func NewBasicClient(b AwsS3Bucket) (BasicClient, error) {
	awsConfig := aws.NewConfig()
	awsConfig.Region = aws.String(b.Region)
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create AWS session for region %v", b.Region)
	}
	return NewBasicClientWithAPI(b, s3.New(sess)), nil
}

func NewBasicClientWithAPI(b AwsS3Bucket, api s3iface.S3API) BasicClient {
	return &basicClient{loc: b, api: api}
}

type basicClient struct {
	loc AwsS3Bucket
	api s3iface.S3API
}

func (s *basicClient) BufferPut(ctx context.Context, key string, dataBuf io.ReadSeeker) error {
	_, err := s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.loc.Name),
		Key:    aws.String(s.loc.Key(key)),
		Body:   dataBuf,
	})
	if err != nil {
		return errors.Wrapf(err, "error uploading to s3://%v/%v", s.loc.Name, s.loc.Key(key))
	}
	return nil
}

func (s *basicClient) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.loc.Name),
		Key:    aws.String(s.loc.Key(key)),
	})
	return err
}
