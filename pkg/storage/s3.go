package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	log "github.com/sirupsen/logrus"
)

// S3Uploader is an Uploader backed by an S3 client.
type S3Uploader struct {
	logger log.FieldLogger
	s3     s3iface.S3API
}

// S3Uploader must implement the Uploader interface
var _ Uploader = &S3Uploader{}

func NewS3Uploader(logger log.FieldLogger, s3API s3iface.S3API) *S3Uploader {
	return &S3Uploader{
		logger: logger.WithField("component", "s3Uploader"),
		s3:     s3API,
	}
}

// Upload puts body at s3://bucket/key.
func (u *S3Uploader) Upload(ctx context.Context, bucket, key string, body []byte) error {
	u.logger.WithFields(log.Fields{
		"bucket": bucket,
		"key":    key,
		"bytes":  len(body),
	}).Infof("uploading to s3://%s/%s", bucket, key)

	_, err := u.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(ContentType(key)),
	})
	if err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to upload 's3://%s/%s': %w", bucket, key, err)
	}
	uploadsTotal.WithLabelValues("success").Inc()
	uploadedBytesTotal.Add(float64(len(body)))
	return nil
}
