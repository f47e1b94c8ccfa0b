package loader

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// uploadToS3 puts payload at key in stage's bucket, the object-storage
// hop Snowflake and Redshift COPY both stage through before the
// database-side COPY statement runs (spec.md §4.5.1).
func uploadToS3(ctx context.Context, stage *StageStorage, key string, payload []byte) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(stage.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			stage.AccessKey, stage.SecretKey, "")),
	)
	if err != nil {
		return err
	}
	client := s3.NewFromConfig(cfg)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(stage.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(payload),
	})
	return err
}
