package ops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	ioxpkg "github.com/justapithecus/optree/iox"
	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
)

// S3Transfer failure tags.
const (
	S3TransferFailureNotFound     op.FailureTag = "notFound"
	S3TransferFailureAccessDenied op.FailureTag = "accessDenied"
	S3TransferFailureNetworkError op.FailureTag = "networkError"
)

// S3TransferDirection selects upload or download.
type S3TransferDirection string

const (
	S3TransferUpload   S3TransferDirection = "upload"
	S3TransferDownload S3TransferDirection = "download"
)

// S3TransferOp uploads or downloads a single object to/from S3 or an
// S3-compatible endpoint (R2, MinIO). Endpoint and UsePathStyle are
// left empty/false for real AWS S3.
type S3TransferOp struct {
	op.Base
	OpName       string
	Direction    S3TransferDirection
	Bucket       string
	Key          string
	Region       string
	Endpoint     string
	UsePathStyle bool

	// Data is the payload for an upload; ignored for a download.
	Data []byte

	client *s3.Client
}

// Name implements op.Op.
func (o *S3TransferOp) Name() string {
	if o.OpName != "" {
		return o.OpName
	}
	return "S3TransferOp"
}

// Run implements op.Op.
func (o *S3TransferOp) Run(ctx context.Context, _ *ioctx.Context) op.Outcome {
	client := o.client
	if client == nil {
		c, err := o.newClient(ctx)
		if err != nil {
			return o.FailWithUnknownError(fmt.Sprintf("s3transfer: %v", err))
		}
		client = c
	}

	switch o.Direction {
	case S3TransferUpload:
		return o.upload(ctx, client)
	case S3TransferDownload:
		return o.download(ctx, client)
	default:
		return o.FailWithUnknownError(fmt.Sprintf("s3transfer: unknown direction %q", o.Direction))
	}
}

func (o *S3TransferOp) newClient(ctx context.Context) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if o.Region != "" {
		opts = append(opts, config.WithRegion(o.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if o.Endpoint != "" {
		endpoint := o.Endpoint
		s3Opts = append(s3Opts, func(opt *s3.Options) { opt.BaseEndpoint = &endpoint })
	}
	if o.UsePathStyle {
		s3Opts = append(s3Opts, func(opt *s3.Options) { opt.UsePathStyle = true })
	}

	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

func (o *S3TransferOp) upload(ctx context.Context, client *s3.Client) op.Outcome {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &o.Bucket,
		Key:    &o.Key,
		Body:   bytes.NewReader(o.Data),
	})
	if err != nil {
		return o.classifyError(err)
	}
	return o.Succeed(len(o.Data))
}

func (o *S3TransferOp) download(ctx context.Context, client *s3.Client) op.Outcome {
	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &o.Bucket,
		Key:    &o.Key,
	})
	if err != nil {
		return o.classifyError(err)
	}
	defer ioxpkg.DiscardClose(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return o.FailWithUnknownError(fmt.Sprintf("s3transfer: read body: %v", err))
	}
	return o.Succeed(data)
}

// classifyError maps an AWS SDK API error to one of this Op's failure
// tags by inspecting the smithy error code, falling back to
// networkError for any other API error code and for non-API errors.
func (o *S3TransferOp) classifyError(err error) op.Outcome {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return o.Fail(S3TransferFailureNotFound, apiErr.ErrorMessage())
		case "AccessDenied":
			return o.Fail(S3TransferFailureAccessDenied, apiErr.ErrorMessage())
		default:
			return o.Fail(S3TransferFailureNetworkError, apiErr.ErrorMessage())
		}
	}
	return o.Fail(S3TransferFailureNetworkError, err.Error())
}
