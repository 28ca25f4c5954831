package s3api

import (
	"context"
	stderrors "errors"
	"net"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/input-output-hk/s3-checksum/errors"
)

// TranslateError converts an SDK error into an *errors.Error carrying the
// matching sentinel. Unrecognized errors are wrapped unchanged.
func TranslateError(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	return errors.NewObjectError(op, bucket, key, classify(err))
}

func classify(err error) error {
	var (
		noSuchKey    *types.NoSuchKey
		noSuchBucket *types.NoSuchBucket
		apiErr       smithy.APIError
		netErr       net.Error
	)

	switch {
	case stderrors.As(err, &noSuchKey):
		return errors.ErrObjectNotFound
	case stderrors.As(err, &noSuchBucket):
		return errors.ErrBucketNotFound
	case stderrors.As(err, &apiErr):
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return errors.ErrObjectNotFound
		case "NoSuchBucket":
			return errors.ErrBucketNotFound
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return stderrors.Join(errors.ErrAccessDenied, err)
		}
	case stderrors.Is(err, context.DeadlineExceeded):
		return stderrors.Join(errors.ErrTimeout, err)
	case stderrors.As(err, &netErr):
		return stderrors.Join(errors.ErrConnection, err)
	}
	return err
}
