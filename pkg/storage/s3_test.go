package storage_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/colissimo/pkg/storage"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, params)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Put(t *testing.T) {
	putter := &fakePutter{}
	store := storage.NewS3StoreWithClient(putter, "labels-bucket", "colissimo/")

	key, err := store.Put(context.Background(), "order-42.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "colissimo/order-42.pdf", key)

	require.Len(t, putter.inputs, 1)
	in := putter.inputs[0]
	assert.Equal(t, "labels-bucket", aws.ToString(in.Bucket))
	assert.Equal(t, "colissimo/order-42.pdf", aws.ToString(in.Key))
	assert.Equal(t, types.ObjectCannedACLPublicRead, in.ACL)
	assert.Equal(t, "application/pdf", aws.ToString(in.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(in.ContentLength))
	assert.Equal(t, "%PDF", string(putter.bodies[0]))
}

func TestS3Store_Put_NoPrefix(t *testing.T) {
	putter := &fakePutter{}
	store := storage.NewS3StoreWithClient(putter, "labels-bucket", "")

	key, err := store.Put(context.Background(), "order-42.zpl", []byte("^XA^XZ"))
	require.NoError(t, err)
	assert.Equal(t, "order-42.zpl", key)
	assert.Equal(t, "text/plain", aws.ToString(putter.inputs[0].ContentType))
}

func TestS3Store_Put_Error(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	store := storage.NewS3StoreWithClient(putter, "labels-bucket", "colissimo")

	_, err := store.Put(context.Background(), "order-42.pdf", []byte("%PDF"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
