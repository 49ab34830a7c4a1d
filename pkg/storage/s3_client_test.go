package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockS3 is a mock implementation of the S3API interface
type MockS3 struct {
	mock.Mock
}

func (m *MockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.UploadPartOutput), args.Error(1)
}

func (m *MockS3) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.CreateMultipartUploadOutput), args.Error(1)
}

func (m *MockS3) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.CompleteMultipartUploadOutput), args.Error(1)
}

func (m *MockS3) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.AbortMultipartUploadOutput), args.Error(1)
}

func (m *MockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *MockS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func (m *MockS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func keyIs(key string) interface{} {
	return mock.MatchedBy(func(in interface{}) bool {
		switch v := in.(type) {
		case *s3.PutObjectInput:
			return aws.ToString(v.Key) == key
		case *s3.GetObjectInput:
			return aws.ToString(v.Key) == key
		case *s3.DeleteObjectInput:
			return aws.ToString(v.Key) == key
		}
		return false
	})
}

func TestS3Store_Save(t *testing.T) {
	client := new(MockS3)
	store := NewS3Store(client, "certs-bucket", "documents")

	client.On("PutObject", mock.Anything, keyIs("documents/abc.pdf")).Return(&s3.PutObjectOutput{}, nil)

	require.NoError(t, store.Save(context.Background(), "abc.pdf", strings.NewReader("%PDF")))
	client.AssertExpectations(t)
}

func TestS3Store_Open(t *testing.T) {
	client := new(MockS3)
	store := NewS3Store(client, "certs-bucket", "documents")

	client.On("GetObject", mock.Anything, keyIs("documents/abc.pdf")).
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("%PDF"))}, nil)
	client.On("GetObject", mock.Anything, keyIs("documents/missing.pdf")).
		Return(nil, &types.NoSuchKey{})
	client.On("GetObject", mock.Anything, keyIs("documents/broken.pdf")).
		Return(nil, errors.New("connection reset"))

	rc, err := store.Open(context.Background(), "abc.pdf")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "%PDF", string(data))

	_, err = store.Open(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrNotExist)

	_, err = store.Open(context.Background(), "broken.pdf")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotExist)
}

func TestS3Store_Delete(t *testing.T) {
	client := new(MockS3)
	store := NewS3Store(client, "certs-bucket", "")

	client.On("DeleteObject", mock.Anything, keyIs("abc.pdf")).Return(&s3.DeleteObjectOutput{}, nil)

	require.NoError(t, store.Delete(context.Background(), "abc.pdf"))
	client.AssertExpectations(t)
}

func TestS3Store_RemoveOlderThan(t *testing.T) {
	client := new(MockS3)
	store := NewS3Store(client, "certs-bucket", "documents")

	cutoff := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	client.On("ListObjectsV2", mock.Anything, mock.Anything).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("documents/old.pdf"), LastModified: aws.Time(cutoff.Add(-time.Hour))},
			{Key: aws.String("documents/new.pdf"), LastModified: aws.Time(cutoff.Add(time.Hour))},
		},
	}, nil).Once()
	client.On("DeleteObject", mock.Anything, keyIs("documents/old.pdf")).Return(&s3.DeleteObjectOutput{}, nil).Once()

	removed, err := store.RemoveOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	client.AssertExpectations(t)
}
