package publish

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	failures int
	calls    int
	inputs   []*s3.PutObjectInput
	bodies   [][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("service unavailable")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Publisher_Publish(t *testing.T) {
	fake := &fakeS3{}
	p := newS3Publisher(fake, S3Config{Bucket: "models", Prefix: "/football/v1/"})

	require.NoError(t, p.Publish(context.Background(), "team_features.csv", []byte("date,team\n")))

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "models", aws.ToString(in.Bucket))
	assert.Equal(t, "football/v1/team_features.csv", aws.ToString(in.Key))
	assert.Equal(t, "text/csv", aws.ToString(in.ContentType))
	assert.Equal(t, "date,team\n", string(fake.bodies[0]))
}

func TestS3Publisher_RetriesThenSucceeds(t *testing.T) {
	fake := &fakeS3{failures: 2}
	p := newS3Publisher(fake, S3Config{Bucket: "b", MaxAttempts: 3})
	p.backoff = 0

	require.NoError(t, p.Publish(context.Background(), "summary.md", []byte("# run")))
	assert.Equal(t, 3, fake.calls)
	assert.Equal(t, "text/markdown", aws.ToString(fake.inputs[0].ContentType))
}

func TestS3Publisher_GivesUp(t *testing.T) {
	fake := &fakeS3{failures: 10}
	p := newS3Publisher(fake, S3Config{Bucket: "b", MaxAttempts: 2})
	p.backoff = 0

	err := p.Publish(context.Background(), "x.csv", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 2, fake.calls)
}

func TestS3Publisher_KeyWithoutPrefix(t *testing.T) {
	p := newS3Publisher(&fakeS3{}, S3Config{Bucket: "b"})
	assert.Equal(t, "processed.csv", p.Key("processed.csv"))
}

func TestNewS3Publisher_RequiresBucket(t *testing.T) {
	_, err := NewS3Publisher(context.Background(), S3Config{})
	assert.Error(t, err)
}
