package config

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAWSConfig_LoadAWSStatic(t *testing.T) {
	c := AWSConfig{
		Region:          "eu-central-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	}

	cfg, err := c.LoadAWS(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", cfg.Region)

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
}

func TestAWSConfig_EndpointOverride(t *testing.T) {
	assert.Nil(t, (&AWSConfig{}).EndpointOverride())
	assert.Equal(t, "http://localhost:4566", aws.ToString((&AWSConfig{Endpoint: "http://localhost:4566"}).EndpointOverride()))
}
