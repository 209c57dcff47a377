package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Secrets defines an interface for secret parameter lookup to enable mocking
//
//go:generate mockgen -source=secrets.go -destination=../mocks/secrets.go -package=mocks -mock_names=Secrets=MockSecrets
type Secrets interface {
	// GetParameter fetches a decrypted parameter value. Values are memoized
	// for the lifetime of the process; the backing store is only hit once
	// per parameter name.
	GetParameter(ctx context.Context, name string) (string, error)
}

type ssmSecrets struct {
	client *ssm.Client

	mu    sync.Mutex
	cache map[string]string
}

// NewSecrets creates an SSM Parameter Store backed secrets source
func NewSecrets(ctx context.Context, region string) (Secrets, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &ssmSecrets{
		client: ssm.NewFromConfig(awsCfg),
		cache:  make(map[string]string),
	}, nil
}

func (s *ssmSecrets) GetParameter(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache[name]; ok {
		return v, nil
	}

	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", name)
	}

	s.cache[name] = *out.Parameter.Value
	return *out.Parameter.Value, nil
}
