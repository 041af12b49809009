package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Store is a read-only secret lookup.
type Store interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// ManagerStore reads secrets from AWS Secrets Manager.
type ManagerStore struct {
	client *secretsmanager.Client
}

// NewManagerStore initializes the Secrets Manager client using environment
// or shared AWS config.
func NewManagerStore(ctx context.Context, region string) (*ManagerStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &ManagerStore{client: secretsmanager.NewFromConfig(awsCfg)}, nil
}

// GetSecret fetches the current version of the named secret.
func (s *ManagerStore) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", &CredentialError{Provider: name, Err: err}
	}
	if out.SecretString == nil {
		return "", &CredentialError{Provider: name, Err: fmt.Errorf("secret %q has no string payload", name)}
	}
	return *out.SecretString, nil
}
