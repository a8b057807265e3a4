package config

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/sirupsen/logrus"
)

// SecretFetcher returns the string value of a named secret.
type SecretFetcher func(name string) (string, error)

// NewSecretsManagerFetcher reads secrets from AWS Secrets Manager.
func NewSecretsManagerFetcher(awsCfg *AWSConfig, logger *logrus.Logger) SecretFetcher {
	return func(name string) (string, error) {
		sessConfig := &aws.Config{
			Region: aws.String(awsCfg.Region),
		}
		if awsCfg.Profile != "" {
			sessConfig.WithCredentialsChainVerboseErrors(true)
		}

		sess, err := session.NewSessionWithOptions(session.Options{
			Config:  *sessConfig,
			Profile: awsCfg.Profile,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create AWS session: %w", err)
		}

		svc := secretsmanager.New(sess)
		result, err := svc.GetSecretValue(&secretsmanager.GetSecretValueInput{
			SecretId: aws.String(name),
		})
		if err != nil {
			return "", fmt.Errorf("failed to retrieve secret '%s': %w", name, err)
		}
		if result.SecretString == nil {
			return "", fmt.Errorf("secret '%s' has no string value", name)
		}

		logger.WithField("secret_name", name).Info("Successfully retrieved secret from Secrets Manager")
		return *result.SecretString, nil
	}
}

// ResolveSecrets replaces secret-backed settings with their fetched values.
func ResolveSecrets(cfg *Config, fetch SecretFetcher) error {
	if cfg.JWT.SecretFromSecrets {
		name := cfg.JWT.SecretName
		if name == "" {
			name = cfg.AWS.SecretName
		}
		secret, err := fetch(name)
		if err != nil {
			return fmt.Errorf("failed to get JWT secret from secrets: %w", err)
		}
		if secret == "" {
			return fmt.Errorf("JWT secret '%s' is empty", name)
		}
		cfg.JWT.Secret = secret
	}

	if cfg.Redis.Enabled && cfg.Redis.PasswordFromSecrets {
		password, err := fetch(cfg.AWS.SecretName)
		if err != nil {
			return fmt.Errorf("failed to get Redis password from secrets: %w", err)
		}
		cfg.Redis.Password = password
	}

	return nil
}
