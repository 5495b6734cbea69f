package reporters

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/samvad-hq/scrafurl/internal/domain"
)

// loadAWSConfig resolves the SDK config for a reporter, preferring static
// keys when both are set.
func loadAWSConfig(ctx context.Context, c AWSConfig) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(c.Region),
	}
	if c.AccessKey != "" && c.SecretKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}
	if c.Endpoint != "" {
		opts = append(opts, awscfg.WithBaseEndpoint(c.Endpoint))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// exchangeAttributes are the string attributes attached to queued messages.
func exchangeAttributes(ex domain.Exchange) map[string]string {
	attrs := map[string]string{
		"method":      ex.Method,
		"status_code": strconv.Itoa(ex.StatusCode),
	}
	if ex.Name != "" {
		attrs["exchange_name"] = ex.Name
	}
	return attrs
}
