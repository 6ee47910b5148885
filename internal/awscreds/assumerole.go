package awscreds

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssts "github.com/aws/aws-sdk-go-v2/service/sts"
)

// staticProvider adapts a resolved Credentials value into an aws.CredentialsProvider
// so the typed STS client can be constructed without going through the SDK's own
// config/credentials resolution; only the AssumeRole call itself is delegated to the
// SDK, see DESIGN.md.
type staticProvider struct {
	creds Credentials
}

func (p staticProvider) Retrieve(context.Context) (aws.Credentials, error) {
	out := aws.Credentials{
		AccessKeyID:     p.creds.AccessKeyID,
		SecretAccessKey: p.creds.SecretAccessKey,
		SessionToken:    p.creds.SessionToken,
	}
	if p.creds.ExpiresAt != nil {
		out.CanExpire = true
		out.Expires = *p.creds.ExpiresAt
	}
	return out, nil
}

// AssumeRole calls STS AssumeRole using the given source credentials, built from our
// own resolved Credentials rather than the SDK's shared-config profile loader.
func AssumeRole(ctx context.Context, source Credentials, roleARN, externalID, sessionName, region string) (Credentials, error) {
	cfg := aws.Config{
		Region:      region,
		Credentials: staticProvider{creds: source},
	}

	client := awssts.NewFromConfig(cfg)

	input := &awssts.AssumeRoleInput{
		RoleArn:         &roleARN,
		RoleSessionName: &sessionName,
	}
	if externalID != "" {
		input.ExternalId = &externalID
	}

	out, err := client.AssumeRole(ctx, input)
	if err != nil {
		return Credentials{}, fmt.Errorf("sts assume role %s: %w", roleARN, err)
	}

	exp := *out.Credentials.Expiration
	return Credentials{
		AccessKeyID:     *out.Credentials.AccessKeyId,
		SecretAccessKey: *out.Credentials.SecretAccessKey,
		SessionToken:    *out.Credentials.SessionToken,
		ExpiresAt:       &exp,
	}, nil
}
