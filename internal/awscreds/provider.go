package awscreds

import (
	"context"

	"github.com/chukul/cloudtop/internal/sigv4"
)

// ProfileCredentialsProvider adapts a Service bound to one profile into
// sigv4.CredentialsProvider, so the signer never needs to know about profiles,
// SSO, or IMDS - only "give me valid credentials right now".
type ProfileCredentialsProvider struct {
	Service *Service
	Profile string
}

// Resolve satisfies sigv4.CredentialsProvider.
func (p ProfileCredentialsProvider) Resolve(ctx context.Context) (sigv4.Credentials, error) {
	creds, err := p.Service.Resolve(ctx, p.Profile)
	if err != nil {
		return sigv4.Credentials{}, err
	}
	return sigv4.Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
	}, nil
}
