package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

// AzureTokenProvider acquires Entra ID access tokens for Azure SQL.
type AzureTokenProvider struct {
	credential  azcore.TokenCredential
	description string
}

// NewAzureTokenProvider picks Service Principal auth when tenant, client and
// secret are all configured. Otherwise the DefaultAzureCredential chain is
// used, which tries in order:
//  1. Environment variables (AZURE_CLIENT_ID, AZURE_CLIENT_SECRET, AZURE_TENANT_ID)
//  2. Workload Identity (for Kubernetes)
//  3. Managed Identity (for Azure VMs, App Service, etc.)
//  4. Azure CLI (for local development)
func NewAzureTokenProvider(tenantID, clientID, clientSecret string) (*AzureTokenProvider, error) {
	if tenantID != "" && clientID != "" && clientSecret != "" {
		cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal credential: %w", err)
		}
		return NewAzureTokenProviderWithCredential(cred,
			fmt.Sprintf("AzureServicePrincipal(tenant=%s, client=%s)", tenantID, clientID)), nil
	}

	var opts *azidentity.DefaultAzureCredentialOptions
	if tenantID != "" {
		opts = &azidentity.DefaultAzureCredentialOptions{TenantID: tenantID}
	}
	cred, err := azidentity.NewDefaultAzureCredential(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return NewAzureTokenProviderWithCredential(cred, "AzureDefaultCredential"), nil
}

// NewAzureTokenProviderWithCredential wraps an existing credential.
func NewAzureTokenProviderWithCredential(cred azcore.TokenCredential, description string) *AzureTokenProvider {
	if cred == nil {
		panic("credential cannot be nil")
	}
	return &AzureTokenProvider{credential: cred, description: description}
}

func (p *AzureTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzureSQLScope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *AzureTokenProvider) String() string {
	return p.description
}

// accessTokenFunc adapts a TokenProvider to the callback go-mssqldb invokes
// for every new physical connection.
func accessTokenFunc(provider TokenProvider, logger csvstage.Logger) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		token, expiresOn, err := provider.GetToken(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to acquire token from %s: %w", provider, err)
		}
		if remaining := time.Until(expiresOn); remaining < 5*time.Minute {
			logger.Info("Warning: %s token expires in %v", provider, remaining.Round(time.Second))
		}
		return token, nil
	}
}

var _ TokenProvider = (*AzureTokenProvider)(nil)
