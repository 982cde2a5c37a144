package db

import (
	"fmt"
	"os"

	"github.com/vvka-141/csvstage/internal/config"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

// ConnFlags represents connection parameters from CLI flags.
//
// Note: Password is NOT included as a CLI flag for security reasons.
// Use $SQL_SERVER_PASSWORD or the interactive prompt instead.
type ConnFlags struct {
	Server                 string
	Database               string
	Username               string
	AuthMethod             string
	Encrypt                string
	TrustServerCertificate bool
	CloudSQLInstance       string
}

// AzureFlags represents Azure Entra ID CLI flags.
// These override the corresponding AZURE_* environment variables.
// Note: Client secret is NOT included as a CLI flag for security reasons.
// Use AZURE_CLIENT_SECRET environment variable instead.
type AzureFlags struct {
	TenantID string // Overrides AZURE_TENANT_ID
	ClientID string // Overrides AZURE_CLIENT_ID
}

// EnvVars holds the connection-related environment variables.
type EnvVars struct {
	SQL_SERVER_INSTANCE        string
	SQL_SERVER_DATABASE        string
	SQL_SERVER_AUTH            string
	SQL_SERVER_USER            string
	SQL_SERVER_PASSWORD        string
	CSVSTAGE_CLOUDSQL_INSTANCE string

	// Azure Entra ID environment variables (Azure SDK standard names)
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string

	// MIT Kerberos environment variables
	KRB5_CONFIG string
	KRB5_KTNAME string
	KRB5CCNAME  string
}

// LoadFromEnvironment reads the connection environment variables.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		SQL_SERVER_INSTANCE:        os.Getenv(csvstage.EnvServerInstance),
		SQL_SERVER_DATABASE:        os.Getenv(csvstage.EnvDatabase),
		SQL_SERVER_AUTH:            os.Getenv(csvstage.EnvAuthMethod),
		SQL_SERVER_USER:            os.Getenv(csvstage.EnvUser),
		SQL_SERVER_PASSWORD:        os.Getenv(csvstage.EnvPassword),
		CSVSTAGE_CLOUDSQL_INSTANCE: os.Getenv(csvstage.EnvCloudSQLInstance),
		AZURE_TENANT_ID:            os.Getenv(csvstage.EnvAzureTenantID),
		AZURE_CLIENT_ID:            os.Getenv(csvstage.EnvAzureClientID),
		AZURE_CLIENT_SECRET:        os.Getenv(csvstage.EnvAzureSecret),
		KRB5_CONFIG:                os.Getenv(csvstage.EnvKrb5Config),
		KRB5_KTNAME:                os.Getenv(csvstage.EnvKrb5Keytab),
		KRB5CCNAME:                 os.Getenv(csvstage.EnvKrb5CredCache),
	}
}

// ResolveConnectionConfig resolves connection parameters with the precedence
//
//  1. CLI flag (highest priority)
//  2. Environment variable
//  3. csvstage.yaml
//  4. Default value (lowest priority)
//
// When no auth method is named anywhere but Azure tenant or client IDs are
// present, Azure Entra ID authentication is selected.
// Missing required values are left empty for LoadConfig.Validate to report.
func ResolveConnectionConfig(
	flags *ConnFlags,
	azureFlags *AzureFlags,
	env *EnvVars,
	project *config.ProjectConfig,
) (*csvstage.ConnectionConfig, error) {
	if flags == nil {
		flags = &ConnFlags{}
	}
	if azureFlags == nil {
		azureFlags = &AzureFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}

	var pc config.ConnectionConfig
	if project != nil {
		pc = project.Connection
	}

	cfg := &csvstage.ConnectionConfig{
		Server:                 firstNonEmpty(flags.Server, env.SQL_SERVER_INSTANCE, pc.Server),
		Database:               firstNonEmpty(flags.Database, env.SQL_SERVER_DATABASE, pc.Database),
		Username:               firstNonEmpty(flags.Username, env.SQL_SERVER_USER, pc.Username),
		Password:               env.SQL_SERVER_PASSWORD,
		AppName:                firstNonEmpty(pc.AppName, csvstage.DefaultAppName),
		Encrypt:                firstNonEmpty(flags.Encrypt, pc.Encrypt),
		TrustServerCertificate: flags.TrustServerCertificate || pc.TrustServerCertificate,
		CloudSQLInstance:       firstNonEmpty(flags.CloudSQLInstance, env.CSVSTAGE_CLOUDSQL_INSTANCE, pc.CloudSQLInstance),
		AzureTenantID:          firstNonEmpty(azureFlags.TenantID, env.AZURE_TENANT_ID, pc.AzureTenantID),
		AzureClientID:          firstNonEmpty(azureFlags.ClientID, env.AZURE_CLIENT_ID, pc.AzureClientID),
		AzureClientSecret:      env.AZURE_CLIENT_SECRET,
		Kerberos: csvstage.KerberosConfig{
			ConfigFile:    firstNonEmpty(env.KRB5_CONFIG, pc.Kerberos.ConfigFile),
			KeytabFile:    firstNonEmpty(env.KRB5_KTNAME, pc.Kerberos.KeytabFile),
			CredCacheFile: firstNonEmpty(env.KRB5CCNAME, pc.Kerberos.CredCacheFile),
			Realm:         pc.Kerberos.Realm,
		},
		AdditionalParams: make(map[string]string),
	}

	timeout, err := config.ParseDuration("connect_timeout", pc.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", csvstage.ErrInvalidConfig, err)
	}
	if timeout == 0 {
		timeout = csvstage.DefaultConnectTimeout
	}
	cfg.ConnectTimeout = timeout

	authValue := firstNonEmpty(flags.AuthMethod, env.SQL_SERVER_AUTH, pc.AuthMethod)
	method, err := csvstage.ParseAuthMethod(authValue)
	if err != nil {
		return nil, err
	}
	if authValue == "" && (cfg.AzureTenantID != "" || cfg.AzureClientID != "") {
		method = csvstage.AuthMethodAzure
	}
	cfg.AuthMethod = method

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
