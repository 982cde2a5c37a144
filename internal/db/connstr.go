package db

import (
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/vvka-141/csvstage/pkg/csvstage"
)

// ServerAddress is a parsed SQL Server instance identifier.
type ServerAddress struct {
	Host     string
	Instance string
	Port     int
}

// ParseServer splits a SQL Server instance identifier.
//
// Supported forms:
//   - host
//   - host\instance (named instance, resolved through SQL Browser)
//   - host,port
//   - tcp:host,port
//
// "." and "(local)" mean localhost. LocalDB is rejected: it only listens on
// a named pipe, which the driver cannot reach.
func ParseServer(identifier string) (ServerAddress, error) {
	s := strings.TrimSpace(identifier)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "tcp:"), "TCP:")
	if s == "" {
		return ServerAddress{}, fmt.Errorf("server identifier is empty: %w", csvstage.ErrInvalidConfig)
	}

	var addr ServerAddress
	if host, port, ok := strings.Cut(s, ","); ok {
		p, err := strconv.Atoi(strings.TrimSpace(port))
		if err != nil || p < 1 || p > 65535 {
			return ServerAddress{}, fmt.Errorf("invalid port in server identifier %q: %w", identifier, csvstage.ErrInvalidConfig)
		}
		addr.Port = p
		s = strings.TrimSpace(host)
	}

	if host, instance, ok := strings.Cut(s, `\`); ok {
		if instance == "" {
			return ServerAddress{}, fmt.Errorf("empty instance name in server identifier %q: %w", identifier, csvstage.ErrInvalidConfig)
		}
		addr.Instance = instance
		s = host
	}

	switch strings.ToLower(s) {
	case ".", "(local)":
		s = "localhost"
	case "(localdb)":
		return ServerAddress{}, fmt.Errorf("LocalDB %q is not reachable over TCP; use the instance's TCP port as localhost,port: %w", identifier, csvstage.ErrInvalidConfig)
	case "":
		return ServerAddress{}, fmt.Errorf("empty host in server identifier %q: %w", identifier, csvstage.ErrInvalidConfig)
	}
	addr.Host = s

	return addr, nil
}

// String renders the address in host\instance or host,port form.
func (a ServerAddress) String() string {
	s := a.Host
	if a.Instance != "" {
		s += `\` + a.Instance
	}
	if a.Port != 0 {
		s += "," + strconv.Itoa(a.Port)
	}
	return s
}

// BuildConnectionString converts a ConnectionConfig to a sqlserver:// URL
// understood by go-mssqldb.
// Credentials are only embedded for SQL authentication; trusted connections
// use the process identity and Azure connections supply a token separately.
// Outside Windows, trusted connections authenticate through krb5.
func BuildConnectionString(config *csvstage.ConnectionConfig) (string, error) {
	return buildConnectionString(config, runtime.GOOS, os.Getuid())
}

func buildConnectionString(config *csvstage.ConnectionConfig, goos string, uid int) (string, error) {
	addr, err := ParseServer(config.Server)
	if err != nil {
		return "", err
	}

	u := &url.URL{
		Scheme: "sqlserver",
		Host:   addr.Host,
	}
	if addr.Port != 0 {
		u.Host = fmt.Sprintf("%s:%d", addr.Host, addr.Port)
	}
	if addr.Instance != "" {
		u.Path = "/" + addr.Instance
	}

	if config.AuthMethod == csvstage.AuthMethodSQL && config.Username != "" {
		u.User = url.UserPassword(config.Username, config.Password)
	}

	query := url.Values{}
	query.Set("database", config.Database)
	if config.AppName != "" {
		query.Set("app name", config.AppName)
	}
	if config.Encrypt != "" {
		query.Set("encrypt", config.Encrypt)
	}
	if config.TrustServerCertificate {
		query.Set("TrustServerCertificate", "true")
	}
	if config.ConnectTimeout > 0 {
		query.Set("connection timeout", strconv.Itoa(int(config.ConnectTimeout.Seconds())))
	}

	if usesKerberos(config, goos) {
		for key, value := range kerberosParams(config.Kerberos, uid) {
			query.Set(key, value)
		}
		// A keytab login names its principal through the user id.
		if config.Kerberos.KeytabFile != "" && config.Username != "" {
			u.User = url.User(config.Username)
		}
	}

	for key, value := range config.AdditionalParams {
		query.Set(key, value)
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}
