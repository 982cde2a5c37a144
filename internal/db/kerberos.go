package db

import (
	"fmt"
	"strings"

	// Registers the "krb5" integrated authenticator with the driver.
	_ "github.com/microsoft/go-mssqldb/integratedauth/krb5"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

const krb5Authenticator = "krb5"

// usesKerberos reports whether a trusted connection authenticates through
// krb5. Windows keeps SSPI unless Kerberos settings are given explicitly.
func usesKerberos(config *csvstage.ConnectionConfig, goos string) bool {
	if config.AuthMethod != csvstage.AuthMethodTrusted {
		return false
	}
	return goos != "windows" || config.Kerberos.IsSet()
}

// kerberosParams returns the driver parameters for krb5 authentication.
// A keytab takes precedence; otherwise the credential cache written by kinit
// is used, defaulting to /tmp/krb5cc_<uid> when uid is known.
func kerberosParams(k csvstage.KerberosConfig, uid int) map[string]string {
	params := map[string]string{"authenticator": krb5Authenticator}
	if k.ConfigFile != "" {
		params["krb5-configfile"] = k.ConfigFile
	}
	if k.Realm != "" {
		params["krb5-realm"] = k.Realm
	}
	if k.KeytabFile != "" {
		params["krb5-keytabfile"] = strings.TrimPrefix(k.KeytabFile, "FILE:")
		return params
	}

	ccache := strings.TrimPrefix(k.CredCacheFile, "FILE:")
	if ccache == "" && uid >= 0 {
		ccache = fmt.Sprintf("/tmp/krb5cc_%d", uid)
	}
	if ccache != "" {
		params["krb5-credcachefile"] = ccache
	}
	return params
}
