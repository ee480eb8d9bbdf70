package config

const (
	KeyJGIUser             = "JGI_USER"
	KeyJGIPassword         = "JGI_PW"
	KeyGlobusUser          = "GLOBUS_USER"
	KeyGlobusMyProxyUser   = "GLOBUS_MYPROXY_USER"
	KeyGlobusMyProxyPW     = "GLOBUS_MYPROXY_PW"
	KeyGlobusClientID      = "GLOBUS_CLIENT_ID"
	KeyGlobusClientSecret  = "GLOBUS_CLIENT_SECRET"
	KeyCatalogUser         = "DC_USER"
	KeyCatalogPassword     = "DC_PW"
	KeyCatalogClientID     = "DC_CLIENT_ID"
	KeyCatalogClientSecret = "DC_CLIENT_SECRET"
	KeyDotenvPath          = "SEQSYNC_DOTENV_PATH"
)

// Credentials are the secrets each remote service needs. They only ever come
// from the environment, never the JSON config.
type Credentials struct {
	JGIUser               string
	JGIPassword           string
	GlobusUser            string
	GlobusMyProxyUser     string
	GlobusMyProxyPassword string
	GlobusClientID        string
	GlobusClientSecret    string
	CatalogUser           string
	CatalogPassword       string
	CatalogClientID       string
	CatalogClientSecret   string
}

// RequiredKeys lists the credentials an operation cannot run without.
func RequiredKeys(op string) []string {
	switch op {
	case "stage":
		return []string{KeyJGIUser, KeyJGIPassword, KeyGlobusUser}
	case "transfer":
		return []string{KeyJGIUser, KeyJGIPassword, KeyGlobusClientID, KeyGlobusClientSecret,
			KeyGlobusMyProxyUser, KeyGlobusMyProxyPW}
	case "publish":
		return []string{KeyGlobusClientID, KeyGlobusClientSecret, KeyCatalogUser, KeyCatalogPassword,
			KeyCatalogClientID, KeyCatalogClientSecret}
	default:
		return nil
	}
}

// LoadCredentials checks the keys op requires and reads every credential.
func LoadCredentials(c Configer, op string) (Credentials, error) {
	if err := c.RequireKeys(RequiredKeys(op)...); err != nil {
		return Credentials{}, err
	}

	return Credentials{
		JGIUser:               c.GetKey(KeyJGIUser),
		JGIPassword:           c.GetKey(KeyJGIPassword),
		GlobusUser:            c.GetKey(KeyGlobusUser),
		GlobusMyProxyUser:     c.GetKey(KeyGlobusMyProxyUser),
		GlobusMyProxyPassword: c.GetKey(KeyGlobusMyProxyPW),
		GlobusClientID:        c.GetKey(KeyGlobusClientID),
		GlobusClientSecret:    c.GetKey(KeyGlobusClientSecret),
		CatalogUser:           c.GetKey(KeyCatalogUser),
		CatalogPassword:       c.GetKey(KeyCatalogPassword),
		CatalogClientID:       c.GetKey(KeyCatalogClientID),
		CatalogClientSecret:   c.GetKey(KeyCatalogClientSecret),
	}, nil
}
