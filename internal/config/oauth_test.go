package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInstalled() OAuthInstalled {
	return OAuthInstalled{
		ClientID:                "client-id.apps.googleusercontent.com",
		ProjectID:               "roster-advisor",
		AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
		TokenURI:                "https://oauth2.googleapis.com/token",
		AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
		ClientSecret:            "secret",
		RedirectURIs:            []string{"http://localhost"},
	}
}

func TestValidateOAuthClient(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*OAuthInstalled)
		wantErr bool
	}{
		{name: "valid", mutate: func(*OAuthInstalled) {}},
		{name: "missing client id", mutate: func(i *OAuthInstalled) { i.ClientID = "" }, wantErr: true},
		{name: "missing secret", mutate: func(i *OAuthInstalled) { i.ClientSecret = "" }, wantErr: true},
		{name: "auth uri not a url", mutate: func(i *OAuthInstalled) { i.AuthURI = "not-a-valid-url" }, wantErr: true},
		{name: "no redirect uris", mutate: func(i *OAuthInstalled) { i.RedirectURIs = nil }, wantErr: true},
		{name: "bad redirect uri", mutate: func(i *OAuthInstalled) { i.RedirectURIs = []string{"not a valid uri"} }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			installed := validInstalled()
			tc.mutate(&installed)

			err := ValidateOAuthClient(&OAuthClientConfig{Installed: installed})
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "validation failed")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func writeOAuthFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oauthClient.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOAuthClientFromPath(t *testing.T) {
	path := writeOAuthFile(t, `{
  "installed": {
    "client_id": "client-id.apps.googleusercontent.com",
    "project_id": "roster-advisor",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
    "client_secret": "secret",
    "redirect_uris": ["http://localhost:3000", "urn:ietf:wg:oauth:2.0:oob"]
  }
}`)

	cfg, err := LoadOAuthClientFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "client-id.apps.googleusercontent.com", cfg.Installed.ClientID)
	assert.Equal(t, "roster-advisor", cfg.Installed.ProjectID)
	assert.Equal(t, "https://oauth2.googleapis.com/token", cfg.Installed.TokenURI)
	require.Len(t, cfg.Installed.RedirectURIs, 2)
	assert.Equal(t, "http://localhost:3000", cfg.Installed.RedirectURIs[0])
}

func TestLoadOAuthClientFromPath_Malformed(t *testing.T) {
	path := writeOAuthFile(t, `{"installed": {"client_id" "missing colon"}}`)

	_, err := LoadOAuthClientFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse oauth client file")
}

func TestLoadOAuthClientFromPath_MissingSecret(t *testing.T) {
	path := writeOAuthFile(t, `{
  "installed": {
    "client_id": "client-id",
    "project_id": "roster-advisor",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
    "redirect_uris": ["http://localhost"]
  }
}`)

	_, err := LoadOAuthClientFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadOAuthClientFromPath_FileNotFound(t *testing.T) {
	_, err := LoadOAuthClientFromPath("/nonexistent/path/oauthClient.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read oauth client file")
}
