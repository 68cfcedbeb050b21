package internal

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Auth.AuthEnabled() {
		t.Error("default config must not enable auth")
	}
	if got := cfg.App.HTTP.Address(); got != ":8080" {
		t.Errorf("address = %q, want :8080", got)
	}
}

func TestAuthConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     AuthConfig
		wantErr bool
		enabled bool
	}{
		{"empty mode defaults to disabled", AuthConfig{}, false, false},
		{"disabled", AuthConfig{Mode: AuthModeDisabled}, false, false},
		{"token with value", AuthConfig{Mode: AuthModeToken, Token: "s3cret"}, false, true},
		{"token without value fails closed", AuthConfig{Mode: AuthModeToken}, true, false},
		{"unknown mode", AuthConfig{Mode: "basic"}, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && tc.cfg.AuthEnabled() != tc.enabled {
				t.Errorf("AuthEnabled() = %v, want %v", tc.cfg.AuthEnabled(), tc.enabled)
			}
		})
	}
}

func TestHTTPConfigValidate(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		c := HTTPConfig{Port: port}
		if err := c.Validate(); err == nil {
			t.Errorf("port %d should be rejected", port)
		}
	}
	c := HTTPConfig{Port: 9090}
	if err := c.Validate(); err != nil {
		t.Errorf("port 9090 rejected: %v", err)
	}
}

func TestSQLiteConfigValidate(t *testing.T) {
	c := SQLiteConfig{}
	if err := c.Validate(); err == nil {
		t.Error("empty path should be rejected")
	}
}

func TestGeoConfigValidate(t *testing.T) {
	disabled := GeoConfig{}
	if err := disabled.Validate(); err != nil {
		t.Errorf("disabled geo should skip validation: %v", err)
	}

	noURL := GeoConfig{Enabled: true}
	if err := noURL.Validate(); err == nil {
		t.Error("enabled geo without base_url should be rejected")
	}

	badURL := GeoConfig{Enabled: true, BaseURL: "not a url"}
	if err := badURL.Validate(); err == nil {
		t.Error("enabled geo with invalid base_url should be rejected")
	}

	ok := GeoConfig{Enabled: true, BaseURL: "https://ipapi.co", TimeoutSeconds: 10}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid geo config rejected: %v", err)
	}
}

func TestGeoConfigTimeout(t *testing.T) {
	c := GeoConfig{}
	if got := c.Timeout(); got != 10*time.Second {
		t.Errorf("default timeout = %v, want 10s", got)
	}
	c.TimeoutSeconds = 3
	if got := c.Timeout(); got != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", got)
	}
}

func TestWorkerConfigName(t *testing.T) {
	c := WorkerConfig{}
	if got := c.Name(); got != "Unknown Worker" {
		t.Errorf("fallback name = %q", got)
	}
	c.DefaultName = "avasquez"
	if got := c.Name(); got != "avasquez" {
		t.Errorf("name = %q", got)
	}
}
