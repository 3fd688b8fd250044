package authsession

import (
	"testing"
)

func TestBuildRequiresAuthenticator(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = BackendMemory

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected error without authenticator")
	}
}

func TestBuildRejectsSecondUse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = BackendMemory

	b := New().WithConfig(cfg).WithAuthenticator(&stubAuthenticator{})
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error on second build")
	}
}

func TestBuildRedisBackendRequiresClient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = BackendRedis

	_, err := New().WithConfig(cfg).WithAuthenticator(&stubAuthenticator{}).Build()
	if err == nil {
		t.Fatal("expected error without redis client")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"memory backend", func(c *Config) { c.Storage.Backend = BackendMemory }, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "vault" }, true},
		{"file without path", func(c *Config) { c.Storage.FilePath = "  " }, true},
		{"redis without addr", func(c *Config) {
			c.Storage.Backend = BackendRedis
			c.Storage.RedisAddr = ""
		}, true},
		{"negative timeout", func(c *Config) { c.API.Timeout = -1 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
