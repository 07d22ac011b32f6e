package config

import "testing"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("USERNAME", "vnpy")
	t.Setenv("PASSWORD", "vnpy")
	t.Setenv("SECRET_KEY", "test-secret")

	LoadConfig()

	if Config.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want %q", Config.Host, "127.0.0.1")
	}
	if Config.Port != 8000 {
		t.Errorf("Port = %d, want 8000", Config.Port)
	}
	if Config.TokenTTL != 30 {
		t.Errorf("TokenTTL = %d, want 30", Config.TokenTTL)
	}
	if Config.ConnectionsLimit != 50 {
		t.Errorf("ConnectionsLimit = %d, want 50", Config.ConnectionsLimit)
	}
	if Config.EventBufferSize != 256 {
		t.Errorf("EventBufferSize = %d, want 256", Config.EventBufferSize)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("USERNAME", "trader")
	t.Setenv("PASSWORD", "secret")
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("TOKEN_TTL", "5")
	t.Setenv("REQ_ADDRESS", "redis://10.0.0.1:6379/1")

	LoadConfig()

	if Config.Username != "trader" {
		t.Errorf("Username = %q, want %q", Config.Username, "trader")
	}
	if Config.Port != 9000 {
		t.Errorf("Port = %d, want 9000", Config.Port)
	}
	if Config.TokenTTL != 5 {
		t.Errorf("TokenTTL = %d, want 5", Config.TokenTTL)
	}
	if Config.ReqAddress != "redis://10.0.0.1:6379/1" {
		t.Errorf("ReqAddress = %q, want the override", Config.ReqAddress)
	}
}
