package core

import (
	"testing"

	"github.com/agora-sh/agora/internal/types"
)

func TestGlobalConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	config, err := ReadGlobalConfig()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if config.ServerURL != DefaultServerURL {
		t.Errorf("server url = %q, want %q", config.ServerURL, DefaultServerURL)
	}
	if len(config.Channels) == 0 {
		t.Error("default channels empty")
	}
}

func TestGlobalConfigRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	config := &GlobalConfig{
		ServerURL:   "https://hub.example.com",
		Channels:    []string{"general", "lounge"},
		LastChannel: "lounge",
	}
	if err := WriteGlobalConfig(config); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadGlobalConfig()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.ServerURL != config.ServerURL || got.LastChannel != "lounge" {
		t.Errorf("read = %+v", got)
	}
	if len(got.Channels) != 2 || got.Channels[1] != "lounge" {
		t.Errorf("channels = %v", got.Channels)
	}
	if got.Version != 1 {
		t.Errorf("version = %d, want 1", got.Version)
	}
}

func TestIdentityHolderSwap(t *testing.T) {
	holder := NewIdentityHolder(types.Identity{Name: "ada", Password: "one"})
	if got := holder.Identity().Name; got != "ada" {
		t.Fatalf("initial = %q", got)
	}
	holder.Set(types.Identity{Name: "grace", Password: "two"})
	if got := holder.Identity(); got.Name != "grace" || got.Password != "two" {
		t.Errorf("after set = %+v", got)
	}
}

func TestStaticIdentity(t *testing.T) {
	var provider IdentityProvider = StaticIdentity{Name: "ada", Password: "pw"}
	if got := provider.Identity(); got.Name != "ada" || got.Password != "pw" {
		t.Errorf("identity = %+v", got)
	}
}
