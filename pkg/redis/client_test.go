package redis

import (
	"testing"
	"time"

	"github.com/connectedautocare/console-gateway/pkg/config"
)

func TestOptionsFromConfigRequiresEndpoint(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	cfg := config.RedisConfig{
		URL:          "redis://:pass@localhost:6380/2",
		PoolSize:     15,
		MinIdleConns: 3,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 4 * time.Second,
	}

	opts, err := optionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "localhost:6380" {
		t.Fatalf("unexpected addr %s", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("unexpected db %d", opts.DB)
	}
	if opts.PoolSize != 15 {
		t.Fatalf("pool size not applied, got %d", opts.PoolSize)
	}
	if opts.DialTimeout != 2*time.Second {
		t.Fatalf("dial timeout not applied, got %s", opts.DialTimeout)
	}
}

func TestOptionsFromConfigAddressFallback(t *testing.T) {
	cfg := config.RedisConfig{Address: "localhost:6379", Password: "pw", DB: 1}
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.Password != "pw" || opts.DB != 1 {
		t.Fatalf("address config not applied: %+v", opts)
	}
}

func TestSessionTokenKey(t *testing.T) {
	c := &Client{}
	if got := c.SessionTokenKey("abc"); got != "cac:session:token:abc" {
		t.Fatalf("unexpected key %s", got)
	}
}
