package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	valkey "github.com/valkey-io/valkey-go"
)

// ValkeyClient implements Cache using Valkey.
type ValkeyClient struct {
	c valkey.Client
}

func NewValkey(addr, password string) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{addr},
	}
	if password != "" {
		opts.Username = "default"
		opts.Password = password
	}
	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &ValkeyClient{c: client}, nil
}

func (v *ValkeyClient) Get(ctx context.Context, key string) (string, bool) {
	s, err := v.c.Do(ctx, v.c.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			log.Warn().Err(err).Str("key", key).Msg("valkey get failed")
		}
		return "", false
	}
	return s, true
}

func (v *ValkeyClient) Set(ctx context.Context, key string, val string, ttl time.Duration) error {
	if secs := int64(ttl / time.Second); secs > 0 {
		return v.c.Do(ctx, v.c.B().Set().Key(key).Value(val).ExSeconds(secs).Build()).Error()
	}
	return v.c.Do(ctx, v.c.B().Set().Key(key).Value(val).Build()).Error()
}

// DeletePrefix removes every key starting with prefix, walking with SCAN.
func (v *ValkeyClient) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		entry, err := v.c.Do(ctx, v.c.B().Scan().Cursor(cursor).Match(prefix+"*").Count(100).Build()).AsScanEntry()
		if err != nil {
			return err
		}
		if len(entry.Elements) > 0 {
			if err := v.c.Do(ctx, v.c.B().Del().Key(entry.Elements...).Build()).Error(); err != nil {
				return err
			}
		}
		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

func (v *ValkeyClient) Ping(ctx context.Context) error {
	return v.c.Do(ctx, v.c.B().Ping().Build()).Error()
}

func (v *ValkeyClient) Close() { v.c.Close() }
