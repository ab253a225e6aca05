package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration

	// Prefix отделяет ключи клиента от других приложений на том же сервере
	Prefix string
}

type Client struct {
	*redis.Client
	prefix string
}

func NewClient(opts Options) *Client {
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:        opts.Addr,
			Password:    opts.Password,
			DB:          opts.DB,
			DialTimeout: opts.DialTimeout,
		}),
		prefix: opts.Prefix,
	}
}

// WithPrefix возвращает клиент на том же соединении с другим префиксом ключей
func (c *Client) WithPrefix(prefix string) *Client {
	return &Client{Client: c.Client, prefix: prefix}
}

// Key собирает ключ вида prefix:part1:part2
func (c *Client) Key(parts ...string) string {
	key := strings.Join(parts, ":")
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping %s: %w", c.Options().Addr, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}
