// Package redis implements an asset loader backed by Redis hashes.
package redis

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/boardwalk/pkg/domain"
)

// DefaultPrefix namespaces asset keys.
const DefaultPrefix = "boardwalk:asset:"

const (
	fieldData        = "data"
	fieldContentType = "content_type"
)

// Loader implements ports.AssetLoader using Redis.
// Each asset is a hash at <prefix><label> with "data" and "content_type" fields.
type Loader struct {
	client *backend.Client
	prefix string
}

type Option func(*Loader)

// WithPrefix sets the key prefix for assets.
func WithPrefix(prefix string) Option {
	return func(l *Loader) {
		l.prefix = prefix
	}
}

// New creates a new Redis loader with options.
func New(address, password string, db int, opts ...Option) *Loader {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis loader from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Loader {
	l := &Loader{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) key(label string) string {
	return l.prefix + label
}

// Load retrieves the asset hash for label.
func (l *Loader) Load(ctx context.Context, label string) (domain.Asset, error) {
	vals, err := l.client.HMGet(ctx, l.key(label), fieldData, fieldContentType).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Asset{}, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, label)
		}
		return domain.Asset{}, fmt.Errorf("redis error loading asset: %w", err)
	}

	data, ok := vals[0].(string)
	if !ok {
		return domain.Asset{}, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, label)
	}
	contentType, _ := vals[1].(string)

	return domain.Asset{
		Label:       label,
		ContentType: contentType,
		Data:        []byte(data),
	}, nil
}

// Put stores an asset.
func (l *Loader) Put(ctx context.Context, a domain.Asset) error {
	err := l.client.HSet(ctx, l.key(a.Label),
		fieldData, a.Data,
		fieldContentType, a.ContentType,
	).Err()
	if err != nil {
		return fmt.Errorf("redis error storing asset: %w", err)
	}
	return nil
}

// Delete removes an asset.
func (l *Loader) Delete(ctx context.Context, label string) error {
	return l.client.Del(ctx, l.key(label)).Err()
}

// List returns the labels of every stored asset.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	var labels []string
	iter := l.client.Scan(ctx, 0, l.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		labels = append(labels, iter.Val()[len(l.prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis error listing assets: %w", err)
	}
	return labels, nil
}
