// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package catalog reads item metadata from the product catalog stored in
// Qdrant. The ranking engine only needs cluster membership, used to find
// alternatives outside a request's candidate pool.
package catalog

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"

	"github.com/tomtom215/adaptrank/internal/ranking"
	"github.com/tomtom215/adaptrank/internal/resilience"
)

// Payload fields of a catalog point.
const (
	fieldItemID      = "product_id"
	fieldName        = "name"
	fieldCategory    = "category"
	fieldDescription = "description"
	fieldClusterID   = "cluster_id"
	fieldPrice       = "price"
	fieldRating      = "rating"
	fieldInStock     = "in_stock"
)

// Config configures the Qdrant catalog.
type Config struct {
	// Addr is host:port of the Qdrant gRPC endpoint. Port defaults to 6334.
	Addr string `koanf:"addr"`

	// APIKey authenticates against Qdrant Cloud. Optional.
	APIKey string `koanf:"api_key"`

	// UseTLS enables TLS on the gRPC connection.
	UseTLS bool `koanf:"use_tls"`

	// Collection holds the product points.
	Collection string `koanf:"collection" validate:"required"`

	// InStockOnly restricts alternatives to items with in_stock=true.
	InStockOnly bool `koanf:"in_stock_only"`
}

// DefaultConfig returns a local, plaintext Qdrant on the default gRPC port.
func DefaultConfig() Config {
	return Config{
		Addr:        "localhost:6334",
		Collection:  "products",
		InStockOnly: true,
	}
}

// QdrantCatalog implements alternatives.CatalogLookup.
type QdrantCatalog struct {
	client     *qdrant.Client
	collection string
	inStock    bool
	breaker    *resilience.Breaker[[]ranking.Item]
	logger     zerolog.Logger
}

// NewQdrantCatalog connects to Qdrant.
func NewQdrantCatalog(cfg Config, logger zerolog.Logger) (*QdrantCatalog, error) {
	host, portStr, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		// If no port specified, assume default
		host = cfg.Addr
		portStr = "6334"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port in qdrant addr: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &QdrantCatalog{
		client:     client,
		collection: cfg.Collection,
		inStock:    cfg.InStockOnly,
		breaker:    resilience.NewBreaker[[]ranking.Item](resilience.DefaultBreakerConfig("qdrant-catalog"), logger),
		logger:     logger.With().Str("component", "catalog").Logger(),
	}, nil
}

// Close closes the Qdrant client connection.
func (c *QdrantCatalog) Close() error {
	return c.client.Close()
}

// Ping checks that the collection exists.
func (c *QdrantCatalog) Ping(ctx context.Context) error {
	exists, err := c.client.CollectionExists(ctx, c.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("collection %q does not exist", c.collection)
	}
	return nil
}

// ClusterMembers scrolls up to limit items of cluster.
func (c *QdrantCatalog) ClusterMembers(ctx context.Context, cluster ranking.ClusterID, limit int) ([]ranking.Item, error) {
	if limit <= 0 {
		return nil, nil
	}
	return c.breaker.Execute(func() ([]ranking.Item, error) {
		points, err := c.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: c.collection,
			Filter:         clusterFilter(cluster, c.inStock),
			Limit:          qdrant.PtrOf(uint32(limit)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll cluster %d: %w", cluster, err)
		}

		items := make([]ranking.Item, 0, len(points))
		for _, p := range points {
			item, ok := pointToItem(p)
			if !ok {
				c.logger.Debug().Int("cluster_id", int(cluster)).Msg("skipping catalog point without id")
				continue
			}
			items = append(items, item)
		}
		return items, nil
	})
}

// clusterFilter matches cluster_id and optionally in_stock.
func clusterFilter(cluster ranking.ClusterID, inStockOnly bool) *qdrant.Filter {
	must := []*qdrant.Condition{
		qdrant.NewMatchInt(fieldClusterID, int64(cluster)),
	}
	if inStockOnly {
		must = append(must, qdrant.NewMatchBool(fieldInStock, true))
	}
	return &qdrant.Filter{Must: must}
}

// pointToItem converts a catalog point. The item ID is the product_id
// payload field, falling back to the point ID.
func pointToItem(p *qdrant.RetrievedPoint) (ranking.Item, bool) {
	payload := p.GetPayload()

	id := payload[fieldItemID].GetStringValue()
	if id == "" {
		switch {
		case p.GetId().GetUuid() != "":
			id = p.GetId().GetUuid()
		case p.GetId() != nil:
			id = strconv.FormatUint(p.GetId().GetNum(), 10)
		}
	}
	if id == "" {
		return ranking.Item{}, false
	}

	return ranking.Item{
		ID:          ranking.ItemID(id),
		Name:        payload[fieldName].GetStringValue(),
		Category:    payload[fieldCategory].GetStringValue(),
		Description: payload[fieldDescription].GetStringValue(),
		ClusterID:   ranking.ClusterID(numberValue(payload[fieldClusterID])),
		Price:       numberValue(payload[fieldPrice]),
		Rating:      numberValue(payload[fieldRating]),
	}, true
}

// numberValue reads a numeric payload value stored as double or integer.
func numberValue(v *qdrant.Value) float64 {
	switch k := v.GetKind().(type) {
	case *qdrant.Value_DoubleValue:
		return k.DoubleValue
	case *qdrant.Value_IntegerValue:
		return float64(k.IntegerValue)
	default:
		return 0
	}
}
