package maganghub

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

type Province struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type provinceItem struct {
	Code string `json:"kode_propinsi"`
	Name string `json:"nama_propinsi"`
}

func (c *Client) provinces(ctx context.Context) []Province {
	if c.cache != nil {
		cached, err := c.cache.Load(ctx)
		switch {
		case err != nil:
			c.logger.Warn("reading province cache", zap.Error(err))
		case cached != nil:
			c.logger.Debug("province list served from cache", zap.Int("count", len(cached)))
			return cached
		}
	}

	provinces, err := c.fetchProvinces(ctx)
	if err != nil {
		c.logger.Warn("fetching provinces, falling back to empty list", zap.Error(err))
		return []Province{}
	}

	if c.cache != nil && len(provinces) > 0 {
		if err := c.cache.Store(ctx, provinces); err != nil {
			c.logger.Warn("writing province cache", zap.Error(err))
		}
	}

	return provinces
}

func (c *Client) fetchProvinces(ctx context.Context) ([]Province, error) {
	endpoint := fmt.Sprintf("%s%s", c.APIURL, provincesPath)

	q := url.Values{}
	q.Set("order_by", "nama_propinsi")
	q.Set("order_direction", OrderAsc)
	q.Set("page", "1")
	q.Set("limit", "40")

	response, err := c.GetItems(ctx, endpoint, q, 1)
	if err != nil {
		return nil, err
	}

	var items []provinceItem
	if err := decode(response.Data, &items); err != nil {
		return nil, fmt.Errorf("decoding provinces: %w", err)
	}

	provinces := make([]Province, 0, len(items))
	for _, item := range items {
		provinces = append(provinces, Province(item))
	}

	return provinces, nil
}
