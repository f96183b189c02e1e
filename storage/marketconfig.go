package storage

import (
	"context"
	"errors"
	"strconv"

	"nft-settlement-service/models"

	redisLib "github.com/redis/go-redis/v9"
)

const (
	marketConfigKey  = "market:config"
	royaltiesHashKey = "market:config:royalties"

	configFieldFeeBps          = "fee_bps"
	configFieldFeeRecipient    = "fee_recipient"
	configFieldExtensionWindow = "extension_window"
	configFieldRecoverGrace    = "recover_grace"
)

type MarketConfigStorage struct {
	client *RedisClient
}

func NewMarketConfigStorage(client *RedisClient) *MarketConfigStorage {
	return &MarketConfigStorage{client: client}
}

// GetMarketConfig reads the whole configuration hash. Settlement reads it on
// every operation so an administrative change takes effect immediately.
func (m *MarketConfigStorage) GetMarketConfig(ctx context.Context) (*models.MarketConfigModel, error) {
	values, err := m.client.getAllFromHash(ctx, marketConfigKey)

	if err != nil {
		return nil, err
	}

	configInfo := models.MarketConfigModel{
		FeeRecipient: values[configFieldFeeRecipient],
	}

	for field, target := range map[string]*uint64{
		configFieldFeeBps:          &configInfo.FeeBps,
		configFieldExtensionWindow: &configInfo.ExtensionWindow,
		configFieldRecoverGrace:    &configInfo.RecoverGrace,
	} {
		raw, ok := values[field]
		if !ok {
			continue
		}

		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, err
		}

		*target = parsed
	}

	return &configInfo, nil
}

func (m *MarketConfigStorage) IsInitialized(ctx context.Context) (bool, error) {
	values, err := m.client.getAllFromHash(ctx, marketConfigKey)

	if err != nil {
		return false, err
	}

	return len(values) > 0, nil
}

func (m *MarketConfigStorage) SetFeeRate(ctx context.Context, feeBps uint64) error {
	return m.client.addInHash(ctx, marketConfigKey, configFieldFeeBps, strconv.FormatUint(feeBps, 10))
}

func (m *MarketConfigStorage) SetFeeRecipient(ctx context.Context, recipient string) error {
	return m.client.addInHash(ctx, marketConfigKey, configFieldFeeRecipient, recipient)
}

func (m *MarketConfigStorage) SetExtensionWindow(ctx context.Context, window uint64) error {
	return m.client.addInHash(ctx, marketConfigKey, configFieldExtensionWindow, strconv.FormatUint(window, 10))
}

func (m *MarketConfigStorage) SetRecoverGrace(ctx context.Context, grace uint64) error {
	return m.client.addInHash(ctx, marketConfigKey, configFieldRecoverGrace, strconv.FormatUint(grace, 10))
}

func (m *MarketConfigStorage) GetRoyalty(ctx context.Context, collection string) (uint64, error) {
	raw, err := m.client.getFromHash(ctx, royaltiesHashKey, collection)

	if err != nil {
		if errors.Is(err, redisLib.Nil) {
			return 0, nil
		}
		return 0, err
	}

	return strconv.ParseUint(*raw, 10, 64)
}

func (m *MarketConfigStorage) SetRoyalty(ctx context.Context, collection string, royaltyBps uint64) error {
	return m.client.addInHash(ctx, royaltiesHashKey, collection, strconv.FormatUint(royaltyBps, 10))
}
