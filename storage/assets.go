package storage

import (
	"context"
	"errors"
	"fmt"

	"nft-settlement-service/staticerr"

	redisLib "github.com/redis/go-redis/v9"
)

const assetOwnersHashKey = "market:assets:owners"

func buildAssetField(collection string, tokenId string) string {
	return fmt.Sprintf("%s:%s", collection, tokenId)
}

// AssetCustodyStorage is a reference implementation of the asset registry
// collaborator, mirroring token ownership in redis. Deployments settling
// against a real registry replace it with a client to that registry.
type AssetCustodyStorage struct {
	client *RedisClient
}

func NewAssetCustodyStorage(client *RedisClient) *AssetCustodyStorage {
	return &AssetCustodyStorage{client: client}
}

func (a *AssetCustodyStorage) TransferAsset(ctx context.Context, collection string, tokenId string, from string, to string) error {
	field := buildAssetField(collection, tokenId)

	owner, err := a.client.getFromHash(ctx, assetOwnersHashKey, field)

	if err != nil {
		if errors.Is(err, redisLib.Nil) {
			return staticerr.ErrorTransferRejected
		}
		return err
	}

	if *owner != from {
		return staticerr.ErrorTransferRejected
	}

	return a.client.addInHash(ctx, assetOwnersHashKey, field, to)
}

func (a *AssetCustodyStorage) OwnerOf(ctx context.Context, collection string, tokenId string) (string, error) {
	owner, err := a.client.getFromHash(ctx, assetOwnersHashKey, buildAssetField(collection, tokenId))

	if err != nil {
		if errors.Is(err, redisLib.Nil) {
			return "", staticerr.ErrorTransferRejected
		}
		return "", err
	}

	return *owner, nil
}

func (a *AssetCustodyStorage) SetOwner(ctx context.Context, collection string, tokenId string, owner string) error {
	return a.client.addInHash(ctx, assetOwnersHashKey, buildAssetField(collection, tokenId), owner)
}
