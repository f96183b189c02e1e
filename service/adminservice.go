package service

import (
	"context"

	"nft-settlement-service/staticerr"

	"github.com/sirupsen/logrus"
)

type AdminService struct {
	configStorage iMarketConfigStorage
	accessGuard   iAccessGuard
}

func NewAdminService(configStorage iMarketConfigStorage, accessGuard iAccessGuard) *AdminService {
	return &AdminService{configStorage: configStorage, accessGuard: accessGuard}
}

func (a *AdminService) SetFeeRate(ctx context.Context, caller string, feeBps uint64) error {
	if !a.accessGuard.IsAdministrator(caller) {
		return staticerr.ErrorNotAdministrator
	}

	if feeBps > maxFeeBps {
		return staticerr.ErrorInvalidBasisPoints
	}

	logrus.WithField("caller", caller).Infoln("Fee rate set to ", feeBps, " bps")

	return a.configStorage.SetFeeRate(ctx, feeBps)
}

func (a *AdminService) SetFeeRecipient(ctx context.Context, caller string, recipient string) error {
	if !a.accessGuard.IsAdministrator(caller) {
		return staticerr.ErrorNotAdministrator
	}

	if recipient == "" {
		return staticerr.ErrorInvalidRecipient
	}

	logrus.WithField("caller", caller).Infoln("Fee recipient set to ", recipient)

	return a.configStorage.SetFeeRecipient(ctx, recipient)
}

func (a *AdminService) SetRoyalty(ctx context.Context, caller string, collection string, royaltyBps uint64) error {
	if !a.accessGuard.IsAdministrator(caller) {
		return staticerr.ErrorNotAdministrator
	}

	if collection == "" {
		return staticerr.ErrorInvalidCollection
	}

	if royaltyBps > maxRoyaltyBps {
		return staticerr.ErrorInvalidBasisPoints
	}

	logrus.WithField("collection", collection).Infoln("Royalty set to ", royaltyBps, " bps")

	return a.configStorage.SetRoyalty(ctx, collection, royaltyBps)
}

func (a *AdminService) SetExtensionWindow(ctx context.Context, caller string, window uint64) error {
	if !a.accessGuard.IsAdministrator(caller) {
		return staticerr.ErrorNotAdministrator
	}

	if window == 0 || window > maxExtensionWindow {
		return staticerr.ErrorInvalidWindow
	}

	logrus.WithField("caller", caller).Infoln("Anti-snipe extension window set to ", window)

	return a.configStorage.SetExtensionWindow(ctx, window)
}

func (a *AdminService) SetRecoverGrace(ctx context.Context, caller string, grace uint64) error {
	if !a.accessGuard.IsAdministrator(caller) {
		return staticerr.ErrorNotAdministrator
	}

	if grace < minRecoverGrace {
		return staticerr.ErrorInvalidWindow
	}

	logrus.WithField("caller", caller).Infoln("Recovery grace margin set to ", grace)

	return a.configStorage.SetRecoverGrace(ctx, grace)
}
