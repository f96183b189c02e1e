package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nft-settlement-service/config"
	"nft-settlement-service/models"
	"nft-settlement-service/service"
	"nft-settlement-service/staticerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderStorage struct {
	orders map[string]models.OrderModel
	ids    []string
}

func (s *stubOrderStorage) AddOrderToStorage(ctx context.Context, orderInfo models.OrderModel) error {
	s.orders[orderInfo.OrderId] = orderInfo
	s.ids = append(s.ids, orderInfo.OrderId)
	return nil
}

func (s *stubOrderStorage) GetOrderFromStorage(ctx context.Context, id string) (*models.OrderModel, error) {
	orderInfo, ok := s.orders[id]

	if !ok {
		return nil, staticerr.ErrorOrderNotFound
	}

	return &orderInfo, nil
}

func (s *stubOrderStorage) UpdateOrderInfo(ctx context.Context, orderInfo models.OrderModel) error {
	s.orders[orderInfo.OrderId] = orderInfo
	return nil
}

func (s *stubOrderStorage) DropOrderFromStorage(ctx context.Context, orderInfo models.OrderModel) error {
	delete(s.orders, orderInfo.OrderId)
	return nil
}

func (s *stubOrderStorage) GetTokenOrderIds(ctx context.Context, collection string, tokenId string, offset int64, limit int64) ([]string, error) {
	return s.page(offset, limit), nil
}

func (s *stubOrderStorage) GetSellerOrderIds(ctx context.Context, seller string, offset int64, limit int64) ([]string, error) {
	return s.page(offset, limit), nil
}

func (s *stubOrderStorage) page(offset int64, limit int64) []string {
	if offset >= int64(len(s.ids)) {
		return nil
	}

	end := offset + limit
	if end > int64(len(s.ids)) {
		end = int64(len(s.ids))
	}

	return s.ids[offset:end]
}

func (s *stubOrderStorage) GetTokenOrderCount(ctx context.Context, collection string, tokenId string) (int64, error) {
	return int64(len(s.ids)), nil
}

func (s *stubOrderStorage) GetSellerOrderCount(ctx context.Context, seller string) (int64, error) {
	return int64(len(s.ids)), nil
}

func (s *stubOrderStorage) TryLockOrder(ctx context.Context, id string, guid string) error {
	return nil
}

func (s *stubOrderStorage) TryUnlockOrder(ctx context.Context, id string, guid string) error {
	return nil
}

func newHttpMuxFixture(t *testing.T) *http.ServeMux {
	store := &stubOrderStorage{orders: make(map[string]models.OrderModel)}

	for _, orderId := range []string{"order-1", "order-2"} {
		require.NoError(t, store.AddOrderToStorage(context.Background(), models.OrderModel{
			OrderId:    orderId,
			Seller:     "alice",
			Collection: "punks",
			TokenId:    "17",
			OrderType:  models.OrderTypeFixedPrice,
			StartPrice: 500,
		}))
	}

	return newHttpMux(service.NewQueryService(store))
}

func getJson(t *testing.T, mux *http.ServeMux, url string, target interface{}) {
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), target))
}

func TestHttpMux_OrderEnumeration(t *testing.T) {
	mux := newHttpMuxFixture(t)

	var byToken []models.OrderModel
	getJson(t, mux, "/orders/token?collection=punks&tokenId=17&offset=0&limit=10", &byToken)
	require.Len(t, byToken, 2)
	assert.Equal(t, "order-1", byToken[0].OrderId)

	var bySeller []models.OrderModel
	getJson(t, mux, "/orders/seller?seller=alice&offset=1&limit=10", &bySeller)
	require.Len(t, bySeller, 1)
	assert.Equal(t, "order-2", bySeller[0].OrderId)
}

func TestHttpMux_OrderCounts(t *testing.T) {
	mux := newHttpMuxFixture(t)

	var tokenCount countResponse
	getJson(t, mux, "/orders/token/count?collection=punks&tokenId=17", &tokenCount)
	assert.Equal(t, int64(2), tokenCount.Count)

	var sellerCount countResponse
	getJson(t, mux, "/orders/seller/count?seller=alice", &sellerCount)
	assert.Equal(t, int64(2), sellerCount.Count)
}

type stubConfigSeeder struct {
	initialized bool

	feeRates   []uint64
	recipients []string
	windows    []uint64
	graces     []uint64
}

func (s *stubConfigSeeder) IsInitialized(ctx context.Context) (bool, error) {
	return s.initialized, nil
}

func (s *stubConfigSeeder) SetFeeRate(ctx context.Context, feeBps uint64) error {
	s.feeRates = append(s.feeRates, feeBps)
	return nil
}

func (s *stubConfigSeeder) SetFeeRecipient(ctx context.Context, recipient string) error {
	s.recipients = append(s.recipients, recipient)
	return nil
}

func (s *stubConfigSeeder) SetExtensionWindow(ctx context.Context, window uint64) error {
	s.windows = append(s.windows, window)
	return nil
}

func (s *stubConfigSeeder) SetRecoverGrace(ctx context.Context, grace uint64) error {
	s.graces = append(s.graces, grace)
	return nil
}

func TestSeedMarketConfig(t *testing.T) {
	seeder := &stubConfigSeeder{}

	err := seedMarketConfig(context.Background(), seeder, config.MarketDefaults{
		FeeBps:          100,
		FeeRecipient:    "treasury",
		ExtensionWindow: 300,
		RecoverGrace:    28800,
	})
	require.NoError(t, err)

	assert.Equal(t, []uint64{100}, seeder.feeRates)
	assert.Equal(t, []string{"treasury"}, seeder.recipients)
	assert.Equal(t, []uint64{300}, seeder.windows)
	assert.Equal(t, []uint64{28800}, seeder.graces)
}

func TestSeedMarketConfig_EmptyRecipient(t *testing.T) {
	seeder := &stubConfigSeeder{}

	err := seedMarketConfig(context.Background(), seeder, config.MarketDefaults{
		FeeBps:          100,
		ExtensionWindow: 300,
		RecoverGrace:    28800,
	})
	assert.ErrorIs(t, err, staticerr.ErrorInvalidRecipient)

	assert.Empty(t, seeder.feeRates)
	assert.Empty(t, seeder.recipients)
}

func TestSeedMarketConfig_AlreadyInitialized(t *testing.T) {
	seeder := &stubConfigSeeder{initialized: true}

	err := seedMarketConfig(context.Background(), seeder, config.MarketDefaults{})
	require.NoError(t, err)

	assert.Empty(t, seeder.feeRates)
	assert.Empty(t, seeder.recipients)
	assert.Empty(t, seeder.windows)
	assert.Empty(t, seeder.graces)
}
