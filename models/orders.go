package models

const (
	OrderTypeFixedPrice     = 1
	OrderTypeEnglishAuction = 2
)

type OrderModel struct {
	OrderId       string `json:"order_id,omitempty"`
	Seller        string `json:"seller,omitempty"`
	Collection    string `json:"collection,omitempty"`
	TokenId       string `json:"token_id,omitempty"`
	OrderType     int    `json:"order_type,omitempty"`
	StartPrice    uint64 `json:"start_price,omitempty"`
	StartSequence uint64 `json:"start_sequence,omitempty"`
	EndSequence   uint64 `json:"end_sequence,omitempty"`
	LastBidPrice  uint64 `json:"last_bid_price,omitempty"`
	LastBidder    string `json:"last_bidder,omitempty"`
	IsSold        bool   `json:"is_sold,omitempty"`
	IsCancelled   bool   `json:"is_cancelled,omitempty"`
	CreationDate  int64  `json:"creation_date,omitempty"`
	UpdatedDate   int64  `json:"updated_date,omitempty"`
}
