package models

type MakeOrderEvent struct {
	OrderId       string `json:"order_id,omitempty"`
	Collection    string `json:"collection,omitempty"`
	TokenId       string `json:"token_id,omitempty"`
	Seller        string `json:"seller,omitempty"`
	OrderType     int    `json:"order_type,omitempty"`
	Price         uint64 `json:"price,omitempty"`
	StartSequence uint64 `json:"start_sequence,omitempty"`
	EndSequence   uint64 `json:"end_sequence,omitempty"`
	EmittedDate   int64  `json:"emitted_date,omitempty"`
}

type BidEvent struct {
	OrderId     string `json:"order_id,omitempty"`
	Collection  string `json:"collection,omitempty"`
	TokenId     string `json:"token_id,omitempty"`
	Bidder      string `json:"bidder,omitempty"`
	Amount      uint64 `json:"amount,omitempty"`
	EndSequence uint64 `json:"end_sequence,omitempty"`
	EmittedDate int64  `json:"emitted_date,omitempty"`
}

type BuyOrderEvent struct {
	OrderId     string `json:"order_id,omitempty"`
	Collection  string `json:"collection,omitempty"`
	TokenId     string `json:"token_id,omitempty"`
	Seller      string `json:"seller,omitempty"`
	Taker       string `json:"taker,omitempty"`
	Price       uint64 `json:"price,omitempty"`
	Fee         uint64 `json:"fee,omitempty"`
	EmittedDate int64  `json:"emitted_date,omitempty"`
}

type CancelOrderEvent struct {
	OrderId     string `json:"order_id,omitempty"`
	Collection  string `json:"collection,omitempty"`
	TokenId     string `json:"token_id,omitempty"`
	Seller      string `json:"seller,omitempty"`
	EmittedDate int64  `json:"emitted_date,omitempty"`
}
