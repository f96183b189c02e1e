package models

type ListOrderRequest struct {
	Id          string `json:"id,omitempty"`
	Seller      string `json:"seller,omitempty"`
	Collection  string `json:"collection,omitempty"`
	TokenId     string `json:"token_id,omitempty"`
	Price       uint64 `json:"price,omitempty"`
	EndSequence uint64 `json:"end_sequence,omitempty"`
	OrderType   int    `json:"order_type,omitempty"`
}

type BulkListRequest struct {
	Id          string   `json:"id,omitempty"`
	Seller      string   `json:"seller,omitempty"`
	Collection  string   `json:"collection,omitempty"`
	TokenIds    []string `json:"token_ids,omitempty"`
	Price       uint64   `json:"price,omitempty"`
	EndSequence uint64   `json:"end_sequence,omitempty"`
	OrderType   int      `json:"order_type,omitempty"`
}

type PlaceBidRequest struct {
	Id      string `json:"id,omitempty"`
	OrderId string `json:"order_id,omitempty"`
	Bidder  string `json:"bidder,omitempty"`
	Amount  uint64 `json:"amount,omitempty"`
}

type BuyOrderRequest struct {
	Id      string `json:"id,omitempty"`
	OrderId string `json:"order_id,omitempty"`
	Buyer   string `json:"buyer,omitempty"`
	Payment uint64 `json:"payment,omitempty"`
}

type BulkBuyRequest struct {
	Id       string   `json:"id,omitempty"`
	OrderIds []string `json:"order_ids,omitempty"`
	Buyer    string   `json:"buyer,omitempty"`
	Payment  uint64   `json:"payment,omitempty"`
}

type ClaimOrderRequest struct {
	Id      string `json:"id,omitempty"`
	OrderId string `json:"order_id,omitempty"`
	Caller  string `json:"caller,omitempty"`
}

type BulkClaimRequest struct {
	Id       string   `json:"id,omitempty"`
	OrderIds []string `json:"order_ids,omitempty"`
	Caller   string   `json:"caller,omitempty"`
}

type CancelOrderRequest struct {
	Id      string `json:"id,omitempty"`
	OrderId string `json:"order_id,omitempty"`
	Caller  string `json:"caller,omitempty"`
}

type EmergencyRecoverRequest struct {
	Id      string `json:"id,omitempty"`
	OrderId string `json:"order_id,omitempty"`
	Caller  string `json:"caller,omitempty"`
}

const (
	AdminOpSetFeeRate         = "set_fee_rate"
	AdminOpSetFeeRecipient    = "set_fee_recipient"
	AdminOpSetRoyalty         = "set_royalty"
	AdminOpSetExtensionWindow = "set_extension_window"
	AdminOpSetRecoverGrace    = "set_recover_grace"
)

type AdminConfigRequest struct {
	Id         string `json:"id,omitempty"`
	Caller     string `json:"caller,omitempty"`
	Operation  string `json:"operation,omitempty"`
	Collection string `json:"collection,omitempty"`
	Recipient  string `json:"recipient,omitempty"`
	Value      uint64 `json:"value,omitempty"`
}
