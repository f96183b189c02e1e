package models

type MarketConfigModel struct {
	FeeBps          uint64 `json:"fee_bps,omitempty"`
	FeeRecipient    string `json:"fee_recipient,omitempty"`
	ExtensionWindow uint64 `json:"extension_window,omitempty"`
	RecoverGrace    uint64 `json:"recover_grace,omitempty"`
}
