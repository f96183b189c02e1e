package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeOrderId derives the canonical order identifier from the listing
// content. Any client that knows the sequence value used at creation can
// recompute the same id.
func ComputeOrderId(sequence uint64, collection string, tokenId string, seller string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s:%s:%s", sequence, collection, tokenId, seller)))
	return hex.EncodeToString(sum[:])
}

func CalculateFee(price uint64, feeBps uint64, royaltyBps uint64) uint64 {
	return price * (feeBps + royaltyBps) / 10000
}

// MinNextBid is the lowest acceptable successor bid: previous bid plus a 5%
// increment, integer-truncated. Below 20 units the increment truncates to
// zero, so an equal re-bid is accepted there.
func MinNextBid(lastBidPrice uint64) uint64 {
	return lastBidPrice + lastBidPrice/20
}
