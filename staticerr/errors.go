package staticerr

import "errors"

var (
	ErrorRabbitConnectionFail = errors.New("RabbitUnvailable")
	ErrorReentrantCall        = errors.New("ReentrantCall")

	ErrorOrderNotFound    = errors.New("OrderNotFound")
	ErrorDuplicateOrder   = errors.New("DuplicateOrder")
	ErrorAlreadySold      = errors.New("AlreadySold")
	ErrorAlreadyCancelled = errors.New("AlreadyCancelled")
	ErrorOrderExpired     = errors.New("OrderExpired")

	ErrorWrongOrderType  = errors.New("WrongOrderType")
	ErrorAuctionEnded    = errors.New("AuctionEnded")
	ErrorAuctionNotEnded = errors.New("AuctionNotEnded")
	ErrorBiddingExists   = errors.New("BiddingExists")
	ErrorNoBids          = errors.New("NoBids")
	ErrorBidTooLow       = errors.New("BidTooLow")
	ErrorSelfBid         = errors.New("SelfBid")

	ErrorInvalidDeadline    = errors.New("InvalidDeadline")
	ErrorInvalidPrice       = errors.New("InvalidPrice")
	ErrorPriceMismatch      = errors.New("PriceMismatch")
	ErrorInsufficientFunds  = errors.New("InsufficientFunds")
	ErrorEmptyBatch         = errors.New("EmptyBatch")
	ErrorInvalidBasisPoints = errors.New("InvalidBasisPoints")
	ErrorInvalidWindow      = errors.New("InvalidWindow")
	ErrorInvalidRecipient   = errors.New("InvalidRecipient")
	ErrorInvalidCollection  = errors.New("InvalidCollection")

	ErrorNotSeller         = errors.New("NotSeller")
	ErrorNotParticipant    = errors.New("NotParticipant")
	ErrorNotAdministrator  = errors.New("NotAdministrator")
	ErrorGracePeriodActive = errors.New("GracePeriodActive")

	ErrorTransferRejected  = errors.New("TransferRejected")
	ErrorPaymentRejected   = errors.New("PaymentRejected")
	ErrorRefundFailed      = errors.New("RefundFailed")
	ErrorFeeTransferFailed = errors.New("FeeTransferFailed")
)
