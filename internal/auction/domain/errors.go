package domain

import "errors"

// Every rejection the engine can produce is a sentinel so callers and the
// delivery layer can match with errors.Is.
var (
	ErrProductNotFound       = errors.New("product not found")
	ErrProductExpired        = errors.New("product has expired")
	ErrAuctionAlreadyExists  = errors.New("an auction for this product already exists")
	ErrInvalidAuctionEndTime = errors.New("auction end time is not in the valid window")
	ErrQuantityUnavailable   = errors.New("requested quantity is zero or exceeds availability")
	ErrAuctionNotFound       = errors.New("auction not found")
	ErrInvalidBidder         = errors.New("bidder cannot be the auction seller")
	ErrBidTooLow             = errors.New("bid is below the reserve price or the current leader")
	ErrAuctionNotYetEnded    = errors.New("auction end time has not passed yet")
	ErrNoBidsPlaced          = errors.New("auction has no bids to settle")
	ErrAuctionEnded          = errors.New("auction has already ended")
	ErrAuctionHasBids        = errors.New("auction with bids cannot be cancelled")
)
