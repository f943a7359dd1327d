package http

import (
	"errors"
	"time"

	"github.com/agromarket/auctionengine/internal/auction/application"
	"github.com/agromarket/auctionengine/internal/auction/domain"
	"github.com/agromarket/auctionengine/internal/shared/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AuctionHandler exposes the auction lifecycle over HTTP.
type AuctionHandler struct {
	service application.AuctionService
}

func NewAuctionHandler(service application.AuctionService) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// RegisterRoutes mounts the auction API on the given router.
func (h *AuctionHandler) RegisterRoutes(app fiber.Router) {
	app.Post("/auctions", h.createAuction)
	app.Get("/auctions", h.listAuctions)
	app.Get("/auctions/:seller/:product", h.getAuctionState)
	app.Post("/auctions/:seller/:product/bids", h.placeBid)
	app.Patch("/auctions/:seller/:product/extend", h.extendAuction)
	app.Post("/auctions/:seller/:product/finalize", h.finalizeAuction)
	app.Delete("/auctions/:seller/:product", h.cancelAuction)
}

// PrincipalMiddleware reads the authenticated caller from the X-Principal
// header and stores it in the request context. The production deployment
// replaces this with its signature scheme; the Authorizer port stays the
// same.
func PrincipalMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := c.Get("X-Principal"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid X-Principal header")
			}
			c.SetUserContext(auth.WithPrincipal(c.UserContext(), id))
		}
		return c.Next()
	}
}

type createAuctionRequest struct {
	Seller          uuid.UUID `json:"seller"`
	ProductID       uuid.UUID `json:"product_id"`
	ReservePrice    int64     `json:"reserve_price"`
	EndTime         time.Time `json:"end_time"`
	MinQuantity     int64     `json:"min_quantity"`
	BulkThreshold   int64     `json:"bulk_threshold"`
	BulkDiscountPct int64     `json:"bulk_discount_pct"`
	DynamicPricing  bool      `json:"dynamic_pricing"`
}

func (h *AuctionHandler) createAuction(c *fiber.Ctx) error {
	var req createAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id, err := h.service.CreateAuction(c.UserContext(), application.CreateAuctionDTO{
		Seller:          req.Seller,
		ProductID:       req.ProductID,
		ReservePrice:    req.ReservePrice,
		EndTime:         req.EndTime,
		MinQuantity:     req.MinQuantity,
		BulkThreshold:   req.BulkThreshold,
		BulkDiscountPct: req.BulkDiscountPct,
		DynamicPricing:  req.DynamicPricing,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"auction_id": id})
}

type placeBidRequest struct {
	Bidder   uuid.UUID `json:"bidder"`
	Amount   int64     `json:"amount"`
	Quantity int64     `json:"quantity"`
}

func (h *AuctionHandler) placeBid(c *fiber.Ctx) error {
	seller, productID, err := parseKey(c)
	if err != nil {
		return err
	}
	var req placeBidRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	bid, err := h.service.PlaceBid(c.UserContext(), application.PlaceBidDTO{
		Seller:    seller,
		ProductID: productID,
		Bidder:    req.Bidder,
		Amount:    req.Amount,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bid)
}

type extendAuctionRequest struct {
	NewEndTime time.Time `json:"new_end_time"`
}

func (h *AuctionHandler) extendAuction(c *fiber.Ctx) error {
	seller, productID, err := parseKey(c)
	if err != nil {
		return err
	}
	var req extendAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	err = h.service.ExtendAuction(c.UserContext(), application.ExtendAuctionDTO{
		Seller:     seller,
		ProductID:  productID,
		NewEndTime: req.NewEndTime,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuctionHandler) finalizeAuction(c *fiber.Ctx) error {
	seller, productID, err := parseKey(c)
	if err != nil {
		return err
	}
	winner, err := h.service.FinalizeAuction(c.UserContext(), application.FinalizeAuctionDTO{
		Seller:    seller,
		ProductID: productID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(winner)
}

func (h *AuctionHandler) cancelAuction(c *fiber.Ctx) error {
	seller, productID, err := parseKey(c)
	if err != nil {
		return err
	}
	err = h.service.CancelAuction(c.UserContext(), application.CancelAuctionDTO{
		Seller:    seller,
		ProductID: productID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuctionHandler) getAuctionState(c *fiber.Ctx) error {
	seller, productID, err := parseKey(c)
	if err != nil {
		return err
	}
	state, err := h.service.GetAuctionState(c.UserContext(), seller, productID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(state)
}

func (h *AuctionHandler) listAuctions(c *fiber.Ctx) error {
	if raw := c.Query("ending_within"); raw != "" {
		threshold, err := time.ParseDuration(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid ending_within duration")
		}
		auctions, err := h.service.ListEndingSoon(c.UserContext(), threshold)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(auctions)
	}

	auctions, err := h.service.ListActive(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(auctions)
}

func parseKey(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	seller, err := uuid.Parse(c.Params("seller"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid seller id")
	}
	productID, err := uuid.Parse(c.Params("product"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	return seller, productID, nil
}

// errorResponse maps domain rejections onto HTTP statuses.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrAuctionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrAuctionAlreadyExists):
		status = fiber.StatusConflict
	case errors.Is(err, auth.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrProductExpired),
		errors.Is(err, domain.ErrInvalidAuctionEndTime),
		errors.Is(err, domain.ErrQuantityUnavailable),
		errors.Is(err, domain.ErrInvalidBidder),
		errors.Is(err, domain.ErrBidTooLow),
		errors.Is(err, domain.ErrAuctionNotYetEnded),
		errors.Is(err, domain.ErrNoBidsPlaced),
		errors.Is(err, domain.ErrAuctionEnded),
		errors.Is(err, domain.ErrAuctionHasBids):
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
