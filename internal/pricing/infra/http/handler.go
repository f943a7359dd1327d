package http

import (
	"errors"

	"github.com/agromarket/auctionengine/internal/pricing/application"
	"github.com/agromarket/auctionengine/internal/pricing/domain"
	"github.com/agromarket/auctionengine/internal/shared/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// PricingHandler exposes the advisory endpoints.
type PricingHandler struct {
	service application.PricingService
}

func NewPricingHandler(service application.PricingService) *PricingHandler {
	return &PricingHandler{service: service}
}

func (h *PricingHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/pricing/:type/:region/market", h.getMarketPrice)
	app.Put("/pricing/:type/:region/market", h.updateMarketPrice)
	app.Get("/pricing/:type/:region/suggest", h.suggestPrice)
	app.Get("/pricing/:type/:region/compare", h.compareWithMarket)
}

func (h *PricingHandler) getMarketPrice(c *fiber.Ctx) error {
	price, err := h.service.GetMarketPrice(c.UserContext(), c.Params("type"), c.Params("region"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(price)
}

type updateMarketPriceRequest struct {
	Caller uuid.UUID `json:"caller"`
	Price  int64     `json:"price"`
}

func (h *PricingHandler) updateMarketPrice(c *fiber.Ctx) error {
	var req updateMarketPriceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	err := h.service.UpdateMarketPrice(c.UserContext(), req.Caller, &domain.MarketPrice{
		ProductType: c.Params("type"),
		Region:      c.Params("region"),
		Price:       req.Price,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PricingHandler) suggestPrice(c *fiber.Ctx) error {
	trendPct := c.QueryInt("trend_pct")
	suggested, err := h.service.SuggestPrice(c.UserContext(), application.SuggestPriceDTO{
		ProductType: c.Params("type"),
		Region:      c.Params("region"),
		Quality:     domain.QualityGrade(c.Query("quality", string(domain.QualityGradeB))),
		Freshness:   domain.FreshnessRating(c.Query("freshness", string(domain.FreshnessGood))),
		Season:      domain.SeasonalStatus(c.Query("season", string(domain.SeasonNormal))),
		TrendPct:    int64(trendPct),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"suggested_price": suggested})
}

func (h *PricingHandler) compareWithMarket(c *fiber.Ctx) error {
	listed := int64(c.QueryInt("listed"))
	cmp, err := h.service.CompareWithMarket(c.UserContext(), c.Params("type"), c.Params("region"), listed)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(cmp)
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrMarketPriceNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotOracleAdmin), errors.Is(err, auth.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrUnknownTier):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
