package handlers

import (
	"github.com/fenilmodi00/market-pulse/services"
	"github.com/gofiber/fiber/v2"
)

type ContentHandler struct {
	News       NewsSource
	MarketData *services.MarketDataService
}

func NewContentHandler(news NewsSource, marketData *services.MarketDataService) *ContentHandler {
	return &ContentHandler{News: news, MarketData: marketData}
}

func (h *ContentHandler) GetNews(c *fiber.Ctx) error {
	items := h.News.LatestNews(c.UserContext())
	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}

func (h *ContentHandler) GetBlogPosts(c *fiber.Ctx) error {
	posts := h.MarketData.BlogPosts()
	return c.JSON(fiber.Map{
		"success": true,
		"data":    posts,
		"count":   len(posts),
	})
}
