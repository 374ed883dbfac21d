package app

import (
	"myanalyst/pkg/domain"
	"myanalyst/pkg/marketcache"
)

// CompanyNews returns recent news headlines for a company, served from the
// market cache when warm.
func (a *App) CompanyNews(company string) ([]domain.NewsItem, error) {
	if a.cache != nil {
		var cached []domain.NewsItem
		if a.cache.Get(marketcache.NewsKey(company), &cached) {
			return cached, nil
		}
	}
	items, err := a.analysis.CompanyNews(company)
	if err != nil {
		return nil, upstream("fetch news", err)
	}
	if a.cache != nil {
		a.cache.Set(marketcache.NewsKey(company), items)
	}
	return items, nil
}

// CompanyStock returns a stock snapshot for a company, served from the
// market cache when warm.
func (a *App) CompanyStock(company string) (domain.Stock, error) {
	if a.cache != nil {
		var cached domain.Stock
		if a.cache.Get(marketcache.StockKey(company), &cached) {
			return cached, nil
		}
	}
	stock, err := a.analysis.CompanyStock(company)
	if err != nil {
		return domain.Stock{}, upstream("fetch stock", err)
	}
	if a.cache != nil {
		a.cache.Set(marketcache.StockKey(company), stock)
	}
	return stock, nil
}

// CompanyChartImage returns the rendered stock chart for a company. Chart
// images are never cached.
func (a *App) CompanyChartImage(company string) ([]byte, string, error) {
	data, contentType, err := a.analysis.ChartImage(company)
	if err != nil {
		return nil, "", upstream("fetch chart image", err)
	}
	return data, contentType, nil
}
