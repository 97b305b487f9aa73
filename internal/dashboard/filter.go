package dashboard

import (
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/models"
)

// PageSize is the fixed number of items per list page.
const PageSize = interfaces.DefaultPageSize

// Filter is the list view's filter and pagination state. It is a value
// type: every transition returns a new Filter.
type Filter struct {
	Product   string
	Sentiment string
	Language  string
	Page      int // 1-based
}

// DefaultFilter has every filter on the wildcard and the first page.
func DefaultFilter() Filter {
	return Filter{
		Product:   models.FilterAll,
		Sentiment: models.FilterAll,
		Language:  models.FilterAll,
		Page:      1,
	}
}

// WithProduct sets the product filter and returns to the first page.
func (f Filter) WithProduct(product string) (Filter, error) {
	if product != models.FilterAll && !models.ValidProducts[product] {
		return f, validationError("product", "unknown product "+product)
	}
	f.Product = product
	f.Page = 1
	return f, nil
}

// WithSentiment sets the sentiment filter and returns to the first page.
func (f Filter) WithSentiment(sentiment string) (Filter, error) {
	if !models.ValidSentimentFilters[sentiment] {
		return f, validationError("sentiment", "unknown sentiment "+sentiment)
	}
	f.Sentiment = sentiment
	f.Page = 1
	return f, nil
}

// WithLanguage sets the language filter and returns to the first page.
func (f Filter) WithLanguage(language string) (Filter, error) {
	if !models.ValidLanguageFilters[language] {
		return f, validationError("language", "unknown language "+language)
	}
	f.Language = language
	f.Page = 1
	return f, nil
}

// WithPage jumps to page, which must lie within 1..totalPages.
func (f Filter) WithPage(page, totalPages int) (Filter, error) {
	if page < 1 || (page > totalPages && page != 1) {
		return f, validationError("page", "page out of range")
	}
	f.Page = page
	return f, nil
}

// Next advances one page. It is a no-op on the last page.
func (f Filter) Next(totalPages int) Filter {
	if f.Page < totalPages {
		f.Page++
	}
	return f
}

// Prev goes back one page. It is a no-op on the first page.
func (f Filter) Prev() Filter {
	if f.Page > 1 {
		f.Page--
	}
	return f
}

// TotalPages is ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Query derives the list request. Wildcards are dropped here and show_all
// is only requested in admin mode.
func (f Filter) Query(isAdmin bool, token string) interfaces.FeedbackQuery {
	q := interfaces.FeedbackQuery{
		Page:     f.Page,
		PageSize: PageSize,
		ShowAll:  isAdmin,
	}
	if f.Product != models.FilterAll {
		q.Product = f.Product
	}
	if f.Sentiment != models.FilterAll {
		q.Sentiment = f.Sentiment
	}
	if f.Language != models.FilterAll {
		q.Language = f.Language
	}
	if isAdmin {
		q.Token = token
	}
	return q
}
