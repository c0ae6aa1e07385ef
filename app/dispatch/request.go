package dispatch

import "fmt"

// Kind enumerates what a chat asked for.
type Kind int

const (
	KindCategory Kind = iota + 1
	KindRandom
	KindPrices
	KindSearch
	KindHeadlines
)

func (k Kind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindRandom:
		return "random"
	case KindPrices:
		return "prices"
	case KindSearch:
		return "search"
	case KindHeadlines:
		return "headlines"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Request is a parsed news request. Only the constructors below build one,
// so Category is set exactly for KindCategory and Query for KindSearch.
type Request struct {
	Kind     Kind
	Category string
	Query    string
	// Limit overrides the kind's default item count when positive.
	Limit int
}

func CategoryRequest(key string) Request {
	return Request{Kind: KindCategory, Category: key}
}

func RandomRequest() Request {
	return Request{Kind: KindRandom}
}

func PricesRequest() Request {
	return Request{Kind: KindPrices}
}

func SearchRequest(query string) Request {
	return Request{Kind: KindSearch, Query: query}
}

func HeadlinesRequest() Request {
	return Request{Kind: KindHeadlines}
}

// WithLimit returns a copy of r with an explicit item count.
func (r Request) WithLimit(limit int) Request {
	r.Limit = limit
	return r
}
