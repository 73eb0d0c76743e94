package constant

// DefaultSearchKeywords is the vocabulary the intent classifier matches final
// user transcripts against. It is deliberately broad: a wasted search is cheap,
// a missed one degrades the conversation. Tune via IntentClassifier config
// rather than editing call sites.
var DefaultSearchKeywords = []string{
	// search intent
	"find", "where", "locate", "aisle", "product", "item",
	"have", "sell", "carry", "stock", "available",
	"need", "want", "looking for", "search",
	"show me", "get me", "buy", "purchase",
	// store sections / categories
	"produce", "dairy", "frozen", "meat", "bakery", "snack",
	"drink", "beverage", "section", "shelf",
	// meal / occasion terms
	"breakfast", "lunch", "dinner", "recipe", "ingredient",
	"organic", "fresh", "healthy",
}
