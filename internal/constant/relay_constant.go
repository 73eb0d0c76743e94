package constant

// Canned responses for the product search gateway. The relay recognizes these
// to decide whether a rendered result is a real match or a fallback.
const (
	ProductNotFoundMessage   = "I couldn't find any products matching your query. Could you rephrase your question?"
	SearchUnavailableMessage = "I'm sorry, product search is not available at the moment."
	SearchErrorMessage       = "I encountered an error while searching for products. Please try again."
)

// Messages injected into the upstream conversation during enrichment.
const (
	ContextualUpdatePrefix = "Inventory lookup results (authoritative, use these over any prior knowledge): "

	EnrichmentTriggerMessage = "Please answer my last question using the product information you were just given, " +
		"mentioning the exact aisle location."
)

// DefaultAgentPrompt is the persona sent in the conversation initiation
// override when AGENT_PROMPT is not configured.
const DefaultAgentPrompt = "You are a helpful AI shopping assistant for StorePal at WinMart. " +
	"I have access to the complete store inventory database with products across categories like " +
	"Produce, Dairy, Frozen, Meat, Bakery, and more. " +
	"When customers ask about products, provide specific information including the product name, " +
	"category, aisle location, and description. Be friendly, helpful, and concise. " +
	"If asked about product locations, always mention the aisle number clearly. " +
	"Help customers with shopping lists, product recommendations, and store navigation."

// DefaultFirstMessage opens the conversation when AGENT_FIRST_MESSAGE is not configured.
const DefaultFirstMessage = "Hi! I'm your StorePal assistant at WinMart. I can help you find products, " +
	"check aisle locations, and make shopping recommendations. What are you looking for today?"
