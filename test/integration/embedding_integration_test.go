package integration

import (
	"log"
	"os"
	"testing"

	"storepal-voice-be/pkg/embedding"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOllamaEmbedding verifies the local Ollama embedding backend end to end.
// Requires a running Ollama server; gated on OLLAMA_BASE_URL.
func TestOllamaEmbedding(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		t.Skip("Skipping integration test: OLLAMA_BASE_URL not set")
	}
	model := os.Getenv("OLLAMA_EMBED_MODEL")
	if model == "" {
		model = "nomic-embed-text"
	}

	provider := embedding.NewOllamaProvider(baseURL, model)

	res, err := provider.Generate("Where can I find organic bananas?", embedding.TaskTypeQuery)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.Embedding.Values, "embedding vector must not be empty")

	// Normalized output: magnitude ~1 so cosine similarity is a dot product.
	var sumSquares float64
	for _, v := range res.Embedding.Values {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sumSquares, 0.01, "vector must be L2-normalized")
}
