// Package providers registers every built-in provider with youtubuddy.DefaultProviderRegistry when imported, and can
// build registries that use a specific HTTP client.
package providers

import (
	"net/http"

	kkdai "github.com/kkdai/youtube/v2"

	"github.com/alanbriolat/youtubuddy"
	"github.com/alanbriolat/youtubuddy/provider/raw"
	"github.com/alanbriolat/youtubuddy/provider/youtube"
)

// NewRegistry creates a registry of all built-in providers, all making requests with client.
func NewRegistry(client *http.Client) *youtubuddy.ProviderRegistry {
	if client == nil {
		client = http.DefaultClient
	}
	r := &youtubuddy.ProviderRegistry{}
	r.MustAdd(youtube.New(&kkdai.Client{HTTPClient: client}))
	rawConfig := raw.NewConfig()
	rawConfig.Client = client
	r.MustAdd(rawConfig.Provider().WithPriority(youtubuddy.PriorityLowest))
	return r
}
