// Package client resolves "provider:model" references into configured
// [stepwise.LanguageModel] values.
//
// A Client holds credentials for every provider and builds models lazily on
// first use:
//
//	c := client.New(client.Config{
//	    APIKeys: client.APIKeys{
//	        Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
//	        OpenAI:    os.Getenv("OPENAI_API_KEY"),
//	    },
//	})
//
//	model, err := c.Model(ctx, "anthropic:claude-sonnet-4-5")
//	a := agent.New(model, registry)
//
// Recognized providers are anthropic, openai, google, vertex and bedrock.
// Register adds or replaces a provider factory.
//
// # Middleware
//
// Every model is wrapped, outermost first, with:
//
//   - default call settings (Config.Defaults)
//   - request events (Config.Events)
//   - retries with exponential backoff (Config.Retry)
//   - adaptive rate limiting shared per provider (Config.RateLimit)
//
// Events are sent without blocking and dropped when the channel is full:
//
//	events := make(chan client.Event, 100)
//	c := client.New(client.Config{Events: events, ...})
package client
