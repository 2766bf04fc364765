// Package stepwise holds the data model for multi-step tool calling: messages
// and their content parts, tool calls, results and errors, approvals, usage,
// finish reasons, steps, and the [LanguageModel] contract that provider
// adapters implement.
//
// The package is imported under the alias ai throughout the module:
//
//	import ai "github.com/spetersoncode/stepwise"
//
// # Running a Conversation
//
// The loop lives in the agent package. Resolve a model with the client
// package, register tools, and run:
//
//	c := client.New(client.Config{
//	    APIKeys: client.APIKeys{Anthropic: os.Getenv("ANTHROPIC_API_KEY")},
//	})
//	model, err := c.Model(ctx, "anthropic:claude-sonnet-4-5")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_weather", "Get current weather for a location", getWeather),
//	)
//
//	result, err := agent.New(model, registry).Run(ctx, nil,
//	    agent.WithPrompt("What's the weather in Paris?"),
//	    agent.WithStopWhen(agent.StepCountIs(5)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Text())
//
// # Calling a Model Directly
//
//	resp, err := model.Generate(ctx, []ai.Message{ai.NewUserMessage("Hello")},
//	    ai.WithMaxTokens(1000),
//	    ai.WithTemperature(0.7),
//	)
//
// # Errors
//
// Provider adapters report failures as [*Error] values categorized as
// transient, permanent or user input. Use [IsTransient], [StatusCodeOf] and
// [RetryAfterOf] to inspect them; the retry package builds on them.
//
// # Related Packages
//
//   - [github.com/spetersoncode/stepwise/agent]: the multi-step loop
//   - [github.com/spetersoncode/stepwise/tool]: tool descriptors and registry
//   - [github.com/spetersoncode/stepwise/telemetry]: lifecycle listeners
//   - [github.com/spetersoncode/stepwise/client]: "provider:model" resolution
//   - [github.com/spetersoncode/stepwise/retry] and
//     [github.com/spetersoncode/stepwise/middleware]: model wrappers
//   - [github.com/spetersoncode/stepwise/mcp] and
//     [github.com/spetersoncode/stepwise/agui]: protocol bridges
package stepwise
