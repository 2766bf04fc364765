// Package agent runs multi-step tool-calling conversations.
//
// A run sends the conversation to a model, executes the tool calls in the
// response, feeds the results back, and repeats until a stop condition fires,
// the model finishes without tool calls, a call is left waiting for the
// caller (approval or client tool), or the run is cancelled.
//
// # Basic Usage
//
//	type WeatherArgs struct {
//	    Location string `json:"location" jsonschema:"required"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_weather", "Get current weather",
//	        func(ctx context.Context, args WeatherArgs) (any, error) {
//	            return map[string]any{"temp": 72, "location": args.Location}, nil
//	        }),
//	)
//
//	a := agent.New(model, registry)
//	result, err := a.Run(ctx, nil,
//	    agent.WithPrompt("What's the weather in Paris?"),
//	    agent.WithMaxSteps(5),
//	)
//	fmt.Println(result.Text(), result.TotalUsage.TotalTokens)
//
// # Stop Conditions
//
// WithStopWhen accepts any number of StopCondition values; the run stops
// when any reports true. Every condition is evaluated after every step.
// Without one the run stops after DefaultMaxSteps steps.
//
// # Approvals
//
// Tools with NeedsApproval produce approval requests instead of executing,
// and the run halts. Resolve them by appending the result's response
// messages and an ai.ApprovalMessage to the conversation and running again:
//
//	msgs = append(msgs, result.ResponseMessages...)
//	msgs = append(msgs, ai.ApprovalMessage(ai.Approve(req.ApprovalID)))
//	result, err = a.Run(ctx, msgs)
//
// Approved calls execute before the first model call; denied calls are
// reported to the model as execution-denied.
//
// # Timeouts and Cancellation
//
// WithTimeout bounds the run and WithTimeouts adds a per-step budget. Any
// cancellation ends the run with an *ai.CancelError whose Cause is the
// parent context's cause, ai.ErrTotalTimeout or ai.ErrStepTimeout.
//
// # Telemetry
//
// Lifecycle events go to the listeners in telemetry.Default, then those
// passed with WithListeners, then WithOnStepFinish and WithOnFinish
// callbacks. Listener errors and panics never affect the run.
package agent
