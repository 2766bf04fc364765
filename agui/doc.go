// Package agui connects runs to frontends speaking the AG-UI protocol.
//
// AG-UI (Agent-User Interface) is an open, lightweight, event-based protocol that
// standardizes how AI agents connect to user-facing applications. This package
// maps run lifecycle events to AG-UI events and converts AG-UI input into
// conversation messages.
//
// The package does NOT provide HTTP handlers or transport implementations. See
// cmd/aguiserver for an SSE server built on it.
//
// # Events
//
// [Listener] is a telemetry listener. Register one per run:
//
//	l := agui.NewListener(input.ThreadID, input.RunID, func(ev events.Event) {
//	    writeSSE(w, ev)
//	})
//	result, err := a.Run(ctx, input.Messages, agent.WithListeners(l))
//
// The mapping is:
//
//   - run start → RUN_STARTED
//   - step start → STEP_STARTED
//   - tool call start → TOOL_CALL_START, TOOL_CALL_ARGS, TOOL_CALL_END
//   - tool call finish → TOOL_CALL_RESULT
//   - step finish → TEXT_MESSAGE_START/CONTENT/END for the step text,
//     tool call events for calls left to the caller, a CUSTOM
//     "tool_approval_request" event per approval request, then STEP_FINISHED
//   - run finish → RUN_FINISHED, or RUN_ERROR when the run failed
//
// # Input
//
// [RunAgentInput.Prepare] converts messages, frontend tools and approval
// decisions. Frontend tools become client tools: a call to one ends the run
// and the frontend answers with a tool message in the next request.
// Approval decisions travel in forwarded props:
//
//	{"approvals": [{"approvalId": "...", "approved": true}]}
//
// Use [FromMessages] to build MESSAGES_SNAPSHOT events from a conversation.
package agui
