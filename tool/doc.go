// Package tool defines the tools a model may call during a run and the
// registry that validates their input.
//
// A Tool carries a JSON Schema for its input, an optional approval
// predicate, and either Execute (one result) or Stream (preliminary results
// followed by a final one). Tools without either are client tools: calls to
// them are handed back to the caller.
//
// # Basic Usage
//
// Define tool arguments as a struct. The schema is reflected from json and
// jsonschema tags:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" jsonschema:"required,description=City name"`
//	    Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_weather", "Get current weather",
//	        func(ctx context.Context, args WeatherArgs) (any, error) {
//	            return map[string]any{"temp": 72, "location": args.Location}, nil
//	        }),
//	)
//
// # Approval
//
// RequireApproval gates every call; WithApproval(ApproveIf(pred)) gates
// calls whose input matches. Editable lets the reviewer replace the input.
//
// # Built-in Tools
//
//   - read_file, write_file (approval required), list_directory
//   - http_request (approval required for non-GET methods)
//   - search_files (streams preliminary results)
package tool
