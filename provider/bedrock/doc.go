// Package bedrock implements [stepwise.LanguageModel] on the AWS Bedrock
// Converse API.
//
// The adapter takes an aws.Config so callers keep control of credentials and
// region resolution:
//
//	cfg := aws.Config{Region: "us-east-1", Credentials: bedrock.EnvCredentials()}
//	model := bedrock.New(cfg, bedrock.WithModel(bedrock.ClaudeSonnet45))
//
// Supported: text, image and PDF input, tool calling with tool choice,
// reasoning content (replayed with its signature) and structured output
// through a synthetic "json_response" tool. Tool names are sanitized to the
// character set Bedrock accepts and mapped back on the way out.
package bedrock
