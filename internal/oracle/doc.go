// Package oracle implements the external natural-language model clients the
// engine consults for intent classification, sentiment analysis, candidate
// ranking, and casual replies.
//
// Two interchangeable backends exist: an OpenAI-compatible chat-completions
// client and an AWS Bedrock (Claude) client. Both are treated as untrusted
// and fallible by their callers: responses are parsed against strict
// schemas, invalid entries are dropped, and every error degrades to a
// deterministic path upstream. Calls are single-shot with no retries;
// callers bound them with the configured timeout.
package oracle
