// Package api provides the Gemini streaming API client implementation.
package api

// GJSON paths for extracting values from streamGenerateContent SSE chunks.
const (
	// Candidate content: every part's text in the first candidate
	PathParts     = "candidates.0.content.parts"
	PathPartText  = "text"
	PathFinish    = "candidates.0.finishReason"
	PathBlockReason = "promptFeedback.blockReason"

	// Web grounding citations
	PathGroundingChunks = "candidates.0.groundingMetadata.groundingChunks"
	PathGroundingURI    = "web.uri"
	PathGroundingTitle  = "web.title"

	// Error payloads share the request framing but carry a single error object
	PathErrorCode    = "error.code"
	PathErrorStatus  = "error.status"
	PathErrorMessage = "error.message"
)
