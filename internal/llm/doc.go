// Package llm provides the prediction provider abstraction and its Gemini
// implementation. A Provider offers structured, streaming, grounded and
// image-generation call shapes; the Predictor layers typed egg-analysis
// calls on top with retry logic, rate limiting and call observation.
package llm
