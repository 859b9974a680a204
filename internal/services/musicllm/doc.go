// Package musicllm suggests background music for invitation templates using
// an OpenRouter chat model in JSON mode.
package musicllm
