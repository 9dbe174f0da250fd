// Package sawchat contains the domain types of a chat client for a remote
// data-question agent: conversation sessions, the events of the agent's
// NDJSON stream, and the Reducer that folds those events into what the user
// sees. Subpackages are named after the dependency they wrap.
package sawchat
