// Package engine orchestrates multi-persona focus-group conversations.
//
// The engine owns a registry of independent conversations. Each conversation
// advances one turn at a time: a deterministic scheduler picks the next
// speaker (a roster persona or the moderator), the response generator
// produces an utterance biased toward that persona's traits, and the engine
// commits the utterance and turn-index increment as one atomic step.
//
// Turn commits are serialized per conversation; distinct conversations
// proceed fully in parallel.
package engine
