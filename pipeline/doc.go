// Package pipeline is the outbound API call path for the admin
// application. Every call comes back as a classified result: a closed set
// of failure kinds with user-presentable messages, never a raw transport
// error.
//
// The [Client] folds in the two behaviors every call site would otherwise
// hand-roll: a single refresh-and-retry when the backend answers 401, and
// bounded backoff for transient network failures. Neither ever loops: one
// refresh per call, a fixed attempt budget per call.
package pipeline
