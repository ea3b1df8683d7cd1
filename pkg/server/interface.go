/*
Package server implements msgpack IPC for dictionary search and replace.

Clients write a stream of msgpack maps to stdin and read one msgpack map per
request from stdout. Requests are processed in order; every response carries
the request ID and, for search and replace, the time taken in microseconds.

# Requests

Search reports every dictionary word found in the text:

	{"id": "req_001", "a": "search", "t": "this is bad"}
	{"id": "req_001", "m": [{"w": "bad", "v": "insult", "c": 1}], "n": 1, "t": 38}

Replace substitutes the leftmost-longest word at each position, either with
the given replacement ("to", default from config when absent; an empty
string deletes the words) or with each word's dictionary value when "v" is
true:

	{"id": "req_002", "a": "replace", "t": "this is bad", "to": "***"}
	{"id": "req_002", "r": "this is ***", "t": 21}

Info describes the open dictionary:

	{"id": "req_003", "a": "info"}
	{"id": "req_003", "roots": 812, "value_width": 12, "record_width": 21, "cached": 40}

Failures return an ErrorResponse with an HTTP-like code:

	{"id": "req_004", "e": "text exceeds maximum length of 65536 bytes", "c": 413}
*/
package server

// Request is one client message.
type Request struct {
	ID       string `msgpack:"id"`
	Action   string `msgpack:"a"`
	Text     string `msgpack:"t,omitempty"`
	To       *string `msgpack:"to,omitempty"`
	UseValue bool   `msgpack:"v,omitempty"`
}

// Supported request actions.
const (
	ActionSearch  = "search"
	ActionReplace = "replace"
	ActionInfo    = "info"
)

// Match is a single word found by a search.
type Match struct {
	Word  string `msgpack:"w"`
	Value string `msgpack:"v"`
	Count int    `msgpack:"c"`
}

// SearchResponse lists matches sorted by word.
type SearchResponse struct {
	ID        string  `msgpack:"id"`
	Matches   []Match `msgpack:"m"`
	Count     int     `msgpack:"n"`
	TimeTaken int64   `msgpack:"t"`
}

// ReplaceResponse holds the substituted text.
type ReplaceResponse struct {
	ID        string `msgpack:"id"`
	Result    string `msgpack:"r"`
	TimeTaken int64  `msgpack:"t"`
}

// InfoResponse describes the loaded dictionary.
type InfoResponse struct {
	ID          string `msgpack:"id"`
	RootCount   int    `msgpack:"roots"`
	ValueWidth  int    `msgpack:"value_width"`
	RecordWidth int    `msgpack:"record_width"`
	Cached      int    `msgpack:"cached"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// Error codes
const (
	CodeBadRequest = 400
	CodeTooLarge   = 413
	CodeInternal   = 500
)
