package types

// Silent is implemented by outputs that must not be answered, such as display
// notifications.
type Silent interface {
	NoReply() bool
}

// Resulter is implemented by outputs whose app-facing result differs from the
// output struct itself.
type Resulter interface {
	Result() interface{}
}
