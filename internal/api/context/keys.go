package context

type Key string

const (
	Session   Key = "session"
	Scope     Key = "scope"
	Params    Key = "params"
	RequestID Key = "request_id"
)
