package model

// Outcome is the discriminated result of one analysis attempt.
// Exactly one of Success or Failure is set.
type Outcome struct {
	Success *Success
	Failure *Failure
}

// Success carries the argument map and the source URLs the service used
type Success struct {
	Map     ArgumentMap `json:"argument_map"`
	Sources []string    `json:"sources"`
}

// Failure carries the error that ended the attempt
type Failure struct {
	Err *Error
}

// Message returns the human-readable failure message
func (f *Failure) Message() string {
	if f == nil || f.Err == nil {
		return ""
	}
	return f.Err.Message
}

// Succeed builds a successful outcome; nil sources become an empty list
func Succeed(m ArgumentMap, sources []string) Outcome {
	if sources == nil {
		sources = []string{}
	}
	if m.Elements == nil {
		m.Elements = []ArgumentElement{}
	}
	return Outcome{Success: &Success{Map: m, Sources: sources}}
}

// Fail builds a failed outcome
func Fail(err *Error) Outcome {
	return Outcome{Failure: &Failure{Err: err}}
}

// OK reports whether the outcome is a success
func (o Outcome) OK() bool {
	return o.Success != nil
}

// Err returns the failure as an error, or nil on success
func (o Outcome) Err() error {
	if o.Failure == nil || o.Failure.Err == nil {
		return nil
	}
	return o.Failure.Err
}
