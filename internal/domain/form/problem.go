package form

import "net/http"

// Problem is a domain failure that is not tied to a single field.
type Problem struct {
	status  int
	code    string
	message string
}

func (p *Problem) Error() string { return p.message }
func (p *Problem) Code() string  { return p.code }
func (p *Problem) Status() int   { return p.status }

func NotFound(code, message string) *Problem {
	return &Problem{status: http.StatusNotFound, code: code, message: message}
}

func Forbidden(code, message string) *Problem {
	return &Problem{status: http.StatusForbidden, code: code, message: message}
}

func Conflict(code, message string) *Problem {
	return &Problem{status: http.StatusConflict, code: code, message: message}
}

func Invalid(code, message string) *Problem {
	return &Problem{status: http.StatusBadRequest, code: code, message: message}
}
