package output

import "github.com/vijay-prabhu/jobmatch/internal/matcher"

// runJSON adds the user errors, which do not marshal on their own
type runJSON struct {
	*matcher.RunResult
	DurationMS int64    `json:"duration_ms"`
	Errors     []string `json:"errors"`
}

type deliveryJSON struct {
	Users     int      `json:"users"`
	Delivered int      `json:"delivered"`
	Errors    []string `json:"errors"`
}

// jsonView swaps in a JSON-friendly form for types that need one
func jsonView(data interface{}) interface{} {
	switch v := data.(type) {
	case *matcher.RunResult:
		return runJSON{
			RunResult:  v,
			DurationMS: v.Duration().Milliseconds(),
			Errors:     v.ErrorMessages(),
		}
	case *matcher.DeliveryReport:
		msgs := make([]string, len(v.Errors))
		for i, err := range v.Errors {
			msgs[i] = err.Error()
		}
		return deliveryJSON{Users: v.Users, Delivered: v.Delivered, Errors: msgs}
	default:
		return data
	}
}
