package trace

// Event records what one key did to a session.
type Event struct {
	Seq      int      `json:"seq" yaml:"seq"`
	Key      string   `json:"key" yaml:"key"`
	AtMS     int64    `json:"at_ms" yaml:"at_ms"`
	Symbol   string   `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	State    int      `json:"state" yaml:"state"`
	Failure  int      `json:"failure" yaml:"failure"`
	Outputs  []string `json:"outputs" yaml:"outputs"`
	TimedOut bool     `json:"timed_out" yaml:"timed_out"`
	Unbound  bool     `json:"unbound" yaml:"unbound"`
}

// Object returns the event as a canonical-JSON object. Outputs is always
// an array, never null.
func (e Event) Object() map[string]any {
	outs := e.Outputs
	if outs == nil {
		outs = []string{}
	}
	obj := map[string]any{
		"seq":       e.Seq,
		"key":       e.Key,
		"at_ms":     e.AtMS,
		"state":     e.State,
		"failure":   e.Failure,
		"outputs":   outs,
		"timed_out": e.TimedOut,
		"unbound":   e.Unbound,
	}
	if e.Symbol != "" {
		obj["symbol"] = e.Symbol
	}
	return obj
}

// Fired returns every output label in event order, repeats included.
func Fired(events []Event) []string {
	var out []string
	for _, ev := range events {
		out = append(out, ev.Outputs...)
	}
	return out
}
