package swarm

// Envelope unwraps an inbound ingest frame into the telemetry envelope.
//
// Two frame shapes are accepted: a relay wrapper {"kind":"swarm_recv",
// "payload":...} whose payload is the envelope either inline or as a JSON
// string, and a bare envelope carrying both "code" and "data" at top level.
// Anything else is not an envelope and the frame is dropped by the caller.
func Envelope(frame *Node) (*Node, bool) {
	if !frame.IsObject() {
		return nil, false
	}

	if kind, ok := frame.Field("kind").Str(); ok && kind == "swarm_recv" {
		payload := frame.Field("payload")
		if payload.IsObject() {
			return payload, true
		}
		if raw, ok := payload.Str(); ok {
			inner, err := Parse([]byte(raw))
			if err != nil || !inner.IsObject() {
				return nil, false
			}
			return inner, true
		}
		return nil, false
	}

	if frame.Field("code") != nil && frame.Field("data") != nil {
		return frame, true
	}
	return nil, false
}
