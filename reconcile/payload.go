package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
)

// Payloads are opaque records: only the identity attribute is ever rewritten,
// every other attribute is kept as found, in its original order.

const attrUserID = "user_id"

// lookup evaluates a jsonpath on a raw payload. ok is false if the payload is
// not valid json or the path does not exist.
func lookup(raw json.RawMessage, path string) (value any, ok bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, false
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, false
	}
	// jsonpath may answer a single value as a list of one.
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		jval = jlist[0]
	}
	return jval, true
}

// lookupString returns the string at path, if any.
func lookupString(raw json.RawMessage, path string) (string, bool) {
	v, ok := lookup(raw, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// lookupText returns the value at path as text, for logs. "" when absent.
func lookupText(raw json.RawMessage, path string) string {
	v, ok := lookup(raw, path)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// setString sets a top level string attribute of a JSON object, keeping
// all the other attributes and their order. A missing attribute is appended.
func setString(raw json.RawMessage, key, value string) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("payload is not a json object")
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.WriteByte('{')
	found := false
	first := true
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid payload: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid payload: unexpected token %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid payload: attribute %q: %w", name, err)
		}
		if name == key && !found {
			found = true
			v = encoded
		} else if name == key {
			continue // later duplicates of key are dropped
		}
		if !first {
			out.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(name)
		out.Write(k)
		out.WriteByte(':')
		out.Write(v)
	}
	// consume the closing delimiter and make sure nothing follows.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid payload: trailing data")
	}

	if !found {
		if !first {
			out.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		out.Write(k)
		out.WriteByte(':')
		out.Write(encoded)
	}
	out.WriteByte('}')
	return out.Bytes(), nil
}
