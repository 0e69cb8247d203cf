package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
)

// JSONCFailureParseError is JSONCParseOp's single failure tag.
const JSONCFailureParseError op.FailureTag = "parseError"

// JSONCParseOp strips `//` and `/* */` comments and trailing commas
// from Data, then decodes the result into a generic value with
// encoding/json. No JSONC library appears anywhere in the retrieved
// example pack (see DESIGN.md); stdlib json plus a small hand-written
// comment-stripping scanner stands in for it.
type JSONCParseOp struct {
	op.Base
	OpName string
	Data   []byte
}

// Name implements op.Op.
func (o *JSONCParseOp) Name() string {
	if o.OpName != "" {
		return o.OpName
	}
	return "JSONCParseOp"
}

// Run implements op.Op.
func (o *JSONCParseOp) Run(context.Context, *ioctx.Context) op.Outcome {
	stripped := stripJSONC(o.Data)

	var v any
	if err := json.Unmarshal(stripped, &v); err != nil {
		return o.Fail(JSONCFailureParseError, fmt.Sprintf("jsonc: %v", err))
	}
	return o.Succeed(v)
}

// stripJSONC removes // line comments, /* */ block comments, and
// trailing commas before the closing bracket of an object or array,
// leaving everything inside string literals untouched.
func stripJSONC(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	escaped := false

	for i := 0; i < len(data); i++ {
		c := data[i]

		if inString {
			out = append(out, c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			out = append(out, c)
		case c == '/' && i+1 < len(data) && data[i+1] == '/':
			for i < len(data) && data[i] != '\n' {
				i++
			}
			if i < len(data) {
				out = append(out, '\n')
			}
		case c == '/' && i+1 < len(data) && data[i+1] == '*':
			i += 2
			for i+1 < len(data) && !(data[i] == '*' && data[i+1] == '/') {
				i++
			}
			i++ // land on the closing '/'
		case c == ',':
			if j := nextNonSpace(data, i+1); j < len(data) && (data[j] == '}' || data[j] == ']') {
				continue
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}

	return out
}

func nextNonSpace(data []byte, i int) int {
	for i < len(data) {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}
