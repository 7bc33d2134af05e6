package wire

import "encoding/json"

// ErrorsDoc is the canonical shape of a validation failure sent back to
// whichever peer produced the bad frame.
type ErrorsDoc struct {
	Errors  []string `json:"errors"`
	MsgType string   `json:"msgType"`
}

// errorsDoc builds one ErrorsDoc carrying a single message, encoded.
func errorsDoc(message string) []byte {
	doc := ErrorsDoc{Errors: []string{message}, MsgType: "Errors"}
	b, err := json.Marshal(doc)
	if err != nil {
		// ErrorsDoc is always marshalable; this would indicate a bug.
		panic(err)
	}
	return b
}

// Canonical error messages, verbatim from the validator taxonomy.
const (
	msgInvalidJSON  = "Requires valid JSON"
	msgMissingShape = "Requires msgType specified"
)

var (
	errInvalidJSONDoc  = errorsDoc(msgInvalidJSON)
	errMissingShapeDoc = errorsDoc(msgMissingShape)
)
