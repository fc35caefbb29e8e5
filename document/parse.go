package document

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON wird zurückgegeben, wenn die Eingabe kein gültiges JSON ist.
var ErrInvalidJSON = errors.New("invalid json document")

// Parse dekodiert ein JSON-Dokument in einen Node-Baum. Anders als
// encoding/json in map[string]any bleibt die Schlüsselreihenfolge erhalten.
func Parse(data []byte) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(r gjson.Result) *Node {
	switch r.Type {
	case gjson.String:
		return String(r.Str)
	case gjson.Number:
		return &Node{Kind: KindNumber, Text: r.Raw}
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.JSON:
		if r.IsArray() {
			n := &Node{Kind: KindList}
			r.ForEach(func(_, value gjson.Result) bool {
				n.Items = append(n.Items, fromResult(value))
				return true
			})
			return n
		}
		n := &Node{Kind: KindObject}
		r.ForEach(func(key, value gjson.Result) bool {
			n.Fields = append(n.Fields, Field{Key: key.String(), Value: fromResult(value)})
			return true
		})
		return n
	default:
		return Null()
	}
}
