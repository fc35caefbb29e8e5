package document

import (
	"strconv"
)

// Kind unterscheidet die Varianten eines Dokument-Knotens.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Field ist ein Schlüssel-Wert-Paar eines Objekts. Die Reihenfolge der Felder
// entspricht der Reihenfolge im Quelldokument.
type Field struct {
	Key   string
	Value *Node
}

// Node ist ein Knoten im Dokumentbaum: Objekt, Liste oder Skalar.
// Ein Baum wird nach dem Aufbau nicht mehr verändert.
type Node struct {
	Kind Kind
	// Text enthält bei Skalaren den Wert als Text (Zahlen im Originalliteral).
	Text   string
	Fields []Field
	Items  []*Node
}

// Get liefert den Wert zum ersten Vorkommen des Schlüssels.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindObject {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Has prüft, ob ein Objekt alle angegebenen Schlüssel besitzt.
func (n *Node) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := n.Get(k); !ok {
			return false
		}
	}
	return true
}

func (n *Node) IsObject() bool { return n != nil && n.Kind == KindObject }

// Str liefert den Wert eines String-Knotens.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Kind != KindString {
		return "", false
	}
	return n.Text, true
}

// Number liefert den numerischen Wert eines Zahlen-Knotens.
func (n *Node) Number() (float64, bool) {
	if n == nil || n.Kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.Text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Scalar liefert die Textdarstellung eines Skalars; Objekte und Listen ergeben "".
func (n *Node) Scalar() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindString, KindNumber, KindBool:
		return n.Text
	default:
		return ""
	}
}

// StringAt folgt einem Pfad aus Objektschlüsseln und liefert den String am Ende.
func (n *Node) StringAt(path ...string) (string, bool) {
	cur := n
	for _, key := range path {
		next, ok := cur.Get(key)
		if !ok {
			return "", false
		}
		cur = next
	}
	return cur.Str()
}

// Walk durchläuft den Baum depth-first in pre-order und ruft visit für jedes
// Objekt auf. Treffer schneiden keine Teilbäume ab.
func Walk(n *Node, visit func(obj *Node)) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindObject:
		visit(n)
		for _, f := range n.Fields {
			Walk(f.Value, visit)
		}
	case KindList:
		for _, item := range n.Items {
			Walk(item, visit)
		}
	}
}

// Konstruktoren, vor allem für Tests und programmatisch erzeugte Dokumente.

func Object(fields ...Field) *Node { return &Node{Kind: KindObject, Fields: fields} }

func List(items ...*Node) *Node { return &Node{Kind: KindList, Items: items} }

func F(key string, value *Node) Field { return Field{Key: key, Value: value} }

func String(s string) *Node { return &Node{Kind: KindString, Text: s} }

func Int(i int64) *Node { return &Node{Kind: KindNumber, Text: strconv.FormatInt(i, 10)} }

func Bool(b bool) *Node { return &Node{Kind: KindBool, Text: strconv.FormatBool(b)} }

func Null() *Node { return &Node{Kind: KindNull} }
