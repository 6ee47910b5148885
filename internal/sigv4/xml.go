package sigv4

import (
	"encoding/xml"
	"io"
	"strings"
)

// xmlNode is a generic XML tree used as an intermediate step before flattening into
// a plain JSON-shaped tree: repeated tags become arrays, element text becomes string
// values, and attributes are discarded since the target shape is element-name-to-object
// normalization only.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

// xmlToJSON parses an XML document and normalizes it into the same map[string]any /
// []any / string shape encoding/json would produce, so RestXML protocol responses
// can flow through the same projector as JSON ones.
func xmlToJSON(r io.Reader) (any, error) {
	var root xmlNode
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	return map[string]any{root.XMLName.Local: nodeToValue(root)}, nil
}

func nodeToValue(n xmlNode) any {
	if len(n.Children) == 0 {
		return strings.TrimSpace(n.Content)
	}

	obj := map[string]any{}
	for _, child := range n.Children {
		name := child.XMLName.Local
		val := nodeToValue(child)

		if existing, ok := obj[name]; ok {
			switch arr := existing.(type) {
			case []any:
				obj[name] = append(arr, val)
			default:
				obj[name] = []any{existing, val}
			}
		} else {
			obj[name] = val
		}
	}
	return obj
}
