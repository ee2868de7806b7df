package guide

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/titanous/json5"
)

// GearField is a logical field of an equipment record.
type GearField string

const (
	FieldName     GearField = "name"
	FieldSlot     GearField = "slot"
	FieldBasic    GearField = "basic_attributes"
	FieldAdvanced GearField = "advanced_attributes"
	FieldImage    GearField = "image_url"
)

// GearFieldAliases lists, per logical field, the keys accepted for it in
// embedded page data. Earlier spellings win.
var GearFieldAliases = map[GearField][]string{
	FieldName:     {"name", "title"},
	FieldSlot:     {"slot", "slotType"},
	FieldBasic:    {"basicAttributes", "basic_attributes"},
	FieldAdvanced: {"advancedAttributes", "advanced_attributes"},
	FieldImage:    {"imageUrl", "image_url", "icon", "image"},
}

const (
	hydrationSelector = "script#__NEXT_DATA__"
	// minScriptRunes skips short inline scripts (analytics snippets, loaders).
	minScriptRunes = 300
	unknownSlot    = "?"
)

var inlineBlobRe = regexp.MustCompile(
	`\{(?:[^{}]*[,\s])?["']?(?:` + alternation(allAliases()) + `)["']?\s*:[^{}]*\}`,
)

func allAliases() []string {
	var keys []string
	for _, field := range []GearField{FieldName, FieldSlot, FieldBasic, FieldAdvanced, FieldImage} {
		keys = append(keys, GearFieldAliases[field]...)
	}
	return keys
}

// lookupField returns the first alias of field whose value is truthy.
func lookupField(n *Node, field GearField) *Node {
	for _, key := range GearFieldAliases[field] {
		if child, ok := n.Get(key); ok && child.Truthy() {
			return child
		}
	}
	return nil
}

// ExtractGear collects equipment records from the raw markup of a page.
//
// Records from the hydration payload come first, followed by records mined
// from inline script blobs. The two sources are not deduplicated. Unparsable
// data yields no records; it is never an error.
func ExtractGear(raw string) []GearSlot {
	slots := []GearSlot{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		slog.Debug("Failed to parse page markup for gear", "error", err)
		return slots
	}

	slots = append(slots, hydrationGear(doc)...)
	slots = append(slots, inlineScriptGear(doc)...)
	return slots
}

// hydrationGear walks the hydration payload.
func hydrationGear(doc *goquery.Document) []GearSlot {
	payload := doc.Find(hydrationSelector).First()
	if payload.Length() == 0 {
		return nil
	}

	root, err := DecodeNode([]byte(payload.Text()))
	if err != nil {
		slog.Debug("Hydration payload is not valid JSON", "error", err)
		return nil
	}
	return WalkGear(root)
}

type walkFrame struct {
	node *Node
	path string
}

// WalkGear traverses root depth-first in document order and emits a record
// for every mapping that has a name or attribute field. Every child is
// visited whether or not its parent emitted a record.
func WalkGear(root *Node) []GearSlot {
	var slots []GearSlot

	stack := []walkFrame{{node: root}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := frame.node
		switch n.Kind {
		case KindMapping:
			if slot, ok := gearFromMapping(n, lastSegment(frame.path)); ok {
				slots = append(slots, slot)
			}
			for i := len(n.Keys) - 1; i >= 0; i-- {
				key := n.Keys[i]
				stack = append(stack, walkFrame{node: n.Fields[key], path: frame.path + "/" + key})
			}
		case KindSequence:
			for i := len(n.Items) - 1; i >= 0; i-- {
				stack = append(stack, walkFrame{node: n.Items[i], path: frame.path + "/" + strconv.Itoa(i)})
			}
		}
	}
	return slots
}

func lastSegment(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

func gearFromMapping(n *Node, fallbackSlot string) (GearSlot, bool) {
	name := lookupField(n, FieldName).Text()
	basic := lookupField(n, FieldBasic).Text()
	advanced := lookupField(n, FieldAdvanced).Text()
	if name == "" && basic == "" && advanced == "" {
		return GearSlot{}, false
	}

	slot := lookupField(n, FieldSlot).Text()
	if slot == "" {
		slot = fallbackSlot
	}
	if slot == "" {
		slot = unknownSlot
	}

	return GearSlot{
		Slot:               slot,
		Name:               name,
		BasicAttributes:    basic,
		AdvancedAttributes: advanced,
		ImageURL:           imageURL(n),
	}, true
}

// imageURL returns the first truthy image alias, only if it is a string.
func imageURL(n *Node) string {
	img := lookupField(n, FieldImage)
	if img == nil || img.Kind != KindScalar {
		return ""
	}
	s, _ := img.Scalar.(string)
	return s
}

// inlineScriptGear mines object literals out of large inline scripts that
// mention equipment.
func inlineScriptGear(doc *goquery.Document) []GearSlot {
	var slots []GearSlot

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		body := s.Text()
		if !looksLikeEquipmentScript(body) {
			return
		}
		for _, blob := range inlineBlobRe.FindAllString(body, -1) {
			if slot, ok := gearFromBlob(blob); ok {
				slots = append(slots, slot)
			}
		}
	})
	return slots
}

func looksLikeEquipmentScript(body string) bool {
	if utf8.RuneCountInString(body) < minScriptRunes {
		return false
	}
	return strings.Contains(body, "equipment") &&
		(strings.Contains(body, "name") || strings.Contains(body, "Intellect"))
}

// gearFromBlob parses one candidate object. Candidates that fail to parse or
// carry no name are skipped.
func gearFromBlob(blob string) (GearSlot, bool) {
	if nestingDepth(blob) > maxNestingDepth {
		slog.Debug("Skipping inline gear object nested too deeply")
		return GearSlot{}, false
	}

	var obj map[string]any
	if err := json5.Unmarshal([]byte(blob), &obj); err != nil {
		slog.Debug("Skipping malformed inline gear object", "error", err)
		return GearSlot{}, false
	}

	n := NodeFromValue(obj)
	name := lookupField(n, FieldName).Text()
	if name == "" {
		return GearSlot{}, false
	}

	slot := lookupField(n, FieldSlot).Text()
	if slot == "" {
		slot = unknownSlot
	}

	return GearSlot{
		Slot:               slot,
		Name:               name,
		BasicAttributes:    lookupField(n, FieldBasic).Text(),
		AdvancedAttributes: lookupField(n, FieldAdvanced).Text(),
		ImageURL:           imageURL(n),
	}, true
}
