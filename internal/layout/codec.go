package layout

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Attribute keys of the on-disk record shape.
const (
	keyType        = "type"
	keyParent      = "parent"
	keyTitle       = "title"
	keyTitleFixed  = "titlefixed"
	keyCaption     = "caption"
	keyPosition    = "position"
	keySize        = "size"
	keyMaximized   = "maximized"
	keyFullscreen  = "fullscreen"
	keyLastActive  = "last_active_window"
	keyRatio       = "ratio"
	keyLabels      = "labels"
	keyActivePage  = "active_page"
	keyProfile     = "profile"
	keyDirectory   = "directory"
	keyCommand     = "command"
	keyEnvironment = "environment"
	keyGroup       = "group"
	keyInSplit     = "_in_split"
)

// legacy spellings accepted on decode.
var keyAliases = map[string]string{
	"maximised":   keyMaximized,
	"title_fixed": keyTitleFixed,
	"cwd":         keyDirectory,
	"env":         keyEnvironment,
}

// EncodeRecord converts rec into its on-disk attribute map, applying the
// trimming rule.
func EncodeRecord(rec Record) (map[string]any, error) {
	if !rec.Kind.accepts(rec.Attrs) {
		return nil, fmt.Errorf("layout: %s record carries %T", rec.Kind, rec.Attrs)
	}
	out := map[string]any{keyType: rec.Kind.String()}
	if rec.Kind != KindWindow && rec.Parent != "" {
		out[keyParent] = string(rec.Parent)
	}
	switch a := rec.Attrs.(type) {
	case WindowAttrs:
		out[keyTitle] = a.Title
		out[keyTitleFixed] = a.TitleFixed
		out[keyCaption] = a.Caption
		if a.Position != nil {
			out[keyPosition] = fmt.Sprintf("%d:%d", a.Position.X, a.Position.Y)
		}
		if a.Size != nil {
			out[keySize] = []any{strconv.Itoa(a.Size.W), strconv.Itoa(a.Size.H)}
		}
		out[keyMaximized] = a.Maximized
		out[keyFullscreen] = a.Fullscreen
		out[keyLastActive] = a.LastActive
	case SplitAttrs:
		out[keyCaption] = a.Caption
		if a.Ratio > 0 {
			out[keyRatio] = a.Ratio
		}
		if a.Position > 0 {
			out[keyPosition] = a.Position
		}
		out[keyInSplit] = a.InSplit
	case NotebookAttrs:
		out[keyCaption] = a.Caption
		if len(a.Labels) > 0 {
			out[keyLabels] = stringsToAny(a.Labels)
		}
		if a.ActivePage > 0 {
			out[keyActivePage] = a.ActivePage
		}
		out[keyInSplit] = a.InSplit
	case TerminalAttrs:
		out[keyTitle] = a.Title
		out[keyCaption] = a.Caption
		out[keyProfile] = a.Profile
		out[keyDirectory] = a.Directory
		out[keyCommand] = a.Command
		if len(a.Environment) > 0 {
			out[keyEnvironment] = stringsToAny(a.Environment)
		}
		out[keyGroup] = a.Group
		out[keyInSplit] = a.InSplit
	}
	Trim(out)
	return out, nil
}

// Trim removes attributes that are never persisted: empty strings, false,
// the literal "default", empty lists and underscore-prefixed bookkeeping
// keys. Records inside a split also lose their caption.
func Trim(attrs map[string]any) {
	if split, _ := attrs[keyInSplit].(bool); split {
		delete(attrs, keyCaption)
	}
	for k, v := range attrs {
		if k == keyType {
			continue
		}
		if strings.HasPrefix(k, "_") || omittable(v) {
			delete(attrs, k)
		}
	}
}

func omittable(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == "" || x == "default"
	case bool:
		return !x
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	default:
		return false
	}
}

// DecodeRecord parses an on-disk attribute map. Decoding is lenient: unknown
// keys are ignored and loosely typed values ("True", "3") are coerced. Only a
// missing or unknown type is an error.
func DecodeRecord(raw map[string]any) (Record, error) {
	typ, ok := raw[keyType]
	if !ok {
		return Record{}, fmt.Errorf("layout: record has no %q", keyType)
	}
	kind, err := ParseKind(fmt.Sprint(typ))
	if err != nil {
		return Record{}, err
	}
	attrs := make(map[string]any, len(raw))
	for k, v := range raw {
		if alias, ok := keyAliases[k]; ok {
			k = alias
		}
		attrs[k] = v
	}
	rec := Record{Kind: kind}
	if kind != KindWindow {
		rec.Parent = NodeID(asString(attrs[keyParent]))
	}
	switch kind {
	case KindWindow:
		a := WindowAttrs{
			Title:      asString(attrs[keyTitle]),
			TitleFixed: asBool(attrs[keyTitleFixed]),
			Caption:    asString(attrs[keyCaption]),
			Maximized:  asBool(attrs[keyMaximized]),
			Fullscreen: asBool(attrs[keyFullscreen]),
			LastActive: asBool(attrs[keyLastActive]),
		}
		if p, ok := parsePoint(attrs[keyPosition]); ok {
			a.Position = &p
		}
		if s, ok := parseSize(attrs[keySize]); ok {
			a.Size = &s
		}
		rec.Attrs = a
	case KindSplitH, KindSplitV:
		rec.Attrs = SplitAttrs{
			Caption:  asString(attrs[keyCaption]),
			Ratio:    asFloat(attrs[keyRatio]),
			Position: asInt(attrs[keyPosition]),
			InSplit:  asBool(attrs[keyInSplit]),
		}
	case KindNotebook:
		rec.Attrs = NotebookAttrs{
			Caption:    asString(attrs[keyCaption]),
			Labels:     asStrings(attrs[keyLabels]),
			ActivePage: asInt(attrs[keyActivePage]),
			InSplit:    asBool(attrs[keyInSplit]),
		}
	case KindTerminal, KindStub:
		rec.Attrs = TerminalAttrs{
			Title:       asString(attrs[keyTitle]),
			Caption:     asString(attrs[keyCaption]),
			Profile:     asString(attrs[keyProfile]),
			Directory:   asString(attrs[keyDirectory]),
			Command:     asString(attrs[keyCommand]),
			Environment: asStrings(attrs[keyEnvironment]),
			Group:       asString(attrs[keyGroup]),
			InSplit:     asBool(attrs[keyInSplit]),
		}
	}
	return rec, nil
}

// EncodeFlat encodes every record of f.
func EncodeFlat(f Flat) (map[string]any, error) {
	out := make(map[string]any, len(f))
	for _, id := range f.IDs() {
		m, err := EncodeRecord(f[id])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		out[string(id)] = m
	}
	return out, nil
}

// DecodeFlat decodes a layout section. Records that fail to decode are
// reported and skipped; the rest are kept.
func DecodeFlat(raw map[string]any) (Flat, []error) {
	out := make(Flat, len(raw))
	var errs []error
	for id, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: record is %T, want mapping", id, entry))
			continue
		}
		rec, err := DecodeRecord(m)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		out[NodeID(id)] = rec
	}
	slices.SortFunc(errs, func(a, b error) int { return strings.Compare(a.Error(), b.Error()) })
	return out, errs
}

// WithAttr returns rec with one on-disk attribute replaced. A nil value
// removes the attribute. The record kind cannot be changed this way.
func WithAttr(rec Record, key string, val any) (Record, error) {
	if key == keyType {
		return Record{}, fmt.Errorf("layout: %q cannot be edited", keyType)
	}
	m, err := EncodeRecord(rec)
	if err != nil {
		return Record{}, err
	}
	if split := inSplit(rec.Attrs); split {
		m[keyInSplit] = true
		if c := captionOf(rec.Attrs); c != "" {
			m[keyCaption] = c
		}
	}
	if val == nil {
		delete(m, key)
	} else {
		m[key] = val
	}
	return DecodeRecord(m)
}

func stringsToAny(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(x)))
		return err == nil && b
	case int:
		return x != 0
	case int64:
		return x != 0
	default:
		return false
	}
}

func asInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case uint64:
		if x > math.MaxInt32 {
			return 0
		}
		return int(x)
	case float64:
		return int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func asStrings(v any) []string {
	switch x := v.(type) {
	case []string:
		return slices.Clone(x)
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			out = append(out, asString(item))
		}
		return out
	case string:
		if x == "" {
			return nil
		}
		return []string{x}
	default:
		return nil
	}
}

// parsePoint accepts "x:y" or a two element list.
func parsePoint(v any) (Point, bool) {
	if s, ok := v.(string); ok {
		xs, ys, found := strings.Cut(s, ":")
		if !found {
			return Point{}, false
		}
		x, errX := strconv.Atoi(strings.TrimSpace(xs))
		y, errY := strconv.Atoi(strings.TrimSpace(ys))
		if errX != nil || errY != nil {
			return Point{}, false
		}
		return Point{X: x, Y: y}, true
	}
	parts := asStrings(v)
	if len(parts) != 2 {
		return Point{}, false
	}
	return Point{X: asInt(parts[0]), Y: asInt(parts[1])}, true
}

// parseSize accepts a two element list or "WxH".
func parseSize(v any) (Size, bool) {
	if s, ok := v.(string); ok {
		ws, hs, found := strings.Cut(strings.ToLower(s), "x")
		if !found {
			return Size{}, false
		}
		w, errW := strconv.Atoi(strings.TrimSpace(ws))
		h, errH := strconv.Atoi(strings.TrimSpace(hs))
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return Size{}, false
		}
		return Size{W: w, H: h}, true
	}
	parts := asStrings(v)
	if len(parts) != 2 {
		return Size{}, false
	}
	s := Size{W: asInt(parts[0]), H: asInt(parts[1])}
	if s.W <= 0 || s.H <= 0 {
		return Size{}, false
	}
	return s, true
}
