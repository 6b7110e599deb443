package logging

import "strings"

// scopeKeys are lifted out of the key=value tail into the bracketed scope,
// in this order.
var scopeKeys = []string{FieldProjectID, FieldSegmentID, FieldStage, FieldCorrelationID}

// leadKeys open the key=value tail, in this order, ahead of the record's own
// fields.
var leadKeys = []string{FieldAlert, FieldEventType, FieldImpact, FieldErrorHint}

const correlationPrefixLen = 8

type consoleLine struct {
	component string
	scope     map[string]string
	trailing  []field
}

// splitFields separates the component and scope fields from the rest. When
// a key repeats, the last value wins for scope keys and all values are kept
// for the tail.
func splitFields(fields []field) consoleLine {
	line := consoleLine{scope: make(map[string]string, len(scopeKeys))}
	rest := make([]field, 0, len(fields))
	for _, f := range fields {
		switch {
		case f.key == FieldComponent:
			line.component = f.value.String()
		case isScopeKey(f.key):
			line.scope[f.key] = f.value.String()
		default:
			rest = append(rest, f)
		}
	}

	line.trailing = make([]field, 0, len(rest))
	for _, key := range leadKeys {
		for _, f := range rest {
			if f.key == key {
				line.trailing = append(line.trailing, f)
			}
		}
	}
	for _, f := range rest {
		if !isLeadKey(f.key) {
			line.trailing = append(line.trailing, f)
		}
	}
	return line
}

// head renders "component [project/segment stage #correlation]", leaving
// out whatever is absent.
func (l consoleLine) head() string {
	var ids []string
	if id := l.scope[FieldProjectID]; id != "" {
		ids = append(ids, id)
	}
	if id := l.scope[FieldSegmentID]; id != "" {
		ids = append(ids, id)
	}
	var parts []string
	if len(ids) > 0 {
		parts = append(parts, strings.Join(ids, "/"))
	}
	if stage := l.scope[FieldStage]; stage != "" {
		parts = append(parts, stage)
	}
	if rid := l.scope[FieldCorrelationID]; rid != "" {
		if len(rid) > correlationPrefixLen {
			rid = rid[:correlationPrefixLen]
		}
		parts = append(parts, "#"+rid)
	}

	head := l.component
	if len(parts) > 0 {
		scope := "[" + strings.Join(parts, " ") + "]"
		if head == "" {
			return scope
		}
		head += " " + scope
	}
	return head
}

func isScopeKey(key string) bool {
	for _, k := range scopeKeys {
		if k == key {
			return true
		}
	}
	return false
}

func isLeadKey(key string) bool {
	for _, k := range leadKeys {
		if k == key {
			return true
		}
	}
	return false
}
