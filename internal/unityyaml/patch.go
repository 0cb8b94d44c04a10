package unityyaml

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PatchRef replaces the inline reference of every `<field>: {fileID: ...}` occurrence with ref.
// It reports how many occurrences were rewritten.
func PatchRef(content, field string, ref Ref) (string, int) {
	re := regexp.MustCompile(`(` + regexp.QuoteMeta(field) + `: )\{fileID: [^}]*\}`)
	n := len(re.FindAllStringIndex(content, -1))
	if n == 0 {
		return content, 0
	}
	repl := ref.String()
	out := re.ReplaceAllStringFunc(content, func(m string) string {
		return m[:len(field)+2] + repl
	})
	return out, n
}

// ReadRef returns the first inline reference stored under field.
func ReadRef(content, field string) (Ref, bool) {
	re := regexp.MustCompile(regexp.QuoteMeta(field) + `: (\{fileID: [^}]*\})`)
	m := re.FindStringSubmatch(content)
	if m == nil {
		return Ref{}, false
	}
	r, err := ParseRef(m[1])
	if err != nil {
		return Ref{}, false
	}
	return r, true
}

// ReplaceList rewrites the block sequence that follows the `key:` line. Existing `- ` items
// directly below the key (at the key's indentation or deeper) are dropped and refs are written
// in their place, using the key's indentation as Unity does for sequences.
func ReplaceList(content, key string, refs []Ref) (string, error) {
	lines := strings.SplitAfter(content, "\n")
	at := -1
	for i, l := range lines {
		switch strings.TrimSpace(l) {
		case key + ":":
			at = i
		case key + ": []":
			// Unity writes empty sequences in flow style.
			at = i
			lines[i] = leadingSpace(l) + key + ":\n"
		}
		if at >= 0 {
			break
		}
	}
	if at < 0 {
		return content, fmt.Errorf("key %q not found", key)
	}
	indent := leadingSpace(lines[at])

	end := at + 1
	for end < len(lines) {
		l := lines[end]
		trimmed := strings.TrimSpace(l)
		if !strings.HasPrefix(trimmed, "- ") || len(leadingSpace(l)) < len(indent) {
			break
		}
		end++
	}

	items := make([]string, 0, len(refs))
	for _, r := range refs {
		items = append(items, indent+"- "+r.String()+"\n")
	}
	if !strings.HasSuffix(lines[at], "\n") {
		lines[at] += "\n"
	}

	out := make([]string, 0, len(lines)-(end-at-1)+len(items))
	out = append(out, lines[:at+1]...)
	out = append(out, items...)
	out = append(out, lines[end:]...)
	return strings.Join(out, ""), nil
}

// ReadList returns the inline references listed under key.
func ReadList(content, key string) ([]Ref, error) {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != key+":" {
			continue
		}
		var refs []Ref
		for _, item := range lines[i+1:] {
			trimmed := strings.TrimSpace(item)
			if !strings.HasPrefix(trimmed, "- ") {
				break
			}
			r, err := ParseRef(strings.TrimPrefix(trimmed, "- "))
			if err != nil {
				return nil, err
			}
			refs = append(refs, r)
		}
		return refs, nil
	}
	return nil, fmt.Errorf("key %q not found", key)
}

// FieldInt reads an integer scalar field such as `topTileIndex: 3`.
func FieldInt(content, field string) (int, bool) {
	re := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(field) + `: (-?\d+)\s*$`)
	m := re.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
