package unityyaml

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	// Texture2D main object inside a texture asset.
	TextureFileID = 2800000
	// ScriptableObject main object inside a .asset file.
	MainObjectFileID = 11400000

	TypeMetaAsset = 2
	TypeImported  = 3
)

// Ref is an inline object reference as serialized by Unity: {fileID: F, guid: G, type: T}.
// A zero FileID is the null reference and renders as {fileID: 0}.
type Ref struct {
	FileID int64
	GUID   string
	Type   int
}

func (r Ref) IsNull() bool { return r.FileID == 0 }

func (r Ref) String() string {
	if r.IsNull() {
		return "{fileID: 0}"
	}
	if r.GUID == "" {
		return fmt.Sprintf("{fileID: %d}", r.FileID)
	}
	return fmt.Sprintf("{fileID: %d, guid: %s, type: %d}", r.FileID, r.GUID, r.Type)
}

func TextureRef(guid string) Ref {
	return Ref{FileID: TextureFileID, GUID: guid, Type: TypeImported}
}

func BlockDefRef(guid string) Ref {
	return Ref{FileID: MainObjectFileID, GUID: guid, Type: TypeMetaAsset}
}

var refPattern = regexp.MustCompile(`^\{fileID: (-?\d+)(?:, guid: ([0-9a-fA-F]+), type: (\d+))?\}$`)

func ParseRef(s string) (Ref, error) {
	m := refPattern.FindStringSubmatch(s)
	if m == nil {
		return Ref{}, fmt.Errorf("not an object reference: %q", s)
	}
	var r Ref
	r.FileID, _ = strconv.ParseInt(m[1], 10, 64)
	if m[2] != "" {
		r.GUID = m[2]
		r.Type, _ = strconv.Atoi(m[3])
	}
	return r, nil
}
