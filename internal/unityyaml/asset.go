package unityyaml

import (
	"bytes"
	"strconv"
	"text/template"

	"voxelengine.dev/internal/catalogs"
)

// Field names of the BlockDefinitionSO serialized layout.
const (
	FieldTopTexture    = "topTexture"
	FieldSideTexture   = "sideTexture"
	FieldBottomTexture = "bottomTexture"

	FieldTopTile    = "topTileIndex"
	FieldSideTile   = "sideTileIndex"
	FieldBottomTile = "bottomTileIndex"
)

var blockAssetTmpl = template.Must(template.New("block").Parse(`%YAML 1.1
%TAG !u! tag:unity3d.com,2011:
--- !u!114 &11400000
MonoBehaviour:
  m_ObjectHideFlags: 0
  m_CorrespondingSourceObject: {fileID: 0}
  m_PrefabInstance: {fileID: 0}
  m_PrefabAsset: {fileID: 0}
  m_GameObject: {fileID: 0}
  m_Enabled: 1
  m_EditorHideFlags: 0
  m_Script: {{.Script}}
  m_Name: {{.AssetName}}
  m_EditorClassIdentifier: 
  blockId: {{.ID}}
  blockName: {{.Name}}
  isSolid: {{.Solid}}
  isTransparent: {{.Transparent}}
  topTileIndex: {{.Top}}
  bottomTileIndex: {{.Bottom}}
  sideTileIndex: {{.Side}}
  topTexture: {{.Null}}
  sideTexture: {{.Null}}
  bottomTexture: {{.Null}}
  lightEmission: {{.Emission}}
  hardness: {{.Hardness}}
  preferredToolType: {{.Tool}}

`))

var nativeMetaTmpl = template.Must(template.New("meta").Parse(`fileFormatVersion: 2
guid: {{.}}
NativeFormatImporter:
  externalObjects: {}
  mainObjectFileID: 11400000
  userData: 
  assetBundleName: 
  assetBundleVariant: 
`))

// ScriptRef is the m_Script reference of a MonoBehaviour backed by the script with guid.
func ScriptRef(guid string) Ref {
	return Ref{FileID: 11500000, GUID: guid, Type: TypeImported}
}

// RenderBlockAsset renders a BlockDefinitionSO asset with null texture references.
func RenderBlockAsset(b catalogs.BlockDef, scriptGUID string) ([]byte, error) {
	data := struct {
		Script      string
		AssetName   string
		ID          int
		Name        string
		Solid       int
		Transparent int
		Top         int
		Side        int
		Bottom      int
		Null        string
		Emission    int
		Hardness    string
		Tool        int
	}{
		Script:      ScriptRef(scriptGUID).String(),
		AssetName:   b.AssetName(),
		ID:          b.ID,
		Name:        b.Name,
		Solid:       boolInt(b.Solid),
		Transparent: boolInt(b.Transparent),
		Top:         b.Top,
		Side:        b.Side,
		Bottom:      b.Bottom,
		Null:        Ref{}.String(),
		Emission:    b.Emission,
		Hardness:    strconv.FormatFloat(b.Hardness, 'f', -1, 64),
		Tool:        int(b.Tool),
	}
	var buf bytes.Buffer
	if err := blockAssetTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderNativeMeta renders the .meta sidecar of a native (.asset) file.
func RenderNativeMeta(guid string) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativeMetaTmpl.Execute(&buf, guid); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
