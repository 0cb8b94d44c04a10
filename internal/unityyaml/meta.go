package unityyaml

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MetaPath is the sidecar Unity keeps next to every asset.
func MetaPath(assetPath string) string { return assetPath + ".meta" }

type metaHeader struct {
	FileFormatVersion int    `yaml:"fileFormatVersion"`
	GUID              string `yaml:"guid"`
}

// ReadMetaGUID returns the guid of the asset at assetPath, read from its .meta sidecar.
func ReadMetaGUID(assetPath string) (string, error) {
	path := MetaPath(assetPath)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("meta file not found: %s: %w", path, err)
		}
		return "", err
	}
	var h metaHeader
	if err := yaml.Unmarshal(raw, &h); err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	guid := strings.TrimSpace(h.GUID)
	if guid == "" {
		return "", fmt.Errorf("no guid found in %s", path)
	}
	return guid, nil
}
