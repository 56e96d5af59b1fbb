package naming

import (
	"fmt"
	"path"
	"strings"
)

// Naming functions for chain resources.

func Namespace(name string) string {
	return name
}

func Release(name string) string {
	return name
}

func P2PService(name string) string {
	return fmt.Sprintf("%s-p2p-lb", name)
}

func GenesisBucket(name string) string {
	return strings.ToLower(fmt.Sprintf("%s-bootstrap", name))
}

func DNSAlias(label, zone string) string {
	return fmt.Sprintf("%s.%s", label, strings.TrimSuffix(zone, "."))
}

// BuildTargetDir returns the source directory name of a catalog entry.
func BuildTargetDir(target string) string {
	return strings.ReplaceAll(target, "_", "-")
}

// BuildTargetPath joins the target's directory under the chart source root.
func BuildTargetPath(root, target string) string {
	return path.Join(root, BuildTargetDir(target))
}

// ImageRepository returns the repository an image built from sourcePath is
// pushed to.
func ImageRepository(registry, sourcePath string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(registry, "/"), path.Base(sourcePath))
}
