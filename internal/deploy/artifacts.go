package deploy

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/Mohsinsiddi/dmint/internal/contract"
)

// FindArtifact locates the compiled artifact of contract name under dir.
// Hardhat nests artifacts as <Name>.sol/<Name>.json; a flat <Name>.json is
// accepted too.
func FindArtifact(dir, name string) (*contract.Artifact, error) {
	candidates := []string{
		filepath.Join(dir, name+".sol", name+".json"),
		filepath.Join(dir, name+".json"),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return contract.LoadArtifact(p)
		}
	}
	return nil, errors.Errorf("artifact for %s not found in %s (compile the contracts first)", name, dir)
}

// checkArtifact verifies a can be deployed and exposes the builtin interface.
func checkArtifact(a *contract.Artifact, name string) error {
	if err := a.Deployable(); err != nil {
		return errors.Wrap(err, name)
	}
	b, ok := contract.BuiltinByName(name)
	if !ok {
		return nil
	}
	want, err := b.Parsed()
	if err != nil {
		return err
	}
	return errors.Wrap(a.Require(want), name)
}
