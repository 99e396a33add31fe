package review

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/sprite-ai/preflight/internal/api"
)

// HashInstructionFiles reads each repo-relative instruction file and
// returns its content hash. Only the hash travels with the review
// request; raw text stays local. Missing files are skipped and
// reported separately.
func HashInstructionFiles(repoRoot string, paths []string) (hashed []api.InstructionFile, missing []string) {
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(repoRoot, p))
		if err != nil {
			missing = append(missing, p)
			continue
		}
		sum := sha256.Sum256(data)
		hashed = append(hashed, api.InstructionFile{
			Path:   p,
			SHA256: hex.EncodeToString(sum[:]),
		})
	}
	return hashed, missing
}
