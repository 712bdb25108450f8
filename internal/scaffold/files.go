package scaffold

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// SumFileName is the digest manifest written at the root of every scaffold.
const SumFileName = "generapi.sum"

// File is one generated artifact. Path is slash separated and starts with the
// application directory.
type File struct {
	Path    string `json:"path"`
	Content []byte `json:"-"`
	// Digest is the hex blake2b-256 of Content.
	Digest string `json:"digest"`
}

func newFile(path string, content []byte) File {
	return File{Path: path, Content: content, Digest: Digest(content)}
}

// Digest returns the hex blake2b-256 of b.
func Digest(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// sumFile lists "<digest>  <path>" for every file, paths relative to root.
func sumFile(root string, files []File) File {
	var b bytes.Buffer
	for _, f := range files {
		fmt.Fprintf(&b, "%s  %s\n", f.Digest, strings.TrimPrefix(f.Path, root+"/"))
	}
	return newFile(root+"/"+SumFileName, b.Bytes())
}

// ParseSum reads a generapi.sum file into a path to digest map.
func ParseSum(data []byte) (map[string]string, error) {
	out := make(map[string]string)
	for i, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		digest, path, ok := strings.Cut(line, "  ")
		if !ok || len(digest) != hex.EncodedLen(blake2b.Size256) || path == "" {
			return nil, fmt.Errorf("%s:%d: malformed line", SumFileName, i+1)
		}
		out[path] = digest
	}
	return out, nil
}
