package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// ResolvedSourceRoot is the expanded file list for one named source root.
type ResolvedSourceRoot struct {
	Name         string
	Files        []string
	IsThirdParty bool
}

// ResolveSourceRoots expands every source root's glob patterns under
// rootPath and returns the resolved file lists. Pattern-matching goes
// through gobwas/glob, which natively understands "**" without a separate
// walk-and-match split.
func (c *Config) ResolveSourceRoots(rootPath string) ([]ResolvedSourceRoot, error) {
	var result []ResolvedSourceRoot

	allFiles, err := walkAllFiles(rootPath)
	if err != nil {
		return nil, err
	}

	for name, rootCfg := range c.SourceRoots {
		resolved := ResolvedSourceRoot{Name: name, IsThirdParty: rootCfg.IsThirdParty}

		fileSet := make(map[string]bool)
		for _, pattern := range rootCfg.Files {
			for _, f := range allFiles {
				if MatchGlob(pattern, relTo(rootPath, f)) || MatchGlob(pattern, f) {
					fileSet[f] = true
				}
			}
		}
		for _, pattern := range rootCfg.Exclude {
			for f := range fileSet {
				if MatchGlob(pattern, relTo(rootPath, f)) || MatchGlob(pattern, f) {
					delete(fileSet, f)
				}
			}
		}

		for f := range fileSet {
			resolved.Files = append(resolved.Files, f)
		}
		result = append(result, resolved)
	}

	return result, nil
}

// MatchGlob compiles and evaluates pattern against path. A pattern with no
// valid glob syntax never matches, rather than erroring — file discovery
// degrades to "no files" on a bad pattern instead of aborting the whole scan.
func MatchGlob(pattern, path string) bool {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return false
	}
	return g.Match(filepath.ToSlash(path))
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func walkAllFiles(rootPath string) ([]string, error) {
	var files []string
	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if info.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// GetAllFiles returns every matched file across all source roots
// (flattened, deduplicated).
func (c *Config) GetAllFiles(rootPath string) ([]string, error) {
	roots, err := c.ResolveSourceRoots(rootPath)
	if err != nil {
		return nil, err
	}

	fileSet := make(map[string]bool)
	for _, r := range roots {
		for _, f := range r.Files {
			fileSet[f] = true
		}
	}

	var result []string
	for f := range fileSet {
		result = append(result, f)
	}
	return result, nil
}

// FileSourceRootInfo carries the source-root membership of a single file.
type FileSourceRootInfo struct {
	RootName     string
	IsThirdParty bool
}

// GetFileSourceRoot returns the source-root information for filePath.
func (c *Config) GetFileSourceRoot(filePath, rootPath string) FileSourceRootInfo {
	roots, err := c.ResolveSourceRoots(rootPath)
	if err != nil {
		return FileSourceRootInfo{RootName: "default"}
	}

	absPath, _ := filepath.Abs(filePath)
	for _, r := range roots {
		for _, f := range r.Files {
			absF, _ := filepath.Abs(f)
			if absPath == absF {
				return FileSourceRootInfo{RootName: r.Name, IsThirdParty: r.IsThirdParty}
			}
		}
	}
	return FileSourceRootInfo{RootName: "default"}
}

// verilogExtensions lists the file extensions the project scanner treats
// as Verilog/SystemVerilog source.
var verilogExtensions = map[string]bool{
	".v": true, ".sv": true, ".vh": true, ".svh": true,
}

// IsVerilogSource reports whether path has a recognized Verilog/
// SystemVerilog extension.
func IsVerilogSource(path string) bool {
	return verilogExtensions[strings.ToLower(filepath.Ext(path))]
}
