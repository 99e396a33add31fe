// Package diff parses unified patch text into a structured form used
// by local checks and the report viewer.
package diff

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// File is one file's slice of a parsed patch.
type File struct {
	OldName      string
	NewName      string
	IsNew        bool
	IsDeleted    bool
	IsRenamed    bool
	IsBinary     bool
	Fragments    []*gitdiff.TextFragment
	AddedLines   int
	DeletedLines int
}

// Path returns the file's final path: the new name when present, the
// old name for deletions.
func (f *File) Path() string {
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}

// Set holds the parsed patch for all files.
type Set struct {
	Files []*File
	Raw   string
}

// Stats returns aggregate counts across the set.
func (s *Set) Stats() (files, added, deleted int) {
	files = len(s.Files)
	for _, f := range s.Files {
		added += f.AddedLines
		deleted += f.DeletedLines
	}
	return
}

// Parse reads unified diff text into a Set.
func Parse(raw string) (*Set, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing patch: %w", err)
	}

	s := &Set{Raw: raw}
	for _, f := range parsed {
		df := &File{
			OldName:   f.OldName,
			NewName:   f.NewName,
			IsNew:     f.IsNew,
			IsDeleted: f.IsDelete,
			IsRenamed: f.IsRename,
			IsBinary:  f.IsBinary,
		}

		for _, frag := range f.TextFragments {
			df.Fragments = append(df.Fragments, frag)
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					df.AddedLines++
				case gitdiff.OpDelete:
					df.DeletedLines++
				}
			}
		}

		s.Files = append(s.Files, df)
	}

	return s, nil
}

// AddedLine is one line introduced by the patch, with its line number
// in the new file.
type AddedLine struct {
	Path string
	Line int
	Text string
}

// AddedLines walks every added line in the set, in patch order. Local
// checks scan these without re-reading the working tree.
func (s *Set) AddedLines() []AddedLine {
	var out []AddedLine
	for _, f := range s.Files {
		path := f.Path()
		for _, frag := range f.Fragments {
			lineNo := int(frag.NewPosition)
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					out = append(out, AddedLine{
						Path: path,
						Line: lineNo,
						Text: strings.TrimRight(line.Line, "\n"),
					})
					lineNo++
				case gitdiff.OpContext:
					lineNo++
				}
			}
		}
	}
	return out
}
