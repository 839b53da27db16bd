package domain

import (
	"encoding/json"
	"fmt"
)

// TreeEntry is one child of a FolderNode: either a subfolder or a document.
// Exactly one of Folder and Document is set. On the wire it matches the
// checkpoint layout: folders carry a "directory" key, documents a "file"
// key.
type TreeEntry struct {
	Folder   *FolderNode
	Document *DocumentRecord
}

// FolderEntry wraps a FolderNode as a TreeEntry.
func FolderEntry(f *FolderNode) TreeEntry {
	return TreeEntry{Folder: f}
}

// DocumentEntry wraps a DocumentRecord as a TreeEntry.
func DocumentEntry(d DocumentRecord) TreeEntry {
	return TreeEntry{Document: &d}
}

func (e TreeEntry) MarshalJSON() ([]byte, error) {
	switch {
	case e.Folder != nil:
		return json.Marshal(e.Folder)
	case e.Document != nil:
		return json.Marshal(e.Document)
	default:
		return nil, fmt.Errorf("tree entry has neither folder nor document")
	}
}

func (e *TreeEntry) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if _, ok := probe["directory"]; ok {
		var f FolderNode
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		e.Folder = &f
		return nil
	}
	var d DocumentRecord
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	e.Document = &d
	return nil
}
