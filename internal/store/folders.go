package store

import (
	"strings"

	"github.com/jonathan/job-tracker/internal/types"
)

// AddFolder appends a new empty folder.
func (s *Store) AddFolder(name string, color types.FolderColor) (types.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Folder{}, &ValidationError{Field: "name", Message: "folder name is required"}
	}
	if !color.Valid() {
		return types.Folder{}, &ValidationError{Field: "color", Message: "unknown folder color " + string(color)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := types.Folder{ID: s.newID("folder"), Name: name, Color: color}
	s.folders = append(s.folders, f)
	if s.selectedFolderID == "" && len(s.folders) == 1 {
		s.selectedFolderID = f.ID
	}
	s.changed()
	return f, nil
}

// DeleteFolder removes a folder and moves its jobs to the first remaining
// folder. It returns the id of that folder.
func (s *Store) DeleteFolder(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.folderIndexLocked(id)
	if idx < 0 {
		return "", &NotFoundError{Kind: KindFolder, ID: id}
	}
	if len(s.folders) == 1 {
		return "", ErrLastFolder
	}

	s.folders = append(s.folders[:idx], s.folders[idx+1:]...)
	target := s.folders[0].ID
	for _, j := range s.jobs {
		if j.FolderID == id {
			j.FolderID = target
		}
	}
	if s.selectedFolderID == id {
		s.selectedFolderID = target
	}
	s.recountLocked()
	s.changed()
	return target, nil
}

// RenameFolder changes a folder's name.
func (s *Store) RenameFolder(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "folder name is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.folderIndexLocked(id)
	if idx < 0 {
		return &NotFoundError{Kind: KindFolder, ID: id}
	}
	s.folders[idx].Name = name
	s.changed()
	return nil
}

// SelectFolder sets the folder shown by default. An empty id selects all jobs.
func (s *Store) SelectFolder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && s.folderIndexLocked(id) < 0 {
		return &NotFoundError{Kind: KindFolder, ID: id}
	}
	s.selectedFolderID = id
	return nil
}

// SelectedFolderID returns the selected folder, or "" for all.
func (s *Store) SelectedFolderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedFolderID
}

// Folders returns every folder in display order.
func (s *Store) Folders() []types.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Folder{}, s.folders...)
}

// Folder returns one folder.
func (s *Store) Folder(id string) (types.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.folderIndexLocked(id)
	if idx < 0 {
		return types.Folder{}, &NotFoundError{Kind: KindFolder, ID: id}
	}
	return s.folders[idx], nil
}

// FolderJobs returns the non-archived jobs filed under a folder, in insertion order.
func (s *Store) FolderJobs(id string) ([]*types.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.folderIndexLocked(id) < 0 {
		return nil, &NotFoundError{Kind: KindFolder, ID: id}
	}
	out := []*types.JobRecord{}
	for _, j := range s.jobs {
		if j.FolderID == id && !j.IsArchived {
			out = append(out, j.Clone())
		}
	}
	return out, nil
}

func (s *Store) folderIndexLocked(id string) int {
	for i := range s.folders {
		if s.folders[i].ID == id {
			return i
		}
	}
	return -1
}
