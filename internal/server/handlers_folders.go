package server

import (
	"fmt"
	"net/http"

	"github.com/jonathan/job-tracker/internal/types"
)

type folderList struct {
	Folders          []types.Folder `json:"folders"`
	SelectedFolderID string         `json:"selectedFolderId"`
}

func (s *Server) handleListFolders(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, folderList{
		Folders:          s.store.Folders(),
		SelectedFolderID: s.store.SelectedFolderID(),
	})
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req types.CreateFolderRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	folder, err := s.store.AddFolder(req.Name, req.Color)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, folder)
}

func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req types.RenameFolderRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	if err := s.store.RenameFolder(id, req.Name); err != nil {
		s.fail(w, err)
		return
	}
	folder, err := s.store.Folder(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.store.Notify(types.SeveritySuccess, "文件夹名称已更新")
	s.jsonResponse(w, http.StatusOK, folder)
}

// handleDeleteFolder removes a folder; its jobs move to the first remaining folder.
func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	folder, err := s.store.Folder(id)
	if err != nil {
		s.fail(w, err)
		return
	}

	target, err := s.store.DeleteFolder(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.store.Notify(types.SeverityInfo, fmt.Sprintf("文件夹「%s」已删除", folder.Name))
	s.jsonResponse(w, http.StatusOK, map[string]string{"movedTo": target})
}

func (s *Server) handleSelectFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SelectFolder(r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"selectedFolderId": s.store.SelectedFolderID()})
}

func (s *Server) handleFolderJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.FolderJobs(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}
