package types

// FolderColor is the accent color of a folder.
type FolderColor string

// Folder color constants
const (
	ColorMint     FolderColor = "mint"
	ColorPeach    FolderColor = "peach"
	ColorBlue     FolderColor = "blue"
	ColorLavender FolderColor = "lavender"
	ColorCoral    FolderColor = "coral"
)

// Valid reports whether c is a known folder color.
func (c FolderColor) Valid() bool {
	switch c {
	case ColorMint, ColorPeach, ColorBlue, ColorLavender, ColorCoral:
		return true
	}
	return false
}

// Folder groups job records. JobCount is derived from the live job list.
type Folder struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Color    FolderColor `json:"color"`
	JobCount int         `json:"jobCount"`
}

// CreateFolderRequest is the payload for creating a folder.
type CreateFolderRequest struct {
	Name  string      `json:"name" validate:"required,max=50"`
	Color FolderColor `json:"color" validate:"required,oneof=mint peach blue lavender coral"`
}

// RenameFolderRequest is the payload for renaming a folder.
type RenameFolderRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}
