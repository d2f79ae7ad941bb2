package model

// FileType is the kind of a file record.
type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

// RootParentID is the parentId of records living at the root.
const RootParentID = "0"

func (t FileType) Valid() bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

// File is an uploaded file, image or folder. UserID never changes after
// creation and scopes every lookup.
type File struct {
	ID        string   `json:"id" gorm:"primaryKey;size:24"`
	UserID    string   `json:"userId" gorm:"index:idx_files_owner_parent;size:24;not null"`
	Name      string   `json:"name" gorm:"size:255;not null"`
	Type      FileType `json:"type" gorm:"size:16;not null"`
	IsPublic  bool     `json:"isPublic" gorm:"not null;default:false"`
	ParentID  string   `json:"parentId" gorm:"index:idx_files_owner_parent;size:24;not null"`
	LocalPath string   `json:"-" gorm:"size:512"`
}

func (File) TableName() string {
	return "files"
}

func (f *File) IsFolder() bool {
	return f.Type == FileTypeFolder
}
