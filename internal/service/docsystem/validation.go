package docsystem

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docvault/internal/config"
	"docvault/internal/domain/services"
)

var noSlashes = regexp.MustCompile(`^[^/]+$`)

// validateFolderName checks a bare folder name (no path notation).
func validateFolderName(name string) error {
	return validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.Length(1, config.MaxFolderNameLength),
		validation.Match(noSlashes).Error("folder name cannot contain slashes"),
	)
}

// validateFileName checks a bare filename.
func validateFileName(name string) error {
	return validation.Validate(name,
		validation.Required.Error("file name is required"),
		validation.Length(1, config.MaxFileNameLength),
		validation.Match(noSlashes).Error("file name cannot contain slashes"),
	)
}

// validateMutationRequest rejects malformed payloads before any store I/O:
// the target must name exactly one file or folder, the action must be
// known, and rename needs a new name.
func validateMutationRequest(req *services.MutationRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Action,
			validation.Required,
			validation.In(
				services.ActionDelete,
				services.ActionMove,
				services.ActionCopy,
				services.ActionRename,
			),
		),
		validation.Field(&req.TargetPath, validation.Length(0, config.MaxPathLength)),
	); err != nil {
		return err
	}

	hasFile := req.Target.FileID != nil && *req.Target.FileID != ""
	hasFolder := req.Target.FolderID != nil && *req.Target.FolderID != ""
	if hasFile == hasFolder {
		return fmt.Errorf("target must name exactly one of file_id or folder_id")
	}

	if req.Action == services.ActionRename && req.NewName == "" {
		return fmt.Errorf("rename requires new_name")
	}

	return nil
}
