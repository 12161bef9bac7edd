package service

import "errors"

// Service layer errors for better error handling
var (
	ErrProjectNotFound          = errors.New("project not found")
	ErrProjectSlugAlreadyExists = errors.New("project slug already exists")
)
