package errors

// Convenience constructors for common error patterns

// Config errors

func ConfigNotFound(path string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

// Front matter errors

func MalformedFrontMatter(page string, cause error) *BuildError {
	return Wrap(cause, CategoryFrontMatter, SeverityError, "malformed front matter").
		WithContext("page", page)
}

func MalformedSidecarData(path string, cause error) *BuildError {
	return Wrap(cause, CategorySidecar, SeverityError, "malformed sidecar data").
		WithContext("path", path)
}

// Validation errors

func ValidationFailed(page, field, reason string) *BuildError {
	return New(CategoryValidation, SeverityError, "front matter validation failed").
		WithContext("page", page).
		WithContext("field", field).
		WithContext("reason", reason)
}

// Rendering errors

// DirectiveFailed wraps any failure raised while expanding a body
// directive, keeping the directive name and source line for reporting.
func DirectiveFailed(name string, line int, cause error) *BuildError {
	return Wrap(cause, CategoryDirective, SeverityError, "directive failed").
		WithContext("directive", name).
		WithContext("line", line)
}

func MarkupRenderFailed(page string, cause error) *BuildError {
	return Wrap(cause, CategoryRender, SeverityError, "markup rendering failed").
		WithContext("page", page)
}

// Filesystem errors

func SourceTreeUnreadable(root string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "cannot enumerate source tree").
		WithContext("root", root)
}

func FileUnreadable(path string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "cannot read file").
		WithContext("path", path)
}

func FileUnwritable(path string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "cannot write file").
		WithContext("path", path)
}
