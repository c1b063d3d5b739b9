package keel

import (
	"fmt"
	"strings"

	"github.com/xraph/go-utils/errs"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeServiceNotFound indicates a required identifier is unregistered anywhere
	// in the container chain.
	CodeServiceNotFound = "SERVICE_NOT_FOUND"

	// CodeCircularDependency indicates a frame collision on the resolve record stack.
	CodeCircularDependency = "CIRCULAR_DEPENDENCY"

	// CodeInvalidOptions indicates mutually exclusive resolve options were combined.
	CodeInvalidOptions = "INVALID_OPTIONS"

	// CodeContainerDisposed indicates an operation on a disposed container.
	CodeContainerDisposed = "CONTAINER_DISPOSED"

	// CodeProviderFailure indicates the underlying constructor or factory failed.
	CodeProviderFailure = "PROVIDER_FAILURE"

	// CodeInvalidRegistration indicates a malformed or conflicting registration.
	CodeInvalidRegistration = "INVALID_REGISTRATION"

	// CodeTokenCollision indicates a token name was allocated twice.
	CodeTokenCollision = "TOKEN_COLLISION"

	// CodeTypeNotDescribed indicates a constructible type has no blueprint.
	CodeTypeNotDescribed = "TYPE_NOT_DESCRIBED"

	// CodeTypeMismatch indicates a type mismatch during typed resolution.
	CodeTypeMismatch = "TYPE_MISMATCH"

	// CodeServiceNotExported indicates an identifier is hidden by a module's
	// export guard.
	CodeServiceNotExported = "SERVICE_NOT_EXPORTED"
)

// Module graph validation codes. All of these are raised at module
// construction time, never during resolution.
const (
	CodeDuplicateDeclaration     = "DUPLICATE_DECLARATION"
	CodeDuplicateImportModule    = "DUPLICATE_IMPORT_MODULE"
	CodeCircularModuleImport     = "CIRCULAR_MODULE_IMPORT"
	CodeImportNamespaceCollision = "IMPORT_NAMESPACE_COLLISION"
	CodeExportNotFound           = "EXPORT_NOT_FOUND"
	CodeDuplicateExport          = "DUPLICATE_EXPORT"
	CodeAliasSourceNotExported   = "ALIAS_SOURCE_NOT_EXPORTED"
	CodeAliasConflictsWithLocal  = "ALIAS_CONFLICTS_WITH_LOCAL"
	CodeDuplicateAliasMapping    = "DUPLICATE_ALIAS_MAPPING"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrServiceNotFoundSentinel is a sentinel for service-not-found (for error checking).
var ErrServiceNotFoundSentinel = errs.NewError(CodeServiceNotFound, "service not found", nil)

// ErrCircularDependencySentinel is a sentinel for circular dependency (for error checking).
var ErrCircularDependencySentinel = errs.NewError(CodeCircularDependency, "circular dependency", nil)

// ErrInvalidOptionsSentinel is a sentinel for invalid resolve options.
var ErrInvalidOptionsSentinel = errs.NewError(CodeInvalidOptions, "invalid resolve options", nil)

// ErrContainerDisposedSentinel is a sentinel for operations on a disposed container.
var ErrContainerDisposedSentinel = errs.NewError(CodeContainerDisposed, "container has been disposed", nil)

// ErrProviderFailureSentinel is a sentinel for provider failures.
var ErrProviderFailureSentinel = errs.NewError(CodeProviderFailure, "provider failed", nil)

// ErrTypeMismatchSentinel is a sentinel for type mismatch during typed resolution.
var ErrTypeMismatchSentinel = errs.NewError(CodeTypeMismatch, "type mismatch", nil)

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// ErrServiceNotFound creates the error for a required identifier that is not
// registered anywhere in the container chain. The leading sentence is part of
// the compatibility contract and must not be reworded.
func ErrServiceNotFound(name, path string) *errs.Error {
	msg := fmt.Sprintf(
		"Service identifier %q is not registered in this container. "+
			"Please register it first or set the \"optional\" option to true if this service is optional.",
		name,
	)
	if path != "" {
		msg += " Resolution path: " + path
	}

	return errs.NewError(CodeServiceNotFound, msg, nil).
		WithContext("service", name).
		WithContext("path", path).(*errs.Error)
}

// ErrCircularDependency creates the error for a cycle on the resolve record
// stack. The leading sentence is part of the compatibility contract and must
// not be reworded. The rendered path marks the two colliding frames.
func ErrCircularDependency(name, path string) *errs.Error {
	msg := fmt.Sprintf(
		"Circular dependency detected for service identifier %q. "+
			"To resolve this, use either the \"ref\" option to defer resolution until first use, "+
			"or the \"dynamic\" option to resolve a fresh instance on every access.",
		name,
	)
	if path != "" {
		msg += " Resolution path: " + path
	}

	return errs.NewError(CodeCircularDependency, msg, nil).
		WithContext("service", name).
		WithContext("path", path).(*errs.Error)
}

// ErrInvalidOptions creates an error for mutually exclusive resolve options.
func ErrInvalidOptions(reason string) *errs.Error {
	return errs.NewError(CodeInvalidOptions, reason, nil).
		WithContext("reason", reason).(*errs.Error)
}

// ErrContainerDisposed creates an error for an operation on a disposed container.
func ErrContainerDisposed(containerName, operation string) *errs.Error {
	return errs.NewError(
		CodeContainerDisposed,
		fmt.Sprintf("container %q has been disposed; %s is no longer possible", containerName, operation),
		nil,
	).WithContext("container", containerName).
		WithContext("operation", operation).(*errs.Error)
}

// ErrProviderFailure wraps an error thrown by a constructor or factory. The
// original error is preserved as the cause; the accumulated resolution path is
// embedded in the message.
func ErrProviderFailure(name, path string, cause error) *errs.Error {
	msg := fmt.Sprintf("provider for service identifier %q failed: %v", name, cause)
	if path != "" {
		msg += ". Resolution path: " + path
	}

	return errs.NewError(CodeProviderFailure, msg, cause).
		WithContext("service", name).
		WithContext("path", path).(*errs.Error)
}

// ErrInvalidRegistration creates a fatal, non-retryable registration error.
func ErrInvalidRegistration(reason string) *errs.Error {
	return errs.NewError(CodeInvalidRegistration, reason, nil).
		WithContext("reason", reason).(*errs.Error)
}

// ErrTokenCollision creates an error for a token name allocated twice.
func ErrTokenCollision(name string) *errs.Error {
	return errs.NewError(
		CodeTokenCollision,
		fmt.Sprintf("token %q has already been allocated; token names must be unique process-wide", name),
		nil,
	).WithContext("token", name).(*errs.Error)
}

// ErrTypeNotDescribed creates an error for resolving a constructible type that
// has no blueprint. Blueprints must be supplied with Describe before the
// type's first resolution.
func ErrTypeNotDescribed(name string) *errs.Error {
	return errs.NewError(
		CodeTypeNotDescribed,
		fmt.Sprintf("type %q is not described; supply its constructor and dependency list with Describe before resolving it", name),
		nil,
	).WithContext("type", name).(*errs.Error)
}

// ErrTypeMismatch creates an error for a typed resolution yielding an
// incompatible instance.
func ErrTypeMismatch(name string, actual any) *errs.Error {
	return errs.NewError(
		CodeTypeMismatch,
		fmt.Sprintf("service %q type mismatch: got %T", name, actual),
		nil,
	).WithContext("service", name).
		WithContext("actual_type", fmt.Sprintf("%T", actual)).(*errs.Error)
}

// ErrServiceNotExported creates the error raised by a module's export guard.
func ErrServiceNotExported(moduleName, name string) *errs.Error {
	return errs.NewError(
		CodeServiceNotExported,
		fmt.Sprintf("Service identifier %q is not exported by module %q.", name, moduleName),
		nil,
	).WithContext("module", moduleName).
		WithContext("service", name).(*errs.Error)
}

// =============================================================================
// MODULE VALIDATION ERRORS
// =============================================================================

// ErrDuplicateDeclaration creates an error for an identifier declared twice in
// one module.
func ErrDuplicateDeclaration(moduleName, name string) *errs.Error {
	return errs.NewError(
		CodeDuplicateDeclaration,
		fmt.Sprintf("module %q declares service identifier %q more than once", moduleName, name),
		nil,
	).WithContext("module", moduleName).
		WithContext("service", name).(*errs.Error)
}

// ErrDuplicateImportModule creates an error for the same module imported twice
// by one importer.
func ErrDuplicateImportModule(importer, imported string) *errs.Error {
	return errs.NewError(
		CodeDuplicateImportModule,
		fmt.Sprintf("module %q imports module %q more than once", importer, imported),
		nil,
	).WithContext("module", importer).
		WithContext("imported", imported).(*errs.Error)
}

// ErrCircularModuleImport creates an error for a cycle in the module import
// graph. The path names every module from the root of the cycle back to the
// repeated module.
func ErrCircularModuleImport(path []string) *errs.Error {
	return errs.NewError(
		CodeCircularModuleImport,
		fmt.Sprintf("circular module import detected: %s", strings.Join(path, " -> ")),
		nil,
	).WithContext("path", path).(*errs.Error)
}

// ErrImportNamespaceCollision creates an error for two imported modules
// exposing the same identifier to one importer.
func ErrImportNamespaceCollision(importer, name, first, second string) *errs.Error {
	return errs.NewError(
		CodeImportNamespaceCollision,
		fmt.Sprintf(
			"module %q imports service identifier %q from both %q and %q; rename one side with an alias",
			importer, name, first, second,
		),
		nil,
	).WithContext("module", importer).
		WithContext("service", name).(*errs.Error)
}

// ErrExportNotFound creates an error for exporting an identifier that is
// neither declared locally nor visible through imports after aliasing.
func ErrExportNotFound(moduleName, name string) *errs.Error {
	return errs.NewError(
		CodeExportNotFound,
		fmt.Sprintf("module %q exports service identifier %q, which is neither declared nor imported under that name", moduleName, name),
		nil,
	).WithContext("module", moduleName).
		WithContext("service", name).(*errs.Error)
}

// ErrDuplicateExport creates an error for exporting the same identifier twice.
func ErrDuplicateExport(moduleName, name string) *errs.Error {
	return errs.NewError(
		CodeDuplicateExport,
		fmt.Sprintf("module %q exports service identifier %q more than once", moduleName, name),
		nil,
	).WithContext("module", moduleName).
		WithContext("service", name).(*errs.Error)
}

// ErrAliasSourceNotExported creates an error for aliasing an identifier the
// imported module does not export.
func ErrAliasSourceNotExported(imported, name string) *errs.Error {
	return errs.NewError(
		CodeAliasSourceNotExported,
		fmt.Sprintf("cannot alias service identifier %q: module %q does not export it", name, imported),
		nil,
	).WithContext("imported", imported).
		WithContext("service", name).(*errs.Error)
}

// ErrAliasConflictsWithLocal creates an error for an alias name shadowing a
// local declaration of the importer.
func ErrAliasConflictsWithLocal(importer, name string) *errs.Error {
	return errs.NewError(
		CodeAliasConflictsWithLocal,
		fmt.Sprintf("alias %q collides with a local declaration of module %q", name, importer),
		nil,
	).WithContext("module", importer).
		WithContext("service", name).(*errs.Error)
}

// ErrDuplicateAliasMapping creates an error for two aliases sharing a source
// identifier within one import.
func ErrDuplicateAliasMapping(imported, name string) *errs.Error {
	return errs.NewError(
		CodeDuplicateAliasMapping,
		fmt.Sprintf("service identifier %q of module %q is aliased more than once", name, imported),
		nil,
	).WithContext("imported", imported).
		WithContext("service", name).(*errs.Error)
}
