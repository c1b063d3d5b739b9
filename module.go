package keel

import (
	"fmt"
	"sync/atomic"
)

// Declaration binds an identifier to a creation strategy inside a module.
type Declaration struct {
	ID      ServiceID
	options []RegisterOption
}

// Declare builds a module declaration from the same options Register takes.
//
// Example:
//
//	keel.Declare(configToken, keel.UseValue(cfg))
//	keel.Declare(dbToken, keel.UseFactory(newDatabase), keel.WithLifecycle(keel.Singleton))
func Declare(id ServiceID, opts ...RegisterOption) Declaration {
	return Declaration{ID: id, options: opts}
}

// Alias renames an imported identifier as seen by the importing module only.
type Alias struct {
	// ID is the source identifier, which must be exported by the imported
	// module.
	ID ServiceID

	// As is the name visible to the importer in place of ID.
	As ServiceID
}

// Import is one entry of a module's import list: a module, optionally with
// alias renames.
type Import struct {
	module  *Module
	aliases []Alias
}

// Module is a validated, exportable bundle of declarations and imports
// assembled into one container. Modules are immutable once constructed;
// NewModule validates eagerly and never produces a half-built module.
type Module struct {
	id           uint64
	name         string
	declarations []Declaration
	imports      []Import
	exports      []ServiceID
	exportSet    map[ServiceID]struct{}
	container    *container
}

// ModuleConfig configures NewModule.
type ModuleConfig struct {
	Name         string
	Declarations []Declaration
	Imports      []Import
	Exports      []ServiceID
}

var moduleIDs atomic.Uint64

// NewModule validates the module's declarations, imports, aliases and exports
// and assembles its container. All validation failures surface here,
// synchronously, before any instance is ever created.
func NewModule(cfg ModuleConfig) (*Module, error) {
	m := &Module{
		id:           moduleIDs.Add(1),
		name:         cfg.Name,
		declarations: append([]Declaration(nil), cfg.Declarations...),
		imports:      append([]Import(nil), cfg.Imports...),
		exports:      append([]ServiceID(nil), cfg.Exports...),
	}
	if m.name == "" {
		m.name = fmt.Sprintf("module-%d", m.id)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	if err := m.assemble(); err != nil {
		return nil, err
	}

	return m, nil
}

// MustModule is NewModule panicking on error. Intended for package-level
// module variables.
func MustModule(cfg ModuleConfig) *Module {
	m, err := NewModule(cfg)
	if err != nil {
		panic(err)
	}

	return m
}

// Import imports the module as-is.
func (m *Module) Import() Import {
	return Import{module: m}
}

// WithAliases imports the module with some of its exports renamed. Each alias
// source must be exported by this module; once aliased, only the alias name
// is visible to the importer.
func (m *Module) WithAliases(aliases ...Alias) Import {
	return Import{module: m, aliases: append([]Alias(nil), aliases...)}
}

// ID returns the module's unique numeric id.
func (m *Module) ID() uint64 {
	return m.id
}

// Name returns the module's name.
func (m *Module) Name() string {
	return m.name
}

// Exports returns the module's exported identifiers in declaration order.
func (m *Module) Exports() []ServiceID {
	out := make([]ServiceID, len(m.exports))
	copy(out, m.exports)

	return out
}

// Resolve resolves an exported identifier from the module's container.
// Identifiers the module does not export are inaccessible from outside,
// while remaining fully resolvable from within the module graph.
func (m *Module) Resolve(id ServiceID, opts ...ResolveOption) (any, error) {
	if !m.exported(id) {
		return nil, ErrServiceNotExported(m.name, id.String())
	}

	return m.container.Resolve(id, opts...)
}

// Has reports whether the identifier is exported and registered.
func (m *Module) Has(id ServiceID) bool {
	return m.exported(id) && m.container.Has(id)
}

// Dispose disposes the module's container.
func (m *Module) Dispose() {
	m.container.Dispose()
}

func (m *Module) exported(id ServiceID) bool {
	_, ok := m.exportSet[id]

	return ok
}

// =============================================================================
// VALIDATION
// =============================================================================

func (m *Module) validate() error {
	local, err := m.validateDeclarations()
	if err != nil {
		return err
	}

	visible, err := m.validateImports(local)
	if err != nil {
		return err
	}

	return m.validateExports(local, visible)
}

// validateDeclarations rejects duplicate identifiers and malformed strategies
// in the module's own declaration list. Returns the set of local identifiers.
func (m *Module) validateDeclarations() (map[ServiceID]struct{}, error) {
	local := make(map[ServiceID]struct{}, len(m.declarations))

	for _, d := range m.declarations {
		if d.ID == nil {
			return nil, ErrInvalidRegistration(fmt.Sprintf("module %q declares a nil service identifier", m.name))
		}
		if _, dup := local[d.ID]; dup {
			return nil, ErrDuplicateDeclaration(m.name, d.ID.String())
		}

		cfg := newRegisterConfig()
		for _, opt := range d.options {
			opt(cfg)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}

		local[d.ID] = struct{}{}
	}

	return local, nil
}

// validateImports rejects duplicate module imports, import cycles, bad
// aliases and namespace collisions. Returns the mapping of identifiers
// visible through imports, post-alias, to the module that contributed them.
func (m *Module) validateImports(local map[ServiceID]struct{}) (map[ServiceID]*Module, error) {
	seenModules := make(map[*Module]struct{}, len(m.imports))
	contributor := make(map[ServiceID]*Module)

	for _, imp := range m.imports {
		if imp.module == nil {
			return nil, ErrInvalidRegistration(fmt.Sprintf("module %q imports a nil module", m.name))
		}
		if _, dup := seenModules[imp.module]; dup {
			return nil, ErrDuplicateImportModule(m.name, imp.module.name)
		}
		seenModules[imp.module] = struct{}{}

		if err := validateAliases(m, imp, local); err != nil {
			return nil, err
		}

		for visible := range importedNames(imp) {
			if first, collides := contributor[visible]; collides && first != imp.module {
				return nil, ErrImportNamespaceCollision(m.name, visible.String(), first.name, imp.module.name)
			}
			contributor[visible] = imp.module
		}
	}

	if err := detectImportCycle(m); err != nil {
		return nil, err
	}

	return contributor, nil
}

// validateAliases checks one import's alias requests against the imported
// module's export list and the importer's local declarations.
func validateAliases(importer *Module, imp Import, local map[ServiceID]struct{}) error {
	sources := make(map[ServiceID]struct{}, len(imp.aliases))

	for _, alias := range imp.aliases {
		if alias.ID == nil || alias.As == nil {
			return ErrInvalidRegistration(fmt.Sprintf(
				"module %q has an alias with a nil identifier for import %q", importer.name, imp.module.name,
			))
		}
		if !imp.module.exported(alias.ID) {
			return ErrAliasSourceNotExported(imp.module.name, alias.ID.String())
		}
		if _, dup := sources[alias.ID]; dup {
			return ErrDuplicateAliasMapping(imp.module.name, alias.ID.String())
		}
		sources[alias.ID] = struct{}{}

		if _, conflict := local[alias.As]; conflict {
			return ErrAliasConflictsWithLocal(importer.name, alias.As.String())
		}
	}

	return nil
}

// validateExports checks every exported identifier is either a local
// declaration or a post-alias import name, and that nothing is exported
// twice. An aliased import's original name is no longer visible, so exporting
// it fails the same way an unknown name does.
func (m *Module) validateExports(local map[ServiceID]struct{}, visible map[ServiceID]*Module) error {
	m.exportSet = make(map[ServiceID]struct{}, len(m.exports))

	for _, id := range m.exports {
		if id == nil {
			return ErrInvalidRegistration(fmt.Sprintf("module %q exports a nil service identifier", m.name))
		}
		if _, dup := m.exportSet[id]; dup {
			return ErrDuplicateExport(m.name, id.String())
		}

		_, isLocal := local[id]
		_, isImported := visible[id]
		if !isLocal && !isImported {
			return ErrExportNotFound(m.name, id.String())
		}

		m.exportSet[id] = struct{}{}
	}

	return nil
}

// importedNames returns one import's visible identifier set: the imported
// module's exports with alias renames applied.
func importedNames(imp Import) map[ServiceID]ServiceID {
	renames := make(map[ServiceID]ServiceID, len(imp.aliases))
	for _, alias := range imp.aliases {
		renames[alias.ID] = alias.As
	}

	names := make(map[ServiceID]ServiceID, len(imp.module.exports))
	for _, orig := range imp.module.exports {
		visible := orig
		if as, renamed := renames[orig]; renamed {
			visible = as
		}
		names[visible] = orig
	}

	return names
}

// detectImportCycle walks the import graph depth-first from the module,
// reporting the full path of any cycle, direct or transitive.
func detectImportCycle(root *Module) error {
	visiting := make(map[*Module]bool)
	done := make(map[*Module]bool)
	var path []string

	var visit func(mod *Module) error
	visit = func(mod *Module) error {
		if done[mod] {
			return nil
		}
		if visiting[mod] {
			return ErrCircularModuleImport(append(append([]string(nil), path...), mod.name))
		}

		visiting[mod] = true
		path = append(path, mod.name)

		for _, imp := range mod.imports {
			if imp.module == nil {
				continue
			}
			if err := visit(imp.module); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		visiting[mod] = false
		done[mod] = true

		return nil
	}

	return visit(root)
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// assemble builds the module's container: its own declarations registered
// directly, and every import's post-alias exports registered as transient
// factories delegating into the imported module's container. The imported
// module's container stays the single owner of its registrations and caches,
// so a singleton reached through two importers is still constructed once.
func (m *Module) assemble() error {
	c := newContainer(WithName("module:" + m.name))

	local := make(map[ServiceID]struct{}, len(m.declarations))
	for _, d := range m.declarations {
		opts := d.options
		if !m.exported(d.ID) {
			opts = append(append([]RegisterOption(nil), opts...), asPrivate())
		}
		if err := c.Register(d.ID, opts...); err != nil {
			return err
		}
		local[d.ID] = struct{}{}
	}

	for _, imp := range m.imports {
		source := imp.module.container
		for visible, orig := range importedNames(imp) {
			if _, shadowed := local[visible]; shadowed {
				// The importer's own declaration wins over the import.
				continue
			}

			target := orig
			opts := []RegisterOption{
				UseFactory(func(Container) (any, error) {
					return source.Resolve(target)
				}),
				WithLifecycle(Transient),
			}
			if !m.exported(visible) {
				opts = append(opts, asPrivate())
			}
			if err := c.Register(visible, opts...); err != nil {
				return err
			}
		}
	}

	m.container = c

	return nil
}
