package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/samber/oops"

	"github.com/mesh-intelligence/modelcore/internal/logging"
	"github.com/mesh-intelligence/modelcore/internal/paths"
	"github.com/mesh-intelligence/modelcore/pkg/metamodel"
	"github.com/mesh-intelligence/modelcore/pkg/modelcore"
	"github.com/mesh-intelligence/modelcore/pkg/properties"
	"github.com/mesh-intelligence/modelcore/pkg/sqlite"
	"github.com/mesh-intelligence/modelcore/pkg/types"
)

// session is one command's view of the stored model.
type session struct {
	mm     *metamodel.Metamodel
	model  *properties.Model
	store  types.Store[*properties.Model]
	logger *slog.Logger
}

// resolved holds the directories and settings a command runs with.
type resolved struct {
	configDir string
	settings  *settings
}

func resolve(flags *rootFlags) (*resolved, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	s, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, s.DataDir, configDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	s.DataDir = dataDir
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgKeyBackend, err)
	}
	return &resolved{configDir: configDir, settings: s}, nil
}

func (r *resolved) logger(w io.Writer) *slog.Logger {
	return logging.New(paths.AppName, modelcore.Version, r.settings.LogFormat, logging.ParseLevel(r.settings.LogLevel), w)
}

// openSession attaches the store and loads the model. The data directory
// must already exist; init creates it.
func openSession(flags *rootFlags, stderr io.Writer) (*session, error) {
	r, err := resolve(flags)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(r.settings.DataDir); os.IsNotExist(err) {
		return nil, userError("no model at %s; run modeler init", r.settings.DataDir)
	}

	logger := r.logger(stderr)
	mm, err := metamodel.New()
	if err != nil {
		return nil, sysError(err)
	}
	model, err := properties.NewModel(mm.Schema, properties.WithLogger(logger))
	if err != nil {
		return nil, sysError(err)
	}

	store := sqlite.NewBackend(logger)
	if err := store.Attach(r.settings.Config); err != nil {
		return nil, sysError(fmt.Errorf("attach store: %w", err))
	}
	if err := store.Load(model); err != nil {
		_ = store.Detach()
		return nil, sysError(fmt.Errorf("load model: %w", err))
	}
	return &session{mm: mm, model: model, store: store, logger: logger}, nil
}

func (s *session) save() error {
	if err := s.store.Save(s.model); err != nil {
		return sysError(fmt.Errorf("save model: %w", err))
	}
	return nil
}

func (s *session) close() {
	_ = s.store.Detach()
}

// element finds an element by id, falling back to its qualified name.
func (s *session) element(ref string) (*properties.Element, error) {
	e, err := s.model.Lookup(ref)
	if err == nil {
		return e, nil
	}
	if e, ok := s.mm.Resolve(s.model, ref); ok {
		return e, nil
	}
	return nil, err
}

// class finds a concrete class by name.
func (s *session) class(name string) (*properties.Class, error) {
	c, ok := s.mm.Schema.Lookup(name)
	if !ok {
		return nil, oops.In("cli").Code("UNKNOWN_CLASS").With("class", name).
			Wrapf(types.ErrUnknownClass, "class %q", name)
	}
	return c, nil
}

// parseValue converts a command-line argument to the value type the named
// property of e expects.
func (s *session) parseValue(e *properties.Element, name, raw string) (any, error) {
	p, ok := e.Class().Property(name)
	if !ok {
		return raw, nil
	}
	switch p := p.(type) {
	case *properties.Attribute:
		if p.Type() == properties.Int {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, userError("%s expects an integer, got %q", name, raw)
			}
			return n, nil
		}
	case properties.Reference:
		return s.element(raw)
	}
	return raw, nil
}
