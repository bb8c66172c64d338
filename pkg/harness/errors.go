package harness

import gterrors "github.com/meow-stack/gentest/internal/errors"

// Sentinels for errors.Is. Errors returned by the harness carry extra
// details but match these by code.
var (
	ErrAlreadyBuilt        = gterrors.New(gterrors.CodeRunAlreadyBuilt, "run context already built")
	ErrDirectoryAlreadySet = gterrors.New(gterrors.CodeRunDirectoryAlready, "test directory already set")
	ErrMissingDirectory    = gterrors.New(gterrors.CodeRunMissingDirectory, "target directory required")
	ErrInvalidArguments    = gterrors.New(gterrors.CodeRunInvalidArguments, "invalid arguments")
	ErrInvalidDependencies = gterrors.New(gterrors.CodeRunInvalidDeps, "invalid dependencies")
	ErrInvalidLocalConfig  = gterrors.New(gterrors.CodeRunInvalidLocalCfg, "invalid local config")
	ErrNotReady            = gterrors.New(gterrors.CodeRunNotReady, "run context not ready")
	ErrNoResult            = gterrors.New(gterrors.CodeRunNoResult, "no result yet")
	ErrUnknownGenerator    = gterrors.New(gterrors.CodeRunUnknownGenerator, "unknown generator")
	ErrConfigAfterBuild    = gterrors.New(gterrors.CodeRunConfigAfterBuild, "configuration after build")
	ErrMissingAnswer       = gterrors.New(gterrors.CodePromptMissingAnswer, "missing answer")
	ErrDirectoryNotFound   = gterrors.New(gterrors.CodeWorkspaceNotFound, "directory not found")
	ErrNotRegistered       = gterrors.New(gterrors.CodeEnvNotRegistered, "generator not registered")
)
