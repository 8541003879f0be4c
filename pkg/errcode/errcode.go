package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Configuration errors
	ConfigLoadError
	ConfigMissingValueError

	// Remote platform errors
	RemoteAuthError
	RemoteRequestError
	PermissionDeniedError
	ProjectAppIDError

	// Schema errors
	SchemaFetchError
	SchemaParseError

	// Dataset errors
	DatasetReadError
	DatasetEmptyError
	DatasetFormatError

	// Import errors
	StructureInvalidError
	UnsupportedStrategyError
	MissingIDColumnError
	MissingInstanceIDColumnError
	ScratchDirError
	SummaryWriteError

	// Ledger errors
	LedgerOpenError
	LedgerWriteError
	LedgerReadError

	// Artifact errors
	ArtifactWriteError
)
