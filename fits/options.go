package fits

import "go.uber.org/zap"

// FileOption configures Open, Edit and Create.
type FileOption func(*fileOptions)

type fileOptions struct {
	logger    *zap.Logger
	overwrite bool
	temporary bool
}

func defaultFileOptions() *fileOptions {
	return &fileOptions{
		logger: zap.NewNop(),
	}
}

// WithLogger routes the engine's debug logging to the given logger. The
// default discards everything.
func WithLogger(logger *zap.Logger) FileOption {
	return func(o *fileOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOverwrite lets Create replace an existing file. Without it, Create
// fails when the path already exists.
func WithOverwrite() FileOption {
	return func(o *fileOptions) {
		o.overwrite = true
	}
}

// WithTemporary makes a created file scratch space: on Close nothing is
// flushed and the file is removed from disk.
func WithTemporary() FileOption {
	return func(o *fileOptions) {
		o.temporary = true
	}
}
