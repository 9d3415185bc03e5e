package platform

import (
	"context"
	"log/slog"

	"github.com/aretw0/larder/pkg/adapters/fs"
	"github.com/aretw0/larder/pkg/core"
)

// Init opens the vault at path and returns its repository.
func Init(path string, opts ...Option) (core.Repository, error) {
	return initRepository(path, parseOptions(opts))
}

func initRepository(path string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	repo := fs.NewRepository(fsConfig(path, o))
	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func fsConfig(path string, o *options) fs.Config {
	mustExist, _ := o.config["must_exist"].(bool)
	readOnly, _ := o.config["read_only"].(bool)
	systemDir, _ := o.config["system_dir"].(string)
	eventBuffer, _ := o.config["event_buffer"].(int)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	if readOnly && o.logger != nil {
		o.logger.Debug("opening vault read-only", "path", path)
	}

	return fs.Config{
		Path:         path,
		MustExist:    mustExist,
		ReadOnly:     readOnly,
		Logger:       o.logger,
		SystemDir:    systemDir,
		EventBuffer:  eventBuffer,
		ErrorHandler: errorHandler,
	}
}

func (o *options) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}
